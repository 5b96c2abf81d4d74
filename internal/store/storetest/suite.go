package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Tracks
	tr, err := s.Tracks().Create(ctx, &model.Track{Name: "Bandimere", Location: "Morrison, CO"})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	if tr.ID == "" || tr.CreatedAt == 0 {
		t.Fatalf("CreateTrack: missing defaults: %+v", tr)
	}
	other, err := s.Tracks().Create(ctx, &model.Track{Name: "Gainesville", Location: "Gainesville, FL"})
	if err != nil {
		t.Fatalf("CreateTrack other: %v", err)
	}
	if lst, err := s.Tracks().List(ctx); err != nil || len(lst) < 2 {
		t.Fatalf("ListTracks: n=%d err=%v", len(lst), err)
	}

	// Readings: two years on the primary track, one on the other
	mk := func(trackID string, ts int64, year int) *model.TrackReading {
		return &model.TrackReading{
			TrackID:   trackID,
			Timestamp: ts,
			Year:      year,
			Date:      "2024-07-04",
			Time:      "12:00 PM",
			Session:   "Q1",
			LeftLane:  model.LaneReading{TrackTemp: "118.4", KegSL: "2.35"},
			RightLane: model.LaneReading{TrackTemp: "121.0", KegSL: "2.10"},
		}
	}
	r1, err := s.Readings().Create(ctx, mk(tr.ID, 1720107000000, 2024))
	if err != nil {
		t.Fatalf("CreateReading r1: %v", err)
	}
	r2, err := s.Readings().Create(ctx, mk(tr.ID, 1720110600000, 2024))
	if err != nil {
		t.Fatalf("CreateReading r2: %v", err)
	}
	if _, err := s.Readings().Create(ctx, mk(tr.ID, 1751646600000, 2025)); err != nil {
		t.Fatalf("CreateReading r3: %v", err)
	}
	if _, err := s.Readings().Create(ctx, mk(other.ID, 1720110700000, 2024)); err != nil {
		t.Fatalf("CreateReading other track: %v", err)
	}

	// ListByTrack orders newest first and excludes the other track
	lst, err := s.Readings().ListByTrack(ctx, tr.ID, nil)
	if err != nil || len(lst) != 3 {
		t.Fatalf("ListByTrack: n=%d err=%v", len(lst), err)
	}
	for i := 1; i < len(lst); i++ {
		if lst[i-1].Timestamp < lst[i].Timestamp {
			t.Fatalf("ListByTrack: not timestamp-descending at %d", i)
		}
	}

	// Year filter is an exact match
	y := 2024
	if lst, err := s.Readings().ListByTrack(ctx, tr.ID, &y); err != nil || len(lst) != 2 {
		t.Fatalf("ListByTrack year=2024: n=%d err=%v", len(lst), err)
	}

	// Partial update touches only the named fields
	sess := "E2"
	left := model.LaneReading{TrackTemp: "130.2", Notes: "rubber laid"}
	upd, err := s.Readings().Update(ctx, r1.ID, model.ReadingUpdate{Session: &sess, LeftLane: &left})
	if err != nil {
		t.Fatalf("UpdateReading: %v", err)
	}
	if upd.Session != "E2" || upd.LeftLane.TrackTemp != "130.2" {
		t.Fatalf("UpdateReading: fields not applied: %+v", upd)
	}
	if upd.RightLane.TrackTemp != "121.0" || upd.Timestamp != r1.Timestamp {
		t.Fatalf("UpdateReading: untouched fields changed: %+v", upd)
	}

	// Years, newest first; trackID narrows the scan
	if ys, err := s.Readings().Years(ctx, tr.ID); err != nil || len(ys) != 2 || ys[0] != 2025 || ys[1] != 2024 {
		t.Fatalf("Years track: got=%v err=%v", ys, err)
	}
	// The all-tracks scan may see rows from earlier runs on a shared
	// database; just require ours and the descending order.
	if ys, err := s.Readings().Years(ctx, ""); err != nil || !containsYear(ys, 2025) || !containsYear(ys, 2024) || !descending(ys) {
		t.Fatalf("Years all: got=%v err=%v", ys, err)
	}

	// Delete reading
	if err := s.Readings().Delete(ctx, r2.ID); err != nil {
		t.Fatalf("DeleteReading: %v", err)
	}
	if err := s.Readings().Delete(ctx, r2.ID); err != store.ErrNotFound {
		t.Fatalf("DeleteReading twice: want ErrNotFound, got %v", err)
	}

	// Cascade: deleting the track removes its readings, nobody else's
	if err := s.Tracks().Delete(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}
	if lst, err := s.Readings().ListByTrack(ctx, tr.ID, nil); err != nil || len(lst) != 0 {
		t.Fatalf("readings survived cascade: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Readings().ListByTrack(ctx, other.ID, nil); err != nil || len(lst) != 1 {
		t.Fatalf("cascade crossed tracks: n=%d err=%v", len(lst), err)
	}
	if err := s.Tracks().Delete(ctx, tr.ID); err != store.ErrNotFound {
		t.Fatalf("DeleteTrack twice: want ErrNotFound, got %v", err)
	}

	// Profiles
	p, err := s.Profiles().Upsert(ctx, &model.UserProfile{
		ID:       "p-" + uuid.New().String(),
		Name:     "Crew Chief",
		PinHash:  "ab12",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if p.Color == "" || p.CreatedAt == 0 || p.UpdatedAt == 0 {
		t.Fatalf("UpsertProfile: missing defaults: %+v", p)
	}
	if got, err := s.Profiles().Get(ctx, p.ID); err != nil || got.Name != "Crew Chief" {
		t.Fatalf("GetProfile: got=%+v err=%v", got, err)
	}
	if _, err := s.Profiles().Get(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("GetProfile missing: want ErrNotFound, got %v", err)
	}

	// Upsert replaces in place
	p.Name = "Tuner"
	if upd, err := s.Profiles().Upsert(ctx, p); err != nil || upd.Name != "Tuner" {
		t.Fatalf("UpsertProfile replace: got=%+v err=%v", upd, err)
	}
	if lst, err := s.Profiles().List(ctx, false); err != nil || findProfile(lst, p.ID) == nil {
		t.Fatalf("ListProfiles: missing %s, err=%v", p.ID, err)
	}

	// Soft delete hides from the active list, keeps the record
	if err := s.Profiles().SoftDelete(ctx, p.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if lst, err := s.Profiles().List(ctx, false); err != nil || findProfile(lst, p.ID) != nil {
		t.Fatalf("ListProfiles after soft delete: still active, err=%v", err)
	}
	lstAll, err := s.Profiles().List(ctx, true)
	if err != nil {
		t.Fatalf("ListProfiles includeInactive: %v", err)
	}
	if got := findProfile(lstAll, p.ID); got == nil || got.IsActive {
		t.Fatalf("ListProfiles includeInactive: got=%+v", got)
	}
	if err := s.Profiles().SoftDelete(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("SoftDelete missing: want ErrNotFound, got %v", err)
	}
}

func containsYear(ys []int, want int) bool {
	for _, y := range ys {
		if y == want {
			return true
		}
	}
	return false
}

func descending(ys []int) bool {
	for i := 1; i < len(ys); i++ {
		if ys[i-1] < ys[i] {
			return false
		}
	}
	return true
}

func findProfile(lst []*model.UserProfile, id string) *model.UserProfile {
	for _, p := range lst {
		if p.ID == id {
			return p
		}
	}
	return nil
}
