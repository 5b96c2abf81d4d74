package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// In-memory store.Store stand-in with per-interface error injection. Kept
// deliberately dumb: slices and maps, no concurrency.

var errBoom = errors.New("injected failure")

type stubStore struct {
	tracks   stubTracks
	readings stubReadings
	profiles stubProfiles
}

func newStubStore() *stubStore {
	return &stubStore{profiles: stubProfiles{m: map[string]*model.UserProfile{}}}
}

func (s *stubStore) Tracks() store.Tracks     { return &s.tracks }
func (s *stubStore) Readings() store.Readings { return &s.readings }
func (s *stubStore) Profiles() store.Profiles { return &s.profiles }

type stubTracks struct {
	rows []*model.Track
	fail bool
}

func (t *stubTracks) Create(_ context.Context, m *model.Track) (*model.Track, error) {
	if t.fail {
		return nil, errBoom
	}
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	t.rows = append(t.rows, &out)
	return &out, nil
}

func (t *stubTracks) List(context.Context) ([]*model.Track, error) {
	if t.fail {
		return nil, errBoom
	}
	return t.rows, nil
}

func (t *stubTracks) Delete(_ context.Context, trackID string) error {
	if t.fail {
		return errBoom
	}
	for i, row := range t.rows {
		if row.ID == trackID {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type stubReadings struct {
	rows      []*model.TrackReading
	fail      bool
	failAfter int // fail once this many creates have succeeded (0 = never)
}

func (r *stubReadings) Create(_ context.Context, m *model.TrackReading) (*model.TrackReading, error) {
	if r.fail || (r.failAfter > 0 && len(r.rows) >= r.failAfter) {
		return nil, errBoom
	}
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	r.rows = append(r.rows, &out)
	return &out, nil
}

func (r *stubReadings) ListByTrack(_ context.Context, trackID string, year *int) ([]*model.TrackReading, error) {
	if r.fail {
		return nil, errBoom
	}
	var out []*model.TrackReading
	for _, row := range r.rows {
		if row.TrackID != trackID {
			continue
		}
		if year != nil && row.Year != *year {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (r *stubReadings) Update(_ context.Context, readingID string, u model.ReadingUpdate) (*model.TrackReading, error) {
	if r.fail {
		return nil, errBoom
	}
	for _, row := range r.rows {
		if row.ID == readingID {
			u.Apply(row)
			return row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *stubReadings) Delete(_ context.Context, readingID string) error {
	if r.fail {
		return errBoom
	}
	for i, row := range r.rows {
		if row.ID == readingID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *stubReadings) Years(_ context.Context, trackID string) ([]int, error) {
	if r.fail {
		return nil, errBoom
	}
	seen := map[int]bool{}
	var out []int
	for _, row := range r.rows {
		if trackID != "" && row.TrackID != trackID {
			continue
		}
		if row.Year != 0 && !seen[row.Year] {
			seen[row.Year] = true
			out = append(out, row.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

type stubProfiles struct {
	m           map[string]*model.UserProfile
	fail        bool
	upsertCount int
}

func (p *stubProfiles) Upsert(_ context.Context, in *model.UserProfile) (*model.UserProfile, error) {
	if p.fail {
		return nil, errBoom
	}
	out := *in
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	p.m[out.ID] = &out
	p.upsertCount++
	return &out, nil
}

func (p *stubProfiles) Get(_ context.Context, id string) (*model.UserProfile, error) {
	if p.fail {
		return nil, errBoom
	}
	if row, ok := p.m[id]; ok {
		out := *row
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (p *stubProfiles) List(_ context.Context, includeInactive bool) ([]*model.UserProfile, error) {
	if p.fail {
		return nil, errBoom
	}
	var out []*model.UserProfile
	for _, row := range p.m {
		if !includeInactive && !row.IsActive {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (p *stubProfiles) SoftDelete(_ context.Context, id string) error {
	if p.fail {
		return errBoom
	}
	row, ok := p.m[id]
	if !ok {
		return store.ErrNotFound
	}
	row.IsActive = false
	return nil
}
