// Package supabase talks to the hosted backend's table-oriented REST API
// (PostgREST dialect): one request per façade call, filters in the query
// string, row payloads as JSON arrays.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// Client implements store.Store against a Supabase project.
type Client struct {
	rc *resty.Client
}

// New constructs a Client for the given project URL and service key.
func New(baseURL, apiKey string) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1").
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Client{rc: rc}
}

// NewWithRestyClient wires an existing resty client (used by tests).
func NewWithRestyClient(rc *resty.Client) *Client { return &Client{rc: rc} }

func (c *Client) Tracks() store.Tracks     { return &remoteTracks{rc: c.rc} }
func (c *Client) Readings() store.Readings { return &remoteReadings{rc: c.rc} }
func (c *Client) Profiles() store.Profiles { return &remoteProfiles{rc: c.rc} }

// HealthPing implements health.HealthPinger with a cheap HEAD-style probe.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Range", "0-0").
		Get("/tracks?select=id")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("supabase health probe: status %d", resp.StatusCode())
	}
	return nil
}

func restErr(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}

func decodeRows[T any](op string, resp *resty.Response) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return rows, nil
}

// --- Tracks ---

type remoteTracks struct{ rc *resty.Client }

func (t *remoteTracks) Create(ctx context.Context, m *model.Track) (*model.Track, error) {
	in := *m
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt == 0 {
		in.CreatedAt = time.Now().UnixMilli()
	}
	resp, err := t.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody([]trackRow{trackToWire(&in)}).
		Post("/tracks")
	if err := restErr("create track", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[trackRow]("create track", resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create track: empty response")
	}
	return trackFromWire(rows[0]), nil
}

func (t *remoteTracks) List(ctx context.Context) ([]*model.Track, error) {
	resp, err := t.rc.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc").
		Get("/tracks")
	if err := restErr("list tracks", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[trackRow]("list tracks", resp)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Track, 0, len(rows))
	for _, r := range rows {
		out = append(out, trackFromWire(r))
	}
	return out, nil
}

// Delete issues two sequential calls: readings first, then the track row.
// There is no rollback if the second call fails; the caller must not report
// success until both complete.
func (t *remoteTracks) Delete(ctx context.Context, trackID string) error {
	resp, err := t.rc.R().
		SetContext(ctx).
		SetQueryParam("track_id", "eq."+trackID).
		Delete("/readings")
	if err := restErr("delete track readings", resp, err); err != nil {
		return err
	}

	resp, err = t.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+trackID).
		Delete("/tracks")
	if err := restErr("delete track", resp, err); err != nil {
		return err
	}
	rows, err := decodeRows[trackRow]("delete track", resp)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Readings ---

type remoteReadings struct{ rc *resty.Client }

func (r *remoteReadings) Create(ctx context.Context, m *model.TrackReading) (*model.TrackReading, error) {
	in := *m
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.Timestamp == 0 {
		in.Timestamp = time.Now().UnixMilli()
	}
	if in.Year == 0 {
		in.Year = model.YearFromTimestamp(in.Timestamp)
	}
	resp, err := r.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody([]readingRow{readingToWire(&in)}).
		Post("/readings")
	if err := restErr("create reading", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[readingRow]("create reading", resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create reading: empty response")
	}
	return readingFromWire(rows[0]), nil
}

func (r *remoteReadings) ListByTrack(ctx context.Context, trackID string, year *int) ([]*model.TrackReading, error) {
	req := r.rc.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("track_id", "eq."+trackID).
		SetQueryParam("order", "timestamp.desc")
	if year != nil {
		req.SetQueryParam("year", "eq."+strconv.Itoa(*year))
	}
	resp, err := req.Get("/readings")
	if err := restErr("list readings", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[readingRow]("list readings", resp)
	if err != nil {
		return nil, err
	}
	out := make([]*model.TrackReading, 0, len(rows))
	for _, row := range rows {
		out = append(out, readingFromWire(row))
	}
	return out, nil
}

func (r *remoteReadings) Update(ctx context.Context, readingID string, u model.ReadingUpdate) (*model.TrackReading, error) {
	patch := map[string]interface{}{}
	if u.Session != nil {
		patch["session"] = *u.Session
	}
	if u.Pair != nil {
		patch["pair"] = *u.Pair
	}
	if u.ClassCurrentlyRunning != nil {
		patch["class_currently_running"] = *u.ClassCurrentlyRunning
	}
	if u.LeftLane != nil {
		patch["left_lane"] = *u.LeftLane
	}
	if u.RightLane != nil {
		patch["right_lane"] = *u.RightLane
	}

	resp, err := r.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+readingID).
		SetBody(patch).
		Patch("/readings")
	if err := restErr("update reading", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[readingRow]("update reading", resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return readingFromWire(rows[0]), nil
}

func (r *remoteReadings) Delete(ctx context.Context, readingID string) error {
	resp, err := r.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+readingID).
		Delete("/readings")
	if err := restErr("delete reading", resp, err); err != nil {
		return err
	}
	rows, err := decodeRows[readingRow]("delete reading", resp)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *remoteReadings) Years(ctx context.Context, trackID string) ([]int, error) {
	req := r.rc.R().
		SetContext(ctx).
		SetQueryParam("select", "year").
		SetQueryParam("order", "year.desc")
	if trackID != "" {
		req.SetQueryParam("track_id", "eq."+trackID)
	}
	resp, err := req.Get("/readings")
	if err := restErr("list years", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[struct {
		Year int `json:"year"`
	}]("list years", resp)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var out []int
	for _, row := range rows {
		if row.Year == 0 || seen[row.Year] {
			continue
		}
		seen[row.Year] = true
		out = append(out, row.Year)
	}
	return out, nil
}

// --- Profiles ---

type remoteProfiles struct{ rc *resty.Client }

func (p *remoteProfiles) Upsert(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	in := *m
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.Color == "" {
		in.Color = model.DefaultProfileColor(in.ID)
	}
	now := time.Now().UnixMilli()
	if in.CreatedAt == 0 {
		in.CreatedAt = now
	}
	in.UpdatedAt = now

	resp, err := p.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody([]profileRow{profileToWire(&in)}).
		Post("/user_profiles")
	if err := restErr("upsert profile", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[profileRow]("upsert profile", resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("upsert profile: empty response")
	}
	return profileFromWire(rows[0]), nil
}

func (p *remoteProfiles) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	resp, err := p.rc.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("id", "eq."+id).
		Get("/user_profiles")
	if err := restErr("get profile", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[profileRow]("get profile", resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return profileFromWire(rows[0]), nil
}

func (p *remoteProfiles) List(ctx context.Context, includeInactive bool) ([]*model.UserProfile, error) {
	req := p.rc.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.asc")
	if !includeInactive {
		req.SetQueryParam("is_active", "eq.true")
	}
	resp, err := req.Get("/user_profiles")
	if err := restErr("list profiles", resp, err); err != nil {
		return nil, err
	}
	rows, err := decodeRows[profileRow]("list profiles", resp)
	if err != nil {
		return nil, err
	}
	out := make([]*model.UserProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profileFromWire(row))
	}
	return out, nil
}

func (p *remoteProfiles) SoftDelete(ctx context.Context, id string) error {
	resp, err := p.rc.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetBody(map[string]interface{}{
			"is_active":  false,
			"updated_at": toISO(time.Now().UnixMilli()),
		}).
		Patch("/user_profiles")
	if err := restErr("soft delete profile", resp, err); err != nil {
		return err
	}
	rows, err := decodeRows[profileRow]("soft delete profile", resp)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}
