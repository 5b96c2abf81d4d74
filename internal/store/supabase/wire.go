package supabase

import (
	"time"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

// Wire rows mirror the hosted backend's column names (snake_case, ISO
// timestamps). Mapping is one-to-one and lossless in both directions for
// every field the wire format carries.

const isoLayout = time.RFC3339Nano

func toISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

func fromISO(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return 0
		}
	}
	return t.UnixMilli()
}

type trackRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	CreatedAt string  `json:"created_at"`
	UserID    *string `json:"user_id,omitempty"`
}

func trackToWire(t *model.Track) trackRow {
	return trackRow{
		ID:        t.ID,
		Name:      t.Name,
		Location:  t.Location,
		CreatedAt: toISO(t.CreatedAt),
	}
}

func trackFromWire(r trackRow) *model.Track {
	return &model.Track{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		CreatedAt: fromISO(r.CreatedAt),
	}
}

// readingRow carries both the legacy columns (date, time) and the newer
// timezone-aware ones (time_zone, track_date) so old and new readers of the
// shared backend stay consistent. Lane payloads live in jsonb columns and
// keep their application-level key casing.
type readingRow struct {
	ID                    string            `json:"id"`
	TrackID               string            `json:"track_id"`
	Date                  string            `json:"date"`
	Time                  string            `json:"time"`
	Timestamp             int64             `json:"timestamp"`
	Year                  int               `json:"year"`
	Session               *string           `json:"session,omitempty"`
	Pair                  *string           `json:"pair,omitempty"`
	ClassCurrentlyRunning *string           `json:"class_currently_running,omitempty"`
	LeftLane              model.LaneReading `json:"left_lane"`
	RightLane             model.LaneReading `json:"right_lane"`
	UserID                *string           `json:"user_id,omitempty"`
	TimeZone              *string           `json:"time_zone,omitempty"`
	TrackDate             *string           `json:"track_date,omitempty"`
}

func readingToWire(r *model.TrackReading) readingRow {
	return readingRow{
		ID:                    r.ID,
		TrackID:               r.TrackID,
		Date:                  r.Date,
		Time:                  r.Time,
		Timestamp:             r.Timestamp,
		Year:                  r.Year,
		Session:               optString(r.Session),
		Pair:                  optString(r.Pair),
		ClassCurrentlyRunning: optString(r.ClassCurrentlyRunning),
		LeftLane:              r.LeftLane,
		RightLane:             r.RightLane,
		TimeZone:              optString(r.TimeZone),
		TrackDate:             optString(r.TrackDate),
	}
}

func readingFromWire(r readingRow) *model.TrackReading {
	return &model.TrackReading{
		ID:                    r.ID,
		TrackID:               r.TrackID,
		Date:                  r.Date,
		Time:                  r.Time,
		Timestamp:             r.Timestamp,
		Year:                  r.Year,
		Session:               strOrEmpty(r.Session),
		Pair:                  strOrEmpty(r.Pair),
		ClassCurrentlyRunning: strOrEmpty(r.ClassCurrentlyRunning),
		LeftLane:              r.LeftLane,
		RightLane:             r.RightLane,
		TimeZone:              strOrEmpty(r.TimeZone),
		TrackDate:             strOrEmpty(r.TrackDate),
	}
}

type profileRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PinHash     string  `json:"pin_hash"`
	Color       string  `json:"color"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func profileToWire(p *model.UserProfile) profileRow {
	row := profileRow{
		ID:        p.ID,
		Name:      p.Name,
		PinHash:   p.PinHash,
		Color:     p.Color,
		CreatedAt: toISO(p.CreatedAt),
		UpdatedAt: toISO(p.UpdatedAt),
		IsActive:  p.IsActive,
	}
	if p.LastLoginAt != 0 {
		iso := toISO(p.LastLoginAt)
		row.LastLoginAt = &iso
	}
	return row
}

func profileFromWire(r profileRow) *model.UserProfile {
	p := &model.UserProfile{
		ID:        r.ID,
		Name:      r.Name,
		PinHash:   r.PinHash,
		Color:     r.Color,
		CreatedAt: fromISO(r.CreatedAt),
		UpdatedAt: fromISO(r.UpdatedAt),
		IsActive:  r.IsActive,
	}
	if r.LastLoginAt != nil {
		p.LastLoginAt = fromISO(*r.LastLoginAt)
	}
	if p.Color == "" {
		p.Color = model.DefaultProfileColor(p.ID)
	}
	return p
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
