package store

import (
	"context"
	"errors"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

// ErrNotFound is returned when a requested record does not exist in the
// backing store. Drivers normalize their own not-found conditions to this.
var ErrNotFound = errors.New("store: not found")

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (supabase, postgres,
// local).
type Store interface {
	Tracks() Tracks
	Readings() Readings
	Profiles() Profiles
}

type Tracks interface {
	Create(ctx context.Context, t *model.Track) (*model.Track, error)
	List(ctx context.Context) ([]*model.Track, error)
	// Delete removes the track and every reading recorded for it.
	Delete(ctx context.Context, trackID string) error
}

type Readings interface {
	Create(ctx context.Context, r *model.TrackReading) (*model.TrackReading, error)
	// ListByTrack returns readings ordered by timestamp descending. A non-nil
	// year narrows results to an exact year match.
	ListByTrack(ctx context.Context, trackID string, year *int) ([]*model.TrackReading, error)
	Update(ctx context.Context, readingID string, u model.ReadingUpdate) (*model.TrackReading, error)
	Delete(ctx context.Context, readingID string) error
	// Years enumerates distinct reading years, newest first. An empty trackID
	// spans all tracks.
	Years(ctx context.Context, trackID string) ([]int, error)
}

type Profiles interface {
	Upsert(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error)
	Get(ctx context.Context, id string) (*model.UserProfile, error)
	// List returns profiles; inactive ones only when includeInactive is set.
	List(ctx context.Context, includeInactive bool) ([]*model.UserProfile, error)
	SoftDelete(ctx context.Context, id string) error
}
