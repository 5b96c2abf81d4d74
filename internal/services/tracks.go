// Package services is the storage façade the rest of the application talks
// to. No error crosses this boundary: every failure is logged and converted
// to a typed empty/nil/false sentinel so callers treat "no data" and "error"
// uniformly.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// TrackService handles track CRUD over the selected store driver.
type TrackService struct {
	store store.Store
	log   zerolog.Logger
}

func NewTrackService(s store.Store, log zerolog.Logger) *TrackService {
	return &TrackService{store: s, log: log}
}

// GetAllTracks returns every track, newest first. Empty slice on failure.
func (s *TrackService) GetAllTracks(ctx context.Context) []*model.Track {
	tracks, err := s.store.Tracks().List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list tracks failed")
		return []*model.Track{}
	}
	return tracks
}

// CreateTrack records a new track. Nil on failure.
func (s *TrackService) CreateTrack(ctx context.Context, name, location string) *model.Track {
	t, err := s.store.Tracks().Create(ctx, &model.Track{Name: name, Location: location})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create track failed")
		return nil
	}
	return t
}

// DeleteTrack removes a track and all its readings. False when the cascade
// could not be fully applied.
func (s *TrackService) DeleteTrack(ctx context.Context, trackID string) bool {
	if err := s.store.Tracks().Delete(ctx, trackID); err != nil {
		s.log.Error().Err(err).Str("track_id", trackID).Msg("delete track failed")
		return false
	}
	return true
}
