package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
	"github.com/chasebfreeman/track-analyzer-pro/internal/trackday"
)

// ReadingService handles reading CRUD and normalizes the timezone-derived
// fields at write time so both legacy and current readers of the shared
// backend see consistent day labels.
type ReadingService struct {
	store store.Store
	log   zerolog.Logger
}

func NewReadingService(s store.Store, log zerolog.Logger) *ReadingService {
	return &ReadingService{store: s, log: log}
}

// GetReadingsForTrack returns readings for a track, newest first, optionally
// narrowed to one year. Empty slice on failure.
func (s *ReadingService) GetReadingsForTrack(ctx context.Context, trackID string, year *int) []*model.TrackReading {
	readings, err := s.store.Readings().ListByTrack(ctx, trackID, year)
	if err != nil {
		s.log.Error().Err(err).Str("track_id", trackID).Msg("list readings failed")
		return []*model.TrackReading{}
	}
	return readings
}

// CreateReading normalizes derived fields and persists the reading.
// Nil on failure.
func (s *ReadingService) CreateReading(ctx context.Context, r *model.TrackReading) *model.TrackReading {
	in := *r
	normalizeReading(&in)
	out, err := s.store.Readings().Create(ctx, &in)
	if err != nil {
		s.log.Error().Err(err).Str("track_id", r.TrackID).Msg("create reading failed")
		return nil
	}
	return out
}

// UpdateReading applies a partial update. Nil when the reading is missing or
// the write fails.
func (s *ReadingService) UpdateReading(ctx context.Context, readingID string, u model.ReadingUpdate) *model.TrackReading {
	out, err := s.store.Readings().Update(ctx, readingID, u)
	if err != nil {
		s.log.Error().Err(err).Str("reading_id", readingID).Msg("update reading failed")
		return nil
	}
	return out
}

// DeleteReading removes one reading. False on failure.
func (s *ReadingService) DeleteReading(ctx context.Context, readingID string) bool {
	if err := s.store.Readings().Delete(ctx, readingID); err != nil {
		s.log.Error().Err(err).Str("reading_id", readingID).Msg("delete reading failed")
		return false
	}
	return true
}

// GetAvailableYears enumerates reading years, newest first. An empty trackID
// spans all tracks. Empty slice on failure.
func (s *ReadingService) GetAvailableYears(ctx context.Context, trackID string) []int {
	years, err := s.store.Readings().Years(ctx, trackID)
	if err != nil {
		s.log.Error().Err(err).Str("track_id", trackID).Msg("list years failed")
		return []int{}
	}
	return years
}

// normalizeReading fills every derived field from the timestamp and zone.
// TrackDate is computed in the reading's own zone when one is set; the
// legacy date label is kept in sync with it, and the legacy time string is
// only synthesized when the caller did not provide one.
func normalizeReading(r *model.TrackReading) {
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if r.Year == 0 {
		r.Year = model.YearFromTimestamp(r.Timestamp)
	}
	if r.TimeZone != "" {
		r.TrackDate = trackday.DayKey(r.Timestamp, r.TimeZone)
	}
	if r.TrackDate != "" {
		r.Date = r.TrackDate
	} else if r.Date == "" {
		r.Date = trackday.DayKey(r.Timestamp, "")
	}
	if r.Time == "" {
		r.Time = trackday.DisplayTime(r.Timestamp, r.TimeZone)
	}
}
