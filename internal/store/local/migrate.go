package local

import (
	"context"
	"strconv"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

// currentSchemaVersion is bumped whenever a new migration step is added.
const currentSchemaVersion = 1

// Migrate runs pending migration steps against the data file. It is invoked
// once when the store opens, so the side effect of rewriting storage happens
// at a known point instead of implicitly on every read.
//
// v1: readings saved before year filtering existed carry no year; backfill
// it from the timestamp and persist the corrected collection.
func (s *LocalStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	version, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.backfillReadingYears(ctx); err != nil {
			return err
		}
	}

	return saveJSON(ctx, s.db, keyVersion, strconv.Itoa(currentSchemaVersion))
}

func (s *LocalStore) schemaVersion(ctx context.Context) (int, error) {
	var raw string
	if err := loadJSON(ctx, s.db, keyVersion, &raw); err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil // unreadable marker: rerun migrations, they are safe to repeat
	}
	return v, nil
}

func (s *LocalStore) backfillReadingYears(ctx context.Context) error {
	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return err
	}
	changed := false
	for i := range readings {
		if readings[i].Year == 0 && readings[i].Timestamp != 0 {
			readings[i].Year = model.YearFromTimestamp(readings[i].Timestamp)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return saveJSON(ctx, s.db, keyReadings, readings)
}
