package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
	storelocal "github.com/chasebfreeman/track-analyzer-pro/internal/store/local"
)

// SyncService performs the one-shot bulk upload of device-local data into
// the remote backend. The operation is intentionally not idempotent:
// repeated runs re-create rows, matching the backend's own primary-key
// behavior. There is no per-record progress or partial-failure reporting;
// the first failure aborts the run.
type SyncService struct {
	local  *storelocal.LocalStore
	remote store.Store
	log    zerolog.Logger
}

func NewSyncService(local *storelocal.LocalStore, remote store.Store, log zerolog.Logger) *SyncService {
	return &SyncService{local: local, remote: remote, log: log}
}

// SyncLocalToRemote re-creates every local track and reading remotely.
func (s *SyncService) SyncLocalToRemote(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("sync: remote backend not configured")
	}

	tracks, err := s.local.Tracks().List(ctx)
	if err != nil {
		return fmt.Errorf("sync: read local tracks: %w", err)
	}
	for _, t := range tracks {
		if _, err := s.remote.Tracks().Create(ctx, t); err != nil {
			return fmt.Errorf("sync: upload track %s: %w", t.ID, err)
		}
		readings, err := s.local.Readings().ListByTrack(ctx, t.ID, nil)
		if err != nil {
			return fmt.Errorf("sync: read local readings for %s: %w", t.ID, err)
		}
		for _, r := range readings {
			if _, err := s.remote.Readings().Create(ctx, r); err != nil {
				return fmt.Errorf("sync: upload reading %s: %w", r.ID, err)
			}
		}
		s.log.Info().Str("track_id", t.ID).Int("readings", len(readings)).Msg("track synced")
	}
	return nil
}
