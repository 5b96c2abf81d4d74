package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/config"
	storepkg "github.com/chasebfreeman/track-analyzer-pro/internal/store"
	storelocal "github.com/chasebfreeman/track-analyzer-pro/internal/store/local"
	storepg "github.com/chasebfreeman/track-analyzer-pro/internal/store/postgres"
	storesb "github.com/chasebfreeman/track-analyzer-pro/internal/store/supabase"
)

// NewStore resolves the storage driver once from configuration and returns
// the matching store.Store. The strategy is fixed for the lifetime of the
// process: a remote driver never silently degrades to local mid-session.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.StorageDriver {
	case "supabase":
		if !cfg.SupabaseConfigured() {
			return nil, fmt.Errorf("TRACK_ANALYZER_SUPABASE_URL and TRACK_ANALYZER_SUPABASE_KEY are required when STORAGE_DRIVER=supabase")
		}
		log.Info().Str("driver", "supabase").Str("url", cfg.SupabaseURL).Msg("using hosted backend")
		return storesb.New(cfg.SupabaseURL, cfg.SupabaseKey), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("TRACK_ANALYZER_POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("driver", "postgres").Msg("using self-managed database")
		return storepg.NewWithDB(db), nil

	case "local":
		st, err := storelocal.New(cfg.LocalDataPath, cfg.LocalSecurePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "local").Str("path", cfg.LocalDataPath).Msg("using device-local storage")
		return st, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.StorageDriver)
	}
}

// NewLocalStore opens the device-local store regardless of the configured
// driver. The sync service reads it as the source when bulk-uploading to the
// hosted backend.
func NewLocalStore(cfg *config.Config) (*storelocal.LocalStore, error) {
	return storelocal.New(cfg.LocalDataPath, cfg.LocalSecurePath)
}
