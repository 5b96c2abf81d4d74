package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the tables the driver expects. Deployments normally
// manage schema through the hosted backend's migrations; this exists for
// self-managed databases and the integration test harness.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tracks (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            location TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL,
            user_id TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS readings (
            id TEXT PRIMARY KEY,
            track_id TEXT NOT NULL REFERENCES tracks(id),
            date TEXT NOT NULL DEFAULT '',
            time TEXT NOT NULL DEFAULT '',
            timestamp BIGINT NOT NULL,
            year INT NOT NULL,
            session TEXT,
            pair TEXT,
            class_currently_running TEXT,
            left_lane JSONB NOT NULL DEFAULT '{}',
            right_lane JSONB NOT NULL DEFAULT '{}',
            user_id TEXT,
            time_zone TEXT,
            track_date TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_readings_track_ts ON readings (track_id, timestamp DESC);`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            pin_hash TEXT NOT NULL,
            color TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            last_login_at TIMESTAMPTZ,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
