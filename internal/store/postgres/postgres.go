package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) *PgStore { return &PgStore{db: db} }

type PgStore struct{ db *sql.DB }

func (s *PgStore) Tracks() store.Tracks     { return &tracks{db: s.db} }
func (s *PgStore) Readings() store.Readings { return &readings{db: s.db} }
func (s *PgStore) Profiles() store.Profiles { return &profiles{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *PgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func millisToTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
func timeToMillis(t time.Time) int64  { return t.UnixMilli() }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// --- Tracks ---

type tracks struct{ db *sql.DB }

func (t *tracks) Create(ctx context.Context, m *model.Track) (*model.Track, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt == 0 {
		out.CreatedAt = time.Now().UnixMilli()
	}
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tracks (id, name, location, created_at)
        VALUES ($1,$2,$3,$4)
    `, out.ID, out.Name, out.Location, millisToTime(out.CreatedAt))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tracks) List(ctx context.Context) ([]*model.Track, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT id, name, location, created_at
        FROM tracks ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Track
	for rows.Next() {
		var m model.Track
		var created time.Time
		if err := rows.Scan(&m.ID, &m.Name, &m.Location, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = timeToMillis(created)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Delete removes the track row and every reading whose track_id matches in
// one transaction.
func (t *tracks) Delete(ctx context.Context, trackID string) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE track_id=$1`, trackID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id=$1`, trackID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// --- Readings ---

type readings struct{ db *sql.DB }

func (r *readings) Create(ctx context.Context, m *model.TrackReading) (*model.TrackReading, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Timestamp == 0 {
		out.Timestamp = time.Now().UnixMilli()
	}
	if out.Year == 0 {
		out.Year = model.YearFromTimestamp(out.Timestamp)
	}
	left, err := json.Marshal(out.LeftLane)
	if err != nil {
		return nil, err
	}
	right, err := json.Marshal(out.RightLane)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO readings (id, track_id, date, time, timestamp, year,
                              session, pair, class_currently_running,
                              left_lane, right_lane, time_zone, track_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    `, out.ID, out.TrackID, out.Date, out.Time, out.Timestamp, out.Year,
		nullIfEmpty(out.Session), nullIfEmpty(out.Pair), nullIfEmpty(out.ClassCurrentlyRunning),
		left, right, nullIfEmpty(out.TimeZone), nullIfEmpty(out.TrackDate))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *readings) ListByTrack(ctx context.Context, trackID string, year *int) ([]*model.TrackReading, error) {
	query := `
        SELECT id, track_id, date, time, timestamp, year, session, pair,
               class_currently_running, left_lane, right_lane, time_zone, track_date
        FROM readings WHERE track_id=$1`
	args := []interface{}{trackID}
	if year != nil {
		query += ` AND year=$2`
		args = append(args, *year)
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.TrackReading
	for rows.Next() {
		m, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *readings) Update(ctx context.Context, readingID string, u model.ReadingUpdate) (*model.TrackReading, error) {
	cur, err := r.getByID(ctx, readingID)
	if err != nil {
		return nil, err
	}
	u.Apply(cur)
	left, err := json.Marshal(cur.LeftLane)
	if err != nil {
		return nil, err
	}
	right, err := json.Marshal(cur.RightLane)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `
        UPDATE readings SET session=$1, pair=$2, class_currently_running=$3,
                            left_lane=$4, right_lane=$5
        WHERE id=$6
    `, nullIfEmpty(cur.Session), nullIfEmpty(cur.Pair), nullIfEmpty(cur.ClassCurrentlyRunning),
		left, right, readingID)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (r *readings) getByID(ctx context.Context, readingID string) (*model.TrackReading, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, track_id, date, time, timestamp, year, session, pair,
               class_currently_running, left_lane, right_lane, time_zone, track_date
        FROM readings WHERE id=$1
    `, readingID)
	m, err := scanReading(row)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *readings) Delete(ctx context.Context, readingID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM readings WHERE id=$1`, readingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *readings) Years(ctx context.Context, trackID string) ([]int, error) {
	query := `SELECT DISTINCT year FROM readings`
	args := []interface{}{}
	if trackID != "" {
		query += ` WHERE track_id=$1`
		args = append(args, trackID)
	}
	query += ` ORDER BY year DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReading(row rowScanner) (*model.TrackReading, error) {
	var m model.TrackReading
	var session, pair, class, tz, trackDate sql.NullString
	var left, right []byte
	if err := row.Scan(&m.ID, &m.TrackID, &m.Date, &m.Time, &m.Timestamp, &m.Year,
		&session, &pair, &class, &left, &right, &tz, &trackDate); err != nil {
		return nil, err
	}
	m.Session = session.String
	m.Pair = pair.String
	m.ClassCurrentlyRunning = class.String
	m.TimeZone = tz.String
	m.TrackDate = trackDate.String
	if len(left) > 0 {
		_ = json.Unmarshal(left, &m.LeftLane)
	}
	if len(right) > 0 {
		_ = json.Unmarshal(right, &m.RightLane)
	}
	return &m, nil
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Upsert(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Color == "" {
		out.Color = model.DefaultProfileColor(out.ID)
	}
	now := time.Now().UnixMilli()
	if out.CreatedAt == 0 {
		out.CreatedAt = now
	}
	out.UpdatedAt = now

	var lastLogin interface{}
	if out.LastLoginAt != 0 {
		lastLogin = millisToTime(out.LastLoginAt)
	}
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO user_profiles (id, name, pin_hash, color, created_at, updated_at, last_login_at, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO UPDATE SET
            name=excluded.name, pin_hash=excluded.pin_hash, color=excluded.color,
            updated_at=excluded.updated_at, last_login_at=excluded.last_login_at,
            is_active=excluded.is_active
    `, out.ID, out.Name, out.PinHash, out.Color,
		millisToTime(out.CreatedAt), millisToTime(out.UpdatedAt), lastLogin, out.IsActive)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT id, name, pin_hash, color, created_at, updated_at, last_login_at, is_active
        FROM user_profiles WHERE id=$1
    `, id)
	m, err := scanProfile(row)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (p *profiles) List(ctx context.Context, includeInactive bool) ([]*model.UserProfile, error) {
	query := `
        SELECT id, name, pin_hash, color, created_at, updated_at, last_login_at, is_active
        FROM user_profiles`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at ASC`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.UserProfile
	for rows.Next() {
		m, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *profiles) SoftDelete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `
        UPDATE user_profiles SET is_active=false, updated_at=$1 WHERE id=$2
    `, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (*model.UserProfile, error) {
	var m model.UserProfile
	var created, updated time.Time
	var lastLogin sql.NullTime
	if err := row.Scan(&m.ID, &m.Name, &m.PinHash, &m.Color, &created, &updated, &lastLogin, &m.IsActive); err != nil {
		return nil, err
	}
	m.CreatedAt = timeToMillis(created)
	m.UpdatedAt = timeToMillis(updated)
	if lastLogin.Valid {
		m.LastLoginAt = timeToMillis(lastLogin.Time)
	}
	return &m, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
