// Package local persists tracks, readings and profiles on the device as
// serialized collections under fixed keys. Every query loads the full
// collection and scans it in memory, which is fine at the deployment sizes
// this store targets (a handful of tracks, low thousands of readings).
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

const (
	keyTracks   = "tracks"
	keyReadings = "readings"
	keyProfiles = "user_profiles"
	keyActive   = "active_profile"
	keyVersion  = "schema_version"
)

// LocalStore implements store.Store on two SQLite key-value files: one for
// track data and a restricted one for profile records.
type LocalStore struct {
	db  *sql.DB
	sec *sql.DB

	// Collections are read-modify-write; the mutex keeps in-process writers
	// from losing updates. Cross-process writes remain last-write-wins under
	// the single-active-writer assumption of a device-local session.
	mu sync.Mutex
}

// New opens both database files and runs pending migrations.
func New(dataPath, securePath string) (*LocalStore, error) {
	db, err := Open(dataPath)
	if err != nil {
		return nil, err
	}
	sec, err := OpenSecure(securePath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &LocalStore{db: db, sec: sec}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = sec.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wires an existing pair of connections (used by tests and the
// factory). Migrations still run.
func NewWithDB(db, sec *sql.DB) (*LocalStore, error) {
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := ensureSchema(sec); err != nil {
		return nil, err
	}
	s := &LocalStore{db: db, sec: sec}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) Tracks() store.Tracks     { return (*localTracks)(s) }
func (s *LocalStore) Readings() store.Readings { return (*localReadings)(s) }
func (s *LocalStore) Profiles() store.Profiles { return (*localProfiles)(s) }

// HealthPing implements health.HealthPinger.
func (s *LocalStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases both underlying connections.
func (s *LocalStore) Close() error {
	err1 := s.db.Close()
	err2 := s.sec.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// --- kv plumbing ---

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func loadJSON(ctx context.Context, q querier, key string, v interface{}) error {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // absent collection decodes to the zero value
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func saveJSON(ctx context.Context, q querier, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, raw)
	return err
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// --- Tracks ---

type localTracks LocalStore

func (s *localTracks) Create(ctx context.Context, t *model.Track) (*model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *t
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt == 0 {
		out.CreatedAt = nowMillis()
	}

	var tracks []model.Track
	if err := loadJSON(ctx, s.db, keyTracks, &tracks); err != nil {
		return nil, err
	}
	tracks = append(tracks, out)
	if err := saveJSON(ctx, s.db, keyTracks, tracks); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *localTracks) List(ctx context.Context) ([]*model.Track, error) {
	var tracks []model.Track
	if err := loadJSON(ctx, s.db, keyTracks, &tracks); err != nil {
		return nil, err
	}
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].CreatedAt > tracks[j].CreatedAt })
	out := make([]*model.Track, len(tracks))
	for i := range tracks {
		out[i] = &tracks[i]
	}
	return out, nil
}

// Delete removes the track and all its readings in one transaction so the
// cascade cannot be half-applied.
func (s *localTracks) Delete(ctx context.Context, trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var tracks []model.Track
	if err := loadJSON(ctx, tx, keyTracks, &tracks); err != nil {
		return err
	}
	kept := tracks[:0]
	found := false
	for _, t := range tracks {
		if t.ID == trackID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return store.ErrNotFound
	}

	var readings []model.TrackReading
	if err := loadJSON(ctx, tx, keyReadings, &readings); err != nil {
		return err
	}
	keptReadings := readings[:0]
	for _, r := range readings {
		if r.TrackID != trackID {
			keptReadings = append(keptReadings, r)
		}
	}

	if err := saveJSON(ctx, tx, keyTracks, kept); err != nil {
		return err
	}
	if err := saveJSON(ctx, tx, keyReadings, keptReadings); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Readings ---

type localReadings LocalStore

func (s *localReadings) Create(ctx context.Context, r *model.TrackReading) (*model.TrackReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *r
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Timestamp == 0 {
		out.Timestamp = nowMillis()
	}
	if out.Year == 0 {
		out.Year = model.YearFromTimestamp(out.Timestamp)
	}

	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return nil, err
	}
	readings = append(readings, out)
	if err := saveJSON(ctx, s.db, keyReadings, readings); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *localReadings) ListByTrack(ctx context.Context, trackID string, year *int) ([]*model.TrackReading, error) {
	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return nil, err
	}
	var out []*model.TrackReading
	for i := range readings {
		r := &readings[i]
		if r.TrackID != trackID {
			continue
		}
		if year != nil && r.Year != *year {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (s *localReadings) Update(ctx context.Context, readingID string, u model.ReadingUpdate) (*model.TrackReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return nil, err
	}
	for i := range readings {
		if readings[i].ID != readingID {
			continue
		}
		u.Apply(&readings[i])
		if err := saveJSON(ctx, s.db, keyReadings, readings); err != nil {
			return nil, err
		}
		out := readings[i]
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (s *localReadings) Delete(ctx context.Context, readingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return err
	}
	kept := readings[:0]
	found := false
	for _, r := range readings {
		if r.ID == readingID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return store.ErrNotFound
	}
	return saveJSON(ctx, s.db, keyReadings, kept)
}

func (s *localReadings) Years(ctx context.Context, trackID string) ([]int, error) {
	var readings []model.TrackReading
	if err := loadJSON(ctx, s.db, keyReadings, &readings); err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	for _, r := range readings {
		if trackID != "" && r.TrackID != trackID {
			continue
		}
		if r.Year != 0 {
			seen[r.Year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// --- Profiles ---

type localProfiles LocalStore

func (s *localProfiles) Upsert(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *p
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Color == "" {
		out.Color = model.DefaultProfileColor(out.ID)
	}
	now := nowMillis()
	if out.CreatedAt == 0 {
		out.CreatedAt = now
	}
	out.UpdatedAt = now

	var profiles []model.UserProfile
	if err := loadJSON(ctx, s.sec, keyProfiles, &profiles); err != nil {
		return nil, err
	}
	replaced := false
	for i := range profiles {
		if profiles[i].ID == out.ID {
			profiles[i] = out
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, out)
	}
	if err := saveJSON(ctx, s.sec, keyProfiles, profiles); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *localProfiles) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	var profiles []model.UserProfile
	if err := loadJSON(ctx, s.sec, keyProfiles, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			out := profiles[i]
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *localProfiles) List(ctx context.Context, includeInactive bool) ([]*model.UserProfile, error) {
	var profiles []model.UserProfile
	if err := loadJSON(ctx, s.sec, keyProfiles, &profiles); err != nil {
		return nil, err
	}
	var out []*model.UserProfile
	for i := range profiles {
		if !includeInactive && !profiles[i].IsActive {
			continue
		}
		out = append(out, &profiles[i])
	}
	return out, nil
}

func (s *localProfiles) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []model.UserProfile
	if err := loadJSON(ctx, s.sec, keyProfiles, &profiles); err != nil {
		return err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			profiles[i].IsActive = false
			profiles[i].UpdatedAt = nowMillis()
			return saveJSON(ctx, s.sec, keyProfiles, profiles)
		}
	}
	return store.ErrNotFound
}

// SetActiveProfile records which profile the current session runs as.
func (s *LocalStore) SetActiveProfile(ctx context.Context, p *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(ctx, s.db, keyActive, p)
}

// ActiveProfile returns the recorded session profile, or nil when none is set.
func (s *LocalStore) ActiveProfile(ctx context.Context) (*model.UserProfile, error) {
	var p *model.UserProfile
	if err := loadJSON(ctx, s.db, keyActive, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// ClearActiveProfile removes the session profile record.
func (s *LocalStore) ClearActiveProfile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, keyActive)
	return err
}
