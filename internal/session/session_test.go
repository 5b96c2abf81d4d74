package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	storelocal "github.com/chasebfreeman/track-analyzer-pro/internal/store/local"
)

func newTestSession(t *testing.T) (*Session, *storelocal.LocalStore) {
	t.Helper()
	dir := t.TempDir()
	st, err := storelocal.New(filepath.Join(dir, "data.db"), filepath.Join(dir, "secure.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st), st
}

func TestSessionFlow(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	cur, state := s.Current()
	assert.Nil(t, cur)
	assert.Equal(t, StateNoProfiles, state)

	p := &model.UserProfile{ID: "p1", Name: "Crew Chief", IsActive: true}
	require.NoError(t, s.Select(ctx, p))
	cur, state = s.Current()
	assert.Equal(t, "p1", cur.ID)
	assert.Equal(t, StateProfileSelected, state)

	s.Login()
	_, state = s.Current()
	assert.Equal(t, StateAuthenticated, state)

	// Logout keeps the selection.
	s.Logout()
	cur, state = s.Current()
	assert.Equal(t, "p1", cur.ID)
	assert.Equal(t, StateProfileSelected, state)

	require.NoError(t, s.Clear(ctx))
	cur, state = s.Current()
	assert.Nil(t, cur)
	assert.Equal(t, StateNoProfiles, state)
}

func TestLoginWithoutSelectionIsNoop(t *testing.T) {
	s, _ := newTestSession(t)
	s.Login()
	_, state := s.Current()
	assert.Equal(t, StateNoProfiles, state)
}

// The selected profile survives a restart; the authenticated flag does not.
func TestLoadOnStartRestoresSelectionNotAuth(t *testing.T) {
	s, st := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.Select(ctx, &model.UserProfile{ID: "p1", IsActive: true}))
	s.Login()

	fresh := New(st)
	require.NoError(t, fresh.LoadOnStart(ctx))
	cur, state := fresh.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "p1", cur.ID)
	assert.Equal(t, StateProfileSelected, state)
}
