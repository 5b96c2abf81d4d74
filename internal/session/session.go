// Package session holds the process-wide current-identity state as an
// explicit container injected into handlers, instead of ambient globals.
package session

import (
	"context"
	"sync"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	storelocal "github.com/chasebfreeman/track-analyzer-pro/internal/store/local"
)

// State names a step of the authentication flow.
type State string

const (
	// StateNoProfiles applies only while zero active profiles exist.
	StateNoProfiles State = "no_profiles"
	// StateProfileSelected means a profile is chosen but the PIN has not
	// been verified yet.
	StateProfileSelected State = "profile_selected"
	// StateAuthenticated means the PIN was verified for the selected
	// profile.
	StateAuthenticated State = "authenticated"
)

// Session tracks which profile the current process runs as. The selected
// profile is persisted to local storage so it survives restarts; the
// authenticated flag never is.
type Session struct {
	mu      sync.RWMutex
	local   *storelocal.LocalStore
	current *model.UserProfile
	state   State
}

// New builds an empty session bound to the local store.
func New(local *storelocal.LocalStore) *Session {
	return &Session{local: local, state: StateNoProfiles}
}

// LoadOnStart restores the previously selected profile, if any.
func (s *Session) LoadOnStart(ctx context.Context) error {
	p, err := s.local.ActiveProfile(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p != nil {
		s.current = p
		s.state = StateProfileSelected
	}
	return nil
}

// Select makes a profile current without authenticating it.
func (s *Session) Select(ctx context.Context, p *model.UserProfile) error {
	if err := s.local.SetActiveProfile(ctx, p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	s.state = StateProfileSelected
	return nil
}

// Login marks the selected profile as PIN-verified.
func (s *Session) Login() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.state = StateAuthenticated
	}
}

// Logout drops authentication but keeps the profile selected.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.state = StateProfileSelected
	}
}

// Clear forgets the selected profile entirely (switch-user flow).
func (s *Session) Clear(ctx context.Context) error {
	if err := s.local.ClearActiveProfile(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.state = StateNoProfiles
	return nil
}

// Current returns the selected profile (nil when none) and the flow state.
func (s *Session) Current() (*model.UserProfile, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.state
}
