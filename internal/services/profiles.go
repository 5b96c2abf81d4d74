package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/chasebfreeman/track-analyzer-pro/internal/auth"
	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

// ProfileService manages PIN-authenticated user profiles with a dual-write
// discipline: every mutation lands in the restricted local store, and
// additionally in the remote backend when one is configured. Local storage
// is the durability backstop; a remote failure is logged but does not fail
// the operation.
type ProfileService struct {
	remote store.Profiles // nil when the remote backend is not configured
	local  store.Profiles
	log    zerolog.Logger
}

// NewProfileService wires the service. remote may be nil.
func NewProfileService(remote, local store.Profiles, log zerolog.Logger) *ProfileService {
	return &ProfileService{remote: remote, local: local, log: log}
}

// CreateUserProfile registers a new profile with the PIN hashed before any
// write. Nil on failure.
func (s *ProfileService) CreateUserProfile(ctx context.Context, name, pin, color string) *model.UserProfile {
	p := &model.UserProfile{
		Name:     name,
		PinHash:  auth.PinHash(pin),
		Color:    color,
		IsActive: true,
	}
	out, err := s.local.Upsert(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create profile failed locally")
		return nil
	}
	s.writeRemote(ctx, out, "create profile")
	return out
}

// VerifyUserPin reports whether the PIN matches the stored hash for an
// active profile. The authoritative record is read fresh on every call,
// remote-preferred with local fallback; there is no cached credential state.
func (s *ProfileService) VerifyUserPin(ctx context.Context, userID, pin string) bool {
	p := s.fetch(ctx, userID)
	if p == nil || !p.IsActive {
		return false
	}
	return auth.VerifyPin(pin, p.PinHash)
}

// ChangeUserPin swaps the PIN after verifying the old one. The stored hash
// changes in a single upsert, so at no point do both PINs verify.
func (s *ProfileService) ChangeUserPin(ctx context.Context, userID, oldPin, newPin string) bool {
	p := s.fetch(ctx, userID)
	if p == nil || !p.IsActive || !auth.VerifyPin(oldPin, p.PinHash) {
		return false
	}
	p.PinHash = auth.PinHash(newPin)
	out, err := s.local.Upsert(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("change pin failed locally")
		return false
	}
	s.writeRemote(ctx, out, "change pin")
	return true
}

// UpdateLastLogin stamps the profile's last successful login time.
func (s *ProfileService) UpdateLastLogin(ctx context.Context, userID string) {
	p := s.fetch(ctx, userID)
	if p == nil {
		return
	}
	p.LastLoginAt = time.Now().UnixMilli()
	out, err := s.local.Upsert(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("update last login failed locally")
		return
	}
	s.writeRemote(ctx, out, "update last login")
}

// DeleteUserProfile soft-deletes: the profile is flagged inactive, never
// removed from the remote backend. False on local failure.
func (s *ProfileService) DeleteUserProfile(ctx context.Context, userID string) bool {
	if err := s.local.SoftDelete(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("delete profile failed locally")
		return false
	}
	if s.remote != nil {
		if err := s.remote.SoftDelete(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("delete profile failed remotely")
		}
	}
	return true
}

// GetUserProfiles lists active profiles, remote-preferred. Empty on failure.
func (s *ProfileService) GetUserProfiles(ctx context.Context) []*model.UserProfile {
	if s.remote != nil {
		if profiles, err := s.remote.List(ctx, false); err == nil {
			return profiles
		} else {
			s.log.Warn().Err(err).Msg("remote profile list failed, falling back to local")
		}
	}
	profiles, err := s.local.List(ctx, false)
	if err != nil {
		s.log.Error().Err(err).Msg("local profile list failed")
		return []*model.UserProfile{}
	}
	return profiles
}

// GetUserProfile returns one profile record, remote-preferred with local
// fallback. Nil when the profile does not exist anywhere.
func (s *ProfileService) GetUserProfile(ctx context.Context, userID string) *model.UserProfile {
	return s.fetch(ctx, userID)
}

// HasUsers reports whether any active profile exists.
func (s *ProfileService) HasUsers(ctx context.Context) bool {
	return len(s.GetUserProfiles(ctx)) > 0
}

// fetch reads the authoritative profile record: remote when configured,
// local as fallback. Nil when the profile cannot be found anywhere.
func (s *ProfileService) fetch(ctx context.Context, userID string) *model.UserProfile {
	if s.remote != nil {
		if p, err := s.remote.Get(ctx, userID); err == nil {
			return p
		} else if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("remote profile read failed, falling back to local")
		}
	}
	p, err := s.local.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("local profile read failed")
		}
		return nil
	}
	return p
}

func (s *ProfileService) writeRemote(ctx context.Context, p *model.UserProfile, op string) {
	if s.remote == nil {
		return
	}
	if _, err := s.remote.Upsert(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("user_id", p.ID).Msgf("%s failed remotely", op)
	}
}
