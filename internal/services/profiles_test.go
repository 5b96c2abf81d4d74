package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasebfreeman/track-analyzer-pro/internal/auth"
	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

func newProfileFixture(withRemote bool) (*ProfileService, *stubProfiles, *stubProfiles) {
	local := &stubProfiles{m: map[string]*model.UserProfile{}}
	var remote *stubProfiles
	svc := NewProfileService(nil, local, zerolog.Nop())
	if withRemote {
		remote = &stubProfiles{m: map[string]*model.UserProfile{}}
		svc = NewProfileService(remote, local, zerolog.Nop())
	}
	return svc, remote, local
}

func TestCreateProfileHashesPinBeforeWrite(t *testing.T) {
	svc, remote, local := newProfileFixture(true)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.NotNil(t, p)
	assert.NotEqual(t, "1234", p.PinHash, "raw PIN never stored")
	assert.Equal(t, auth.PinHash("1234"), p.PinHash)
	assert.True(t, p.IsActive)

	// Dual write: both stores hold the same record.
	assert.Len(t, local.m, 1)
	assert.Len(t, remote.m, 1)
}

func TestCreateProfileSurvivesRemoteFailure(t *testing.T) {
	svc, remote, local := newProfileFixture(true)
	remote.fail = true

	p := svc.CreateUserProfile(context.Background(), "Crew Chief", "1234", "")
	require.NotNil(t, p, "remote is best-effort")
	assert.Len(t, local.m, 1)
}

func TestCreateProfileFailsWhenLocalFails(t *testing.T) {
	svc, _, local := newProfileFixture(true)
	local.fail = true

	assert.Nil(t, svc.CreateUserProfile(context.Background(), "Crew Chief", "1234", ""))
}

func TestVerifyUserPin(t *testing.T) {
	svc, _, _ := newProfileFixture(false)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.NotNil(t, p)

	assert.True(t, svc.VerifyUserPin(ctx, p.ID, "1234"))
	assert.False(t, svc.VerifyUserPin(ctx, p.ID, "4321"))
	assert.False(t, svc.VerifyUserPin(ctx, "missing", "1234"))
}

func TestVerifyUserPinRejectsInactiveProfile(t *testing.T) {
	svc, _, _ := newProfileFixture(false)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.True(t, svc.DeleteUserProfile(ctx, p.ID))
	assert.False(t, svc.VerifyUserPin(ctx, p.ID, "1234"))
}

func TestVerifyUserPinPrefersRemoteRecord(t *testing.T) {
	svc, remote, _ := newProfileFixture(true)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.NotNil(t, p)

	// Another device changed the PIN remotely; the stale local hash must not
	// win on the next verification.
	remote.m[p.ID].PinHash = auth.PinHash("9999")
	assert.True(t, svc.VerifyUserPin(ctx, p.ID, "9999"))
	assert.False(t, svc.VerifyUserPin(ctx, p.ID, "1234"))

	// Remote gone entirely: fall back to the local record.
	remote.fail = true
	assert.True(t, svc.VerifyUserPin(ctx, p.ID, "1234"))
}

func TestChangeUserPin(t *testing.T) {
	svc, _, local := newProfileFixture(false)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	upserts := local.upsertCount

	assert.False(t, svc.ChangeUserPin(ctx, p.ID, "wrong", "5678"), "old PIN must verify")
	assert.Equal(t, upserts, local.upsertCount, "failed change writes nothing")

	assert.True(t, svc.ChangeUserPin(ctx, p.ID, "1234", "5678"))
	assert.Equal(t, upserts+1, local.upsertCount, "hash swap is a single upsert")

	assert.False(t, svc.VerifyUserPin(ctx, p.ID, "1234"))
	assert.True(t, svc.VerifyUserPin(ctx, p.ID, "5678"))
}

func TestUpdateLastLogin(t *testing.T) {
	svc, _, local := newProfileFixture(false)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.Zero(t, local.m[p.ID].LastLoginAt)

	svc.UpdateLastLogin(ctx, p.ID)
	assert.NotZero(t, local.m[p.ID].LastLoginAt)
}

func TestDeleteUserProfileIsSoft(t *testing.T) {
	svc, remote, local := newProfileFixture(true)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.True(t, svc.DeleteUserProfile(ctx, p.ID))

	assert.False(t, local.m[p.ID].IsActive, "record kept, flagged inactive")
	assert.False(t, remote.m[p.ID].IsActive)
	assert.Empty(t, svc.GetUserProfiles(ctx))
}

func TestGetUserProfilesFallsBackToLocal(t *testing.T) {
	svc, remote, _ := newProfileFixture(true)
	ctx := context.Background()

	p := svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	require.NotNil(t, p)

	remote.fail = true
	got := svc.GetUserProfiles(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
}

func TestHasUsers(t *testing.T) {
	svc, _, _ := newProfileFixture(false)
	ctx := context.Background()

	assert.False(t, svc.HasUsers(ctx))
	svc.CreateUserProfile(ctx, "Crew Chief", "1234", "")
	assert.True(t, svc.HasUsers(ctx))
}
