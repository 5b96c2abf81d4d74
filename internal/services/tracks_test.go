package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackServiceRoundTrip(t *testing.T) {
	st := newStubStore()
	svc := NewTrackService(st, zerolog.Nop())
	ctx := context.Background()

	tr := svc.CreateTrack(ctx, "Bandimere", "Morrison, CO")
	require.NotNil(t, tr)
	assert.NotEmpty(t, tr.ID)

	assert.Len(t, svc.GetAllTracks(ctx), 1)
	assert.True(t, svc.DeleteTrack(ctx, tr.ID))
	assert.Empty(t, svc.GetAllTracks(ctx))
}

// The façade never returns errors: failures become empty/nil/false.
func TestTrackServiceSwallowsStoreErrors(t *testing.T) {
	st := newStubStore()
	st.tracks.fail = true
	svc := NewTrackService(st, zerolog.Nop())
	ctx := context.Background()

	got := svc.GetAllTracks(ctx)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Nil(t, svc.CreateTrack(ctx, "x", ""))
	assert.False(t, svc.DeleteTrack(ctx, "t1"))
}

func TestDeleteMissingTrackIsFalse(t *testing.T) {
	svc := NewTrackService(newStubStore(), zerolog.Nop())
	assert.False(t, svc.DeleteTrack(context.Background(), "nope"))
}
