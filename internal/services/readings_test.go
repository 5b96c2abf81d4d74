package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

// 2024-07-05T00:00:00Z, 8 PM on July 4th in New York.
const eveningUTC = int64(1720137600000)

func TestNormalizeReadingWithZone(t *testing.T) {
	r := model.TrackReading{Timestamp: eveningUTC, TimeZone: "America/New_York"}
	normalizeReading(&r)

	assert.Equal(t, "2024-07-04", r.TrackDate, "day resolves in the track's zone")
	assert.Equal(t, r.TrackDate, r.Date, "legacy date mirrors trackDate")
	assert.Equal(t, "8:00 PM", r.Time)
	assert.Equal(t, 2024, r.Year)
}

func TestNormalizeReadingWithoutZone(t *testing.T) {
	r := model.TrackReading{Timestamp: eveningUTC}
	normalizeReading(&r)

	assert.Empty(t, r.TrackDate)
	assert.NotEmpty(t, r.Date, "date falls back to the device-local day")
	assert.NotEmpty(t, r.Time)
}

func TestNormalizeReadingKeepsProvidedFields(t *testing.T) {
	r := model.TrackReading{Timestamp: eveningUTC, Date: "2024-01-01", Time: "9:15 AM", Year: 1999}
	normalizeReading(&r)

	assert.Equal(t, "2024-01-01", r.Date)
	assert.Equal(t, "9:15 AM", r.Time)
	assert.Equal(t, 1999, r.Year)
}

func TestNormalizeReadingDefaultsTimestamp(t *testing.T) {
	r := model.TrackReading{}
	normalizeReading(&r)

	assert.NotZero(t, r.Timestamp)
	assert.Equal(t, model.YearFromTimestamp(r.Timestamp), r.Year)
}

func TestCreateReadingPersistsNormalizedFields(t *testing.T) {
	st := newStubStore()
	svc := NewReadingService(st, zerolog.Nop())

	out := svc.CreateReading(context.Background(), &model.TrackReading{
		TrackID:   "t1",
		Timestamp: eveningUTC,
		TimeZone:  "America/New_York",
	})
	require.NotNil(t, out)
	assert.Equal(t, "2024-07-04", out.TrackDate)
	assert.Equal(t, 2024, out.Year)
	require.Len(t, st.readings.rows, 1)
	assert.Equal(t, "2024-07-04", st.readings.rows[0].TrackDate)
}

func TestReadingServiceSwallowsStoreErrors(t *testing.T) {
	st := newStubStore()
	st.readings.fail = true
	svc := NewReadingService(st, zerolog.Nop())
	ctx := context.Background()

	assert.Nil(t, svc.CreateReading(ctx, &model.TrackReading{TrackID: "t1"}))
	assert.Empty(t, svc.GetReadingsForTrack(ctx, "t1", nil))
	assert.Nil(t, svc.UpdateReading(ctx, "r1", model.ReadingUpdate{}))
	assert.False(t, svc.DeleteReading(ctx, "r1"))
	assert.Empty(t, svc.GetAvailableYears(ctx, ""))
}

func TestGetReadingsYearFilter(t *testing.T) {
	st := newStubStore()
	svc := NewReadingService(st, zerolog.Nop())
	ctx := context.Background()

	svc.CreateReading(ctx, &model.TrackReading{TrackID: "t1", Timestamp: eveningUTC})
	svc.CreateReading(ctx, &model.TrackReading{TrackID: "t1", Timestamp: 1751646600000}) // 2025

	y := 2025
	got := svc.GetReadingsForTrack(ctx, "t1", &y)
	require.Len(t, got, 1)
	assert.Equal(t, 2025, got[0].Year)

	assert.Equal(t, []int{2025, 2024}, svc.GetAvailableYears(ctx, "t1"))
}
