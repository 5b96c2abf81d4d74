package trackday

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

// 2024-07-05T03:30:00Z is still the evening of July 4th in New York.
const lateNightUTC = int64(1720150200000)

// 2024-07-05T00:00:00Z, 8 PM on July 4th in New York.
const eveningUTC = int64(1720137600000)

func TestDayKeyUsesTrackZone(t *testing.T) {
	assert.Equal(t, "2024-07-04", DayKey(lateNightUTC, "America/New_York"))
	assert.Equal(t, "2024-07-05", DayKey(lateNightUTC, "UTC"))
}

func TestDayKeyFallsBackToLocalZone(t *testing.T) {
	// Unknown and empty zones resolve identically (device-local).
	assert.Equal(t, DayKey(eveningUTC, ""), DayKey(eveningUTC, "Not/AZone"))
}

func TestDisplayTime(t *testing.T) {
	assert.Equal(t, "8:00 PM", DisplayTime(eveningUTC, "America/New_York"))
	assert.Equal(t, "12:00 AM", DisplayTime(eveningUTC, "UTC"))
	assert.Equal(t, "11:30 PM", DisplayTime(lateNightUTC, "America/New_York"))
}

// A reading logged at 2024-07-04T16:00:00Z at a New York track lands on
// July 4th at noon local.
func TestAfternoonReadingResolvesToLocalNoon(t *testing.T) {
	const ts = int64(1720108800000)
	assert.Equal(t, "2024-07-04", DayKey(ts, "America/New_York"))
	assert.Equal(t, "12:00 PM", DisplayTime(ts, "America/New_York"))
}

func TestReadingDayKeyPriority(t *testing.T) {
	r := model.TrackReading{
		TrackDate: "2024-07-04",
		Date:      "2024-07-05",
		Timestamp: lateNightUTC,
	}
	assert.Equal(t, "2024-07-04", ReadingDayKey(r), "trackDate wins")

	r.TrackDate = ""
	assert.Equal(t, "2024-07-05", ReadingDayKey(r), "legacy date is second")

	r.Date = ""
	assert.Equal(t, DayKey(lateNightUTC, ""), ReadingDayKey(r), "timestamp is last resort")
}

func TestReadingDisplayTime(t *testing.T) {
	r := model.TrackReading{Timestamp: eveningUTC, TimeZone: "America/New_York", Time: "9:99 XX"}
	assert.Equal(t, "8:00 PM", ReadingDisplayTime(r), "zone + timestamp derive the time")

	r.TimeZone = ""
	assert.Equal(t, "9:99 XX", ReadingDisplayTime(r), "legacy string passes through verbatim")
}

func TestGroupByDay(t *testing.T) {
	readings := []model.TrackReading{
		{ID: "a", TrackDate: "2024-07-04", Timestamp: 100},
		{ID: "b", TrackDate: "2024-07-05", Timestamp: 300},
		{ID: "c", TrackDate: "2024-07-04", Timestamp: 200},
		{ID: "d", TrackDate: "2024-07-05", Timestamp: 250},
	}
	groups := GroupByDay(readings)

	assert.Len(t, groups, 2)
	assert.Equal(t, "2024-07-05", groups[0].Key)
	assert.Equal(t, "2024-07-04", groups[1].Key)

	assert.Equal(t, "b", groups[0].Readings[0].ID)
	assert.Equal(t, "d", groups[0].Readings[1].ID)
	assert.Equal(t, "c", groups[1].Readings[0].ID)
	assert.Equal(t, "a", groups[1].Readings[1].ID)
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
}
