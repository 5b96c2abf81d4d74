package supabase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

func TestISOTimestampConversion(t *testing.T) {
	ms := int64(1720107000000)
	assert.Equal(t, ms, fromISO(toISO(ms)))

	// Seconds-precision timestamps from older rows still parse.
	assert.Equal(t, int64(1720094400000), fromISO("2024-07-04T12:00:00Z"))
	assert.Zero(t, fromISO(""))
	assert.Zero(t, fromISO("not-a-time"))
}

func TestReadingWireNullableColumns(t *testing.T) {
	r := &model.TrackReading{
		ID:        "r1",
		TrackID:   "t1",
		Timestamp: 1720107000000,
		Year:      2024,
		LeftLane:  model.LaneReading{TrackTemp: "118.4"},
	}
	row := readingToWire(r)
	assert.Nil(t, row.Session)
	assert.Nil(t, row.TimeZone)
	assert.Nil(t, row.TrackDate)

	back := readingFromWire(row)
	assert.Equal(t, r, back)
}

func TestReadingWireRoundTripAllFields(t *testing.T) {
	r := &model.TrackReading{
		ID:                    "r2",
		TrackID:               "t1",
		Date:                  "2024-07-04",
		Time:                  "8:00 PM",
		Timestamp:             1720137600000,
		Year:                  2024,
		Session:               "Q1",
		Pair:                  "A",
		ClassCurrentlyRunning: "Top Fuel",
		LeftLane: model.LaneReading{
			TrackTemp: "118.4",
			UVIndex:   "7",
			KegSL:     "1.2",
			KegOut:    "1.4",
			GrippoSL:  "3.1",
			GrippoOut: "2.9",
			Shine:     "4",
			Notes:     "rubber building",
			ImageURI:  "file:///left.jpg",
		},
		RightLane: model.LaneReading{
			TrackTemp: "119.1",
			UVIndex:   "7",
			KegSL:     "1.1",
			KegOut:    "1.3",
			GrippoSL:  "3.0",
			GrippoOut: "2.8",
			Shine:     "5",
			Notes:     "tight groove",
			ImageURI:  "file:///right.jpg",
		},
		TimeZone:  "America/New_York",
		TrackDate: "2024-07-04",
	}
	assert.Equal(t, r, readingFromWire(readingToWire(r)))
}

func TestProfileFromWireDefaultsColor(t *testing.T) {
	p := profileFromWire(profileRow{ID: "p1", Name: "Crew Chief", IsActive: true})
	assert.Equal(t, model.DefaultProfileColor("p1"), p.Color)

	// An explicit color is never overridden.
	p = profileFromWire(profileRow{ID: "p1", Color: "#123456"})
	assert.Equal(t, "#123456", p.Color)
}
