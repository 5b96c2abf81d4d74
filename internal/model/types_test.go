package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMeasure(t *testing.T) {
	assert.Equal(t, 118.4, ParseMeasure("118.4"))
	assert.Equal(t, 118.4, ParseMeasure("  118.4 "))
	assert.Equal(t, float64(-2), ParseMeasure("-2"))

	// Unparseable text counts as zero, it never errors.
	assert.Zero(t, ParseMeasure(""))
	assert.Zero(t, ParseMeasure("n/a"))
	assert.Zero(t, ParseMeasure("118.4F"))
}

func TestYearFromTimestamp(t *testing.T) {
	// Mid-year timestamps avoid zone-boundary ambiguity.
	assert.Equal(t, 2024, YearFromTimestamp(1720107000000))
	assert.Equal(t, 2025, YearFromTimestamp(1751646600000))
}

func TestReadingUpdateApplyLeavesNilFieldsAlone(t *testing.T) {
	r := TrackReading{
		Session:   "Q1",
		Pair:      "1-2",
		LeftLane:  LaneReading{TrackTemp: "118.4"},
		RightLane: LaneReading{TrackTemp: "121.0"},
	}
	sess := "E3"
	right := LaneReading{TrackTemp: "125.5", Notes: "sprayed"}
	ReadingUpdate{Session: &sess, RightLane: &right}.Apply(&r)

	assert.Equal(t, "E3", r.Session)
	assert.Equal(t, "125.5", r.RightLane.TrackTemp)
	assert.Equal(t, "1-2", r.Pair)
	assert.Equal(t, "118.4", r.LeftLane.TrackTemp)
}

func TestDefaultProfileColorIsStable(t *testing.T) {
	c := DefaultProfileColor("p1")
	assert.Equal(t, c, DefaultProfileColor("p1"))
	assert.Contains(t, c, "#")
}

func TestSanitizedDropsPinHash(t *testing.T) {
	p := UserProfile{ID: "p1", Name: "Crew Chief", PinHash: "ab12"}
	out := p.Sanitized()
	assert.Empty(t, out.PinHash)
	assert.Equal(t, "ab12", p.PinHash, "receiver untouched")
	assert.Equal(t, "Crew Chief", out.Name)
}
