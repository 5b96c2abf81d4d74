package model

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"
)

// Track is a racetrack a team records surface readings for.
type Track struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
}

// LaneReading holds the measurements captured for one physical lane.
// Numeric fields are free-form text exactly as typed at the track; use
// ParseMeasure when aggregating.
type LaneReading struct {
	TrackTemp string `json:"trackTemp"`
	UVIndex   string `json:"uvIndex"`
	KegSL     string `json:"kegSL"`
	KegOut    string `json:"kegOut"`
	GrippoSL  string `json:"grippoSL"`
	GrippoOut string `json:"grippoOut"`
	Shine     string `json:"shine"`
	Notes     string `json:"notes"`
	ImageURI  string `json:"imageUri,omitempty"`
}

// TrackReading is one recorded pair of lane measurements.
//
// Timestamp is authoritative for chronological ordering and for deriving
// Year. TrackDate, when present, is authoritative for day grouping; Date is
// a legacy duplicate kept in sync at write time. When TimeZone is set,
// TrackDate must be computed from Timestamp in that zone so a track's "day"
// is the same regardless of where the reading was recorded.
type TrackReading struct {
	ID                    string      `json:"id"`
	TrackID               string      `json:"trackId"`
	Date                  string      `json:"date"`
	Time                  string      `json:"time"`
	Timestamp             int64       `json:"timestamp"`
	Year                  int         `json:"year"`
	Session               string      `json:"session,omitempty"`
	Pair                  string      `json:"pair,omitempty"`
	ClassCurrentlyRunning string      `json:"classCurrentlyRunning,omitempty"`
	LeftLane              LaneReading `json:"leftLane"`
	RightLane             LaneReading `json:"rightLane"`
	TimeZone              string      `json:"timeZone,omitempty"`
	TrackDate             string      `json:"trackDate,omitempty"`
}

// ReadingUpdate is a partial update applied to an existing reading.
// Nil fields are left untouched.
type ReadingUpdate struct {
	Session               *string      `json:"session,omitempty"`
	Pair                  *string      `json:"pair,omitempty"`
	ClassCurrentlyRunning *string      `json:"classCurrentlyRunning,omitempty"`
	LeftLane              *LaneReading `json:"leftLane,omitempty"`
	RightLane             *LaneReading `json:"rightLane,omitempty"`
}

// Apply copies the non-nil fields onto r.
func (u ReadingUpdate) Apply(r *TrackReading) {
	if u.Session != nil {
		r.Session = *u.Session
	}
	if u.Pair != nil {
		r.Pair = *u.Pair
	}
	if u.ClassCurrentlyRunning != nil {
		r.ClassCurrentlyRunning = *u.ClassCurrentlyRunning
	}
	if u.LeftLane != nil {
		r.LeftLane = *u.LeftLane
	}
	if u.RightLane != nil {
		r.RightLane = *u.RightLane
	}
}

// UserProfile is a team member identified by a PIN. Profiles are
// soft-deleted: IsActive=false, never removed remotely.
type UserProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PinHash     string `json:"pinHash,omitempty"`
	Color       string `json:"color"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
	LastLoginAt int64  `json:"lastLoginAt,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Sanitized returns a copy safe to put on the wire to callers.
func (p UserProfile) Sanitized() UserProfile {
	out := p
	out.PinHash = ""
	return out
}

// ParseMeasure converts a free-form measurement string to a float.
// Anything unparseable counts as zero.
func ParseMeasure(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// YearFromTimestamp derives the calendar year used for year filtering.
func YearFromTimestamp(ms int64) int {
	return time.UnixMilli(ms).Year()
}

var profilePalette = []string{
	"#E53935", "#8E24AA", "#3949AB", "#039BE5",
	"#00897B", "#7CB342", "#FDD835", "#FB8C00",
}

// DefaultProfileColor picks a stable color for a profile that was saved
// without one. Same ID always yields the same color.
func DefaultProfileColor(id string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return profilePalette[h.Sum32()%uint32(len(profilePalette))]
}

// String implements fmt.Stringer for log output.
func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Location)
}
