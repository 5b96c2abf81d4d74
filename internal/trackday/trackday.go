// Package trackday resolves which track-local calendar day a reading
// belongs to. A reading recorded at 23:30 in New York stays on that New York
// day even when the recording phone was set to UTC.
package trackday

import (
	"sort"
	"time"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
)

const dayKeyLayout = "2006-01-02"

// DayKey formats a millisecond timestamp as YYYY-MM-DD in the given IANA
// zone. An empty or unresolvable zone falls back to the device-local zone.
// It never fails; the result is always a usable key.
func DayKey(ms int64, tz string) string {
	return time.UnixMilli(ms).In(resolveZone(tz)).Format(dayKeyLayout)
}

// DisplayTime formats a millisecond timestamp as a 12-hour clock reading
// with minute precision, e.g. "12:00 PM". Zone resolution matches DayKey.
func DisplayTime(ms int64, tz string) string {
	return time.UnixMilli(ms).In(resolveZone(tz)).Format("3:04 PM")
}

func resolveZone(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// ReadingDayKey returns the grouping key for a reading. Priority order:
// TrackDate (authoritative), legacy Date, then the local-zone date derived
// from Timestamp. The last resort can be wrong across zone boundaries for
// readings that predate per-reading timezone capture.
func ReadingDayKey(r model.TrackReading) string {
	if r.TrackDate != "" {
		return r.TrackDate
	}
	if r.Date != "" {
		return r.Date
	}
	return DayKey(r.Timestamp, "")
}

// ReadingDisplayTime returns the clock string shown for a reading. When the
// reading carries both a zone and a timestamp the time is derived from them;
// otherwise the stored legacy string is returned verbatim so historical
// display values are never re-derived into something wrong.
func ReadingDisplayTime(r model.TrackReading) string {
	if r.TimeZone != "" && r.Timestamp != 0 {
		return DisplayTime(r.Timestamp, r.TimeZone)
	}
	return r.Time
}

// DayGroup is one day-bucket of readings.
type DayGroup struct {
	Key      string               `json:"key"`
	Readings []model.TrackReading `json:"readings"`
}

// GroupByDay partitions readings into day buckets. Buckets are ordered most
// recent day first; within a bucket readings are ordered by timestamp
// descending.
func GroupByDay(readings []model.TrackReading) []DayGroup {
	buckets := make(map[string][]model.TrackReading)
	for _, r := range readings {
		key := ReadingDayKey(r)
		buckets[key] = append(buckets[key], r)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		rs := buckets[k]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Timestamp > rs[j].Timestamp })
		out = append(out, DayGroup{Key: k, Readings: rs})
	}
	return out
}
