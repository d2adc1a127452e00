package stickies

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp turns a loosely typed metadata value into a time in loc.
// Accepted shapes are native times, numeric epoch seconds (milliseconds are
// detected by magnitude) and ISO-8601 strings. Naive strings are read as
// wall-clock time in loc.
func ParseTimestamp(value any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch t := value.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.In(loc), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return ParseTimestamp(*t, loc)
	case int:
		return fromEpoch(float64(t), loc), true
	case int32:
		return fromEpoch(float64(t), loc), true
	case int64:
		return fromEpoch(float64(t), loc), true
	case uint64:
		return fromEpoch(float64(t), loc), true
	case float32:
		return fromEpoch(float64(t), loc), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return fromEpoch(t, loc), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ParseTimestamp(f, loc)
		}
		if tm, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return tm, true
		}
		if tm, err := time.Parse("2006-01-02T15:04:05.999999999-07:00", strings.Replace(s, " ", "T", 1)); err == nil {
			return tm, true
		}
		for _, layout := range naiveLayouts {
			if tm, err := time.ParseInLocation(layout, s, loc); err == nil {
				return tm, true
			}
		}
	}

	return time.Time{}, false
}

func fromEpoch(v float64, loc *time.Location) time.Time {
	if v > 1_000_000_000_000 || v < -1_000_000_000_000 {
		v = v / 1000
	}
	sec, frac := math.Modf(v)
	usec := math.Round(frac * 1e6)
	return time.Unix(int64(sec), int64(usec)*1000).In(loc)
}

// FirstMatchingTimestamp scans a mapping's keys in order and returns the
// first value under a key matching pattern that parses as a timestamp.
func FirstMatchingTimestamp(m Mapping, pattern *regexp.Regexp, loc *time.Location) (time.Time, bool) {
	if pattern == nil {
		return time.Time{}, false
	}
	for _, e := range m.Entries {
		if !pattern.MatchString(e.Key) {
			continue
		}
		sc, ok := e.Value.(Scalar)
		if !ok {
			continue
		}
		if tm, ok := ParseTimestamp(sc.Value, loc); ok {
			return tm, true
		}
	}
	return time.Time{}, false
}
