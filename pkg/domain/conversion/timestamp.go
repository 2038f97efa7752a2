package conversion

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layouts accepted by ParseTimestamp, tried in order. Values without an
// offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp parses a point in time in any of the ISO 8601 forms clients
// are known to send and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Unix seconds of 0001-01-01T00:00:00Z and 10000-01-01T00:00:00Z.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300800
)

// TimestampFromUnix converts fractional Unix seconds to a UTC time. Values
// outside years 1 through 9999 are rejected before conversion so they cannot
// overflow.
func TimestampFromUnix(sec float64) (time.Time, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < minUnixSeconds || sec >= maxUnixSeconds {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, sec)
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC(), nil
}

// FormatTimestamp renders t the way the API emits timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
