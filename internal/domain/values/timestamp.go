package values

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Wall-clock values are kept as written;
// offsets in RFC3339 input are preserved, never converted.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a transaction or usage-log timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, _, err := ParseTimestampOffset(s)
	return t, err
}

// ParseTimestampOffset is ParseTimestamp that also reports whether the
// input carried an explicit UTC offset (RFC3339 only).
func ParseTimestampOffset(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}
	for i, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, i == 0, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", s)
}
