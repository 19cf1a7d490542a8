package meta

import (
	"strings"
	"time"
)

// dateKeys are checked in order for the observation date
var dateKeys = []string{"date-obs", "date_obs", "date"}

// dateLayouts are tried in order; older instruments write slashes and split date and time
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006/01/02T15:04:05.999999999",
	"2006/01/02T15:04:05",
	"2006/01/02 15:04:05.999999999",
	"2006/01/02",
	"2006-01-02",
	"02/01/06",
}

// ObservationTime extracts the observation time from a header.
// If the date carries no time of day and time-obs is present, the two are combined.
func ObservationTime(h Header) (time.Time, bool) {
	if h == nil {
		return time.Time{}, false
	}
	for _, key := range dateKeys {
		raw := strings.TrimSpace(h.String(key))
		if raw == "" {
			continue
		}
		if !strings.ContainsAny(raw, "T ") {
			if tobs := strings.TrimSpace(h.String("time-obs")); tobs != "" {
				if t, ok := ParseTime(raw + "T" + tobs); ok {
					return t, true
				}
			}
		}
		if t, ok := ParseTime(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTime parses the timestamp formats found in solar image headers.
// The result is always in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "Z"))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// RFC3339 needs the zone that was trimmed above
	if t, err := time.Parse(time.RFC3339Nano, s+"Z"); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
