package entity

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05"

	secondsPerDay = 24 * 60 * 60
)

// Layouts accepted for admission and discharge dates. Manual admissions store
// an ISO datetime, imports usually carry a plain date.
var dateLayouts = []string{
	DateLayout,
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// ParseCalendarDate parses an ISO date or datetime and returns the calendar
// date it falls on.
func ParseCalendarDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// StayDuration returns discharge minus admission in whole days, or nil when
// either date is missing or malformed. The result may be negative. Both dates
// are UTC midnights, so Unix seconds divide evenly into days at any span.
func StayDuration(doa, dod *string) *int {
	if doa == nil || dod == nil {
		return nil
	}
	admitted, ok := ParseCalendarDate(*doa)
	if !ok {
		return nil
	}
	discharged, ok := ParseCalendarDate(*dod)
	if !ok {
		return nil
	}
	days := int((discharged.Unix() - admitted.Unix()) / secondsPerDay)
	return &days
}

// FormatTimestamp renders t the way manual admissions and discharges are stored
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
