// Package timeutil provides the clock and week arithmetic shared by the
// submission pipeline and the reconciliation builders.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultZone is the delivery-site timezone used when none is configured.
const DefaultZone = "Europe/London"

// CurrentLocalTime returns the current wall-clock time as HH:MM in the named
// timezone. An unknown zone falls back to UTC rather than failing.
func CurrentLocalTime(zone string) string {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return time.Now().In(loc).Format("15:04")
}

// ISOWeekNumber returns the ISO-8601 week number (1-53) for the given date:
// shift the date to the Thursday of its week (Monday=1..Sunday=7), then count
// weeks from January 1 of that Thursday's year. Late-December dates can land
// in week 1 of the following year and early-January dates in week 52/53 of
// the previous year; deriving the year from the shifted Thursday handles both.
func ISOWeekNumber(t time.Time) int {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	dayNum := int(d.Weekday())
	if dayNum == 0 {
		dayNum = 7
	}
	thursday := d.AddDate(0, 0, 4-dayNum)
	yearStart := time.Date(thursday.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours()/24) + 1
	return (days + 6) / 7
}

// ParseClock parses an HH:MM 24-hour clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// ElapsedHours computes (timeOut - timeIn) in fractional hours. A timeOut
// earlier than timeIn yields a negative value; overnight shifts are not
// wrapped to the next day, callers decide how to treat the anomaly.
func ElapsedHours(timeIn, timeOut string) (float64, error) {
	in, err := ParseClock(timeIn)
	if err != nil {
		return 0, err
	}
	out, err := ParseClock(timeOut)
	if err != nil {
		return 0, err
	}
	return float64(out-in) / 60, nil
}
