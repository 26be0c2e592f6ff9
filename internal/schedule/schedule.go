// Package schedule holds the pure date helpers shared by the daily
// tracking service: local calendar-day keys and plan duration parsing.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDurationDays is used when a plan carries no parseable duration.
const DefaultDurationDays = 28

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(weeks?|days?)`)

// DateKey formats a timestamp as YYYY-MM-DD using the local calendar date.
// No timezone is stored alongside the key; entries made from different
// timezones may land on different calendar days, matching existing data.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDurationDays scans text for a leading count followed by "week(s)"
// or "day(s)" and returns the total day count. Weeks multiply by 7, a zero
// count floors to one unit, and anything unparseable returns fallback.
func ParseDurationDays(text string, fallback int) int {
	match := durationPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return fallback
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return fallback
	}
	if n < 1 {
		n = 1
	}
	if strings.HasPrefix(strings.ToLower(match[2]), "week") {
		return n * 7
	}
	return n
}

// StartOfDay returns local midnight for the given instant.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WindowEnd computes the inclusive end of a plan window that starts at
// local midnight: the last millisecond of the final day.
func WindowEnd(start time.Time, durationDays int) time.Time {
	return start.Add(time.Duration(durationDays)*24*time.Hour - time.Millisecond)
}

// ElapsedDays counts calendar days from start through min(now, end),
// capped at durationDays. A session started today has one elapsed day.
func ElapsedDays(start, end, now time.Time, durationDays int) int {
	cutoff := now
	if end.Before(cutoff) {
		cutoff = end
	}
	days := int(cutoff.Sub(start).Hours()/24) + 1
	if days < 0 {
		days = 0
	}
	if durationDays > 0 && days > durationDays {
		days = durationDays
	}
	return days
}
