// Package dateutil holds the calendar helpers shared by the parser, the
// aggregator and the CLI. Dates travel as ISO strings (YYYY-MM-DD) and are
// interpreted in UTC so week arithmetic never crosses a DST boundary.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO date layout used for week keys and meal dates.
const Layout = "2006-01-02"

// weekdays lists day names in plan order, Monday first.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseDate parses a strict YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns date shifted by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// WeekStart returns the Monday on or before date. Sunday belongs to the week
// that started the previous Monday.
func WeekStart(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	// time.Weekday counts from Sunday=0; shift so Monday=0 ... Sunday=6.
	offset := (int(t.Weekday()) + 6) % 7
	return Format(t.AddDate(0, 0, -offset)), nil
}

// EndDate returns the last day (Sunday) of the week starting at start.
func EndDate(start string) (string, error) {
	return AddDays(start, 6)
}

// DayName returns the English weekday name of date.
func DayName(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Weekday().String(), nil
}

// DayOffset maps a weekday name to its distance from Monday.
func DayOffset(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, d := range weekdays {
		if strings.EqualFold(d, name) {
			return i, true
		}
	}
	return 0, false
}

// IsWeekday reports whether name is an English weekday name.
func IsWeekday(name string) bool {
	_, ok := DayOffset(name)
	return ok
}

// FormatDateRange renders a human label for a week:
//
//	same month:      "Jun 3–9, 2024"
//	different month: "Jul 29 – Aug 4, 2024"
//
// The year is always taken from the end date.
func FormatDateRange(start, end string) (string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return "", err
	}
	e, err := ParseDate(end)
	if err != nil {
		return "", err
	}

	startMonth := s.Format("Jan")
	endMonth := e.Format("Jan")
	if startMonth == endMonth {
		return fmt.Sprintf("%s %d–%d, %d", startMonth, s.Day(), e.Day(), e.Year()), nil
	}
	return fmt.Sprintf("%s %d – %s %d, %d", startMonth, s.Day(), endMonth, e.Day(), e.Year()), nil
}
