// Package week converts calendar time to ISO-8601 week identifiers and
// back. Weeks start on Monday; week 1 is the week containing the first
// Thursday of the year. All functions are pure.
package week

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ID identifies one ISO week, formatted YYYY-Www (e.g. "2026-W09").
type ID string

var ErrInvalidWeekID = errors.New("invalid week id")

var idPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Current returns the ISO week containing now.
func Current(now time.Time) ID {
	year, wk := now.ISOWeek()
	return ID(fmt.Sprintf("%04d-W%02d", year, wk))
}

// Parse validates s and returns it as an ID. The week number must exist
// in the given year (week 53 is only valid in long years).
func Parse(s string) (ID, error) {
	id := ID(s)
	if _, _, err := Bounds(id); err != nil {
		return "", err
	}
	return id, nil
}

// Bounds returns the start (Monday 00:00:00 UTC) and end (Sunday
// 23:59:59.999999999 UTC) of the week.
func Bounds(id ID) (start, end time.Time, err error) {
	m := idPattern.FindStringSubmatch(string(id))
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}
	year, _ := strconv.Atoi(m[1])
	wk, _ := strconv.Atoi(m[2])
	if wk < 1 || wk > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}

	// January 4th is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	week1Monday := jan4.AddDate(0, 0, -offset)

	start = week1Monday.AddDate(0, 0, (wk-1)*7)

	// Reject week 53 in years that only have 52 weeks.
	if y, w := start.ISOWeek(); y != year || w != wk {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}

	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end, nil
}

// WeeksUntil returns the number of whole week boundaries between the
// start of the given week and target: 0 when target falls inside the
// week, positive for future weeks, negative once target lies before the
// week started (deadline passed).
func WeeksUntil(target time.Time, from ID) (int, error) {
	start, _, err := Bounds(from)
	if err != nil {
		return 0, err
	}
	t := target.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(start).Hours() / 24)
	return floorDiv(days, 7), nil
}

// Next returns the week following id.
func Next(id ID) (ID, error) {
	start, _, err := Bounds(id)
	if err != nil {
		return "", err
	}
	return Current(start.AddDate(0, 0, 7)), nil
}

// Prev returns the week preceding id.
func Prev(id ID) (ID, error) {
	start, _, err := Bounds(id)
	if err != nil {
		return "", err
	}
	return Current(start.AddDate(0, 0, -7)), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
