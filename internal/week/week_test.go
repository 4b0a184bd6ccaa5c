package week

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		now  time.Time
		want ID
	}{
		{date(2026, time.February, 25), "2026-W09"},
		{date(2026, time.January, 1), "2026-W01"},   // Thursday of week 1
		{date(2025, time.December, 29), "2026-W01"}, // Monday belongs to next ISO year
		{date(2025, time.December, 28), "2025-W52"}, // Sunday still in old year
		{date(2024, time.December, 30), "2025-W01"},
		{date(2020, time.December, 31), "2020-W53"}, // long year
	}
	for _, tt := range tests {
		got := Current(tt.now)
		if got != tt.want {
			t.Errorf("Current(%s) = %s, want %s", tt.now.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	start, end, err := Bounds("2026-W09")
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if !start.Equal(date(2026, time.February, 23)) {
		t.Errorf("expected start 2026-02-23, got %s", start)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("expected Monday start, got %s", start.Weekday())
	}
	wantEnd := date(2026, time.March, 2).Add(-time.Nanosecond)
	if !end.Equal(wantEnd) {
		t.Errorf("expected end %s, got %s", wantEnd, end)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{"", "2026W09", "2026-w09", "2026-W9", "2026-W00", "2026-W54", "garbage", "2021-W53"}
	for _, s := range bad {
		_, err := Parse(s)
		if !errors.Is(err, ErrInvalidWeekID) {
			t.Errorf("Parse(%q) expected ErrInvalidWeekID, got %v", s, err)
		}
	}
}

func TestParseAcceptsLongYearWeek53(t *testing.T) {
	id, err := Parse("2020-W53")
	if err != nil {
		t.Fatalf("Parse(2020-W53) failed: %v", err)
	}
	if id != "2020-W53" {
		t.Errorf("unexpected id %s", id)
	}
}

func TestWeeksUntil(t *testing.T) {
	from := ID("2026-W09") // starts Monday 2026-02-23
	tests := []struct {
		target time.Time
		want   int
	}{
		{date(2026, time.February, 23), 0}, // week start itself
		{date(2026, time.February, 25), 0}, // inside the week
		{date(2026, time.March, 1), 0},     // Sunday, still inside
		{date(2026, time.March, 2), 1},     // next Monday
		{date(2026, time.March, 15), 3},
		{date(2026, time.February, 22), -1}, // day before the week
		{date(2026, time.February, 9), -2},
	}
	for _, tt := range tests {
		got, err := WeeksUntil(tt.target, from)
		if err != nil {
			t.Fatalf("WeeksUntil(%s) failed: %v", tt.target.Format("2006-01-02"), err)
		}
		if got != tt.want {
			t.Errorf("WeeksUntil(%s) = %d, want %d", tt.target.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestNextPrevRoundTrip(t *testing.T) {
	next, err := Next("2025-W52")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next != "2026-W01" {
		t.Errorf("Next(2025-W52) = %s, want 2026-W01", next)
	}
	prev, err := Prev(next)
	if err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if prev != "2025-W52" {
		t.Errorf("Prev(%s) = %s, want 2025-W52", next, prev)
	}
}

func TestNextAcrossLongYear(t *testing.T) {
	next, err := Next("2020-W53")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next != "2021-W01" {
		t.Errorf("Next(2020-W53) = %s, want 2021-W01", next)
	}
}
