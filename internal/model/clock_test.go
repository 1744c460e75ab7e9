package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"21:00", 1260, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"9", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClockTime(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidClockTime) {
				t.Fatalf("parse %q: expected invalid clock time error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockTimeString(t *testing.T) {
	if got := ClockTime(540).String(); got != "09:00" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := EndOfDay.String(); got != "24:00" {
		t.Fatalf("unexpected end-of-day format: %s", got)
	}
}

func TestEndOfDayStaysOnSameDay(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	at := EndOfDay.At(day)
	if at.Day() != 1 {
		t.Fatalf("24:00 leaked into the next day: %s", at.Format(time.RFC3339))
	}
	if !at.After(ClockTime(1439).At(day)) {
		t.Fatal("24:00 should sort after 23:59")
	}
}

func TestDateWeekBounds(t *testing.T) {
	// 2025-01-01 is a Wednesday.
	mon, sun := Date("2025-01-01").WeekBounds()
	if mon != "2024-12-30" || sun != "2025-01-05" {
		t.Fatalf("unexpected week bounds: %s..%s", mon, sun)
	}
}

func TestDateAddDays(t *testing.T) {
	if got := Date("2025-01-01").AddDays(-1); got != "2024-12-31" {
		t.Fatalf("unexpected previous day: %s", got)
	}
}
