package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClockTime = errors.New("model: invalid clock time")
	ErrInvalidDate      = errors.New("model: invalid date")
)

const DateLayout = "2006-01-02"

// ClockTime is a wall-clock moment within a day, stored as minutes from
// midnight. The value 1440 ("24:00") is legal and denotes end-of-day; it is
// never normalized to the next day's 00:00.
type ClockTime int

const EndOfDay ClockTime = 1440

func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	if hh < 0 || hh > 24 || (hh == 24 && mm != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime(hh*60 + mm), nil
}

func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) IsValid() bool {
	return c >= 0 && c <= EndOfDay
}

// At anchors the clock time onto a calendar day in the given location.
// "24:00" maps to 23:59:59.999999999 of the same day so that range queries
// never bleed into the following day.
func (c ClockTime) At(day time.Time) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if c >= EndOfDay {
		return midnight.Add(24*time.Hour - time.Nanosecond)
	}
	return midnight.Add(time.Duration(c) * time.Minute)
}

// Date is a calendar day in the user's local timezone, "YYYY-MM-DD".
type Date string

func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func Today() Date {
	return NewDate(time.Now())
}

func (d Date) Validate() error {
	if _, err := time.ParseInLocation(DateLayout, string(d), time.Local); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, d)
	}
	return nil
}

// Midnight returns 00:00 of the day in the local timezone.
func (d Date) Midnight() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
	}
	return t, nil
}

func (d Date) AddDays(n int) Date {
	t, err := d.Midnight()
	if err != nil {
		return d
	}
	return NewDate(t.AddDate(0, 0, n))
}

// WeekBounds returns the Monday and Sunday of the ISO week containing d.
func (d Date) WeekBounds() (Date, Date) {
	t, err := d.Midnight()
	if err != nil {
		return d, d
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -offset)
	return NewDate(monday), NewDate(monday.AddDate(0, 0, 6))
}

func (d Date) String() string { return string(d) }
