package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTimeRange = errors.New("model: planned end must be after planned start")

// PlannedTask is one scheduled segment of the user's day. The pair
// (date, TimeBlockID) is unique per day; TimeBlockID is stable across days.
type PlannedTask struct {
	TimeBlockID  string
	Name         string
	TaskType     string
	PlannedStart ClockTime
	PlannedEnd   ClockTime
	DurationMin  int
}

func (t PlannedTask) Validate() error {
	if strings.TrimSpace(t.TimeBlockID) == "" {
		return errors.New("model: planned task time_block_id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: planned task name is required")
	}
	if !t.PlannedStart.IsValid() {
		return fmt.Errorf("%w: start %d", ErrInvalidClockTime, t.PlannedStart)
	}
	if !t.PlannedEnd.IsValid() {
		return fmt.Errorf("%w: end %d", ErrInvalidClockTime, t.PlannedEnd)
	}
	if t.PlannedEnd <= t.PlannedStart {
		return fmt.Errorf("%w: %s..%s", ErrInvalidTimeRange, t.PlannedStart, t.PlannedEnd)
	}
	return nil
}

// PlannedDuration returns the scheduled length in minutes, preferring the
// explicit duration when set.
func (t PlannedTask) PlannedDuration() int {
	if t.DurationMin > 0 {
		return t.DurationMin
	}
	return int(t.PlannedEnd - t.PlannedStart)
}
