package storage

import (
	"time"

	"github.com/dayline-app/dayline/internal/model"
)

type FocusStatus string

const (
	FocusRunning     FocusStatus = "RUNNING"
	FocusCompleted   FocusStatus = "COMPLETED"
	FocusInterrupted FocusStatus = "INTERRUPTED"
)

// FocusSession is a user-initiated timed interval bound to a time block.
// It reaches a terminal status exactly once.
type FocusSession struct {
	ID          string
	TimeBlockID string
	StartTime   time.Time
	EndTime     *time.Time
	DurationMin *int
	Status      FocusStatus
}

// ActivitySession is a contiguous interval during which the foreground
// (process, window title) pair was constant as observed by the sampler.
type ActivitySession struct {
	ID          string
	ProcessName string
	WindowTitle string
	StartTime   time.Time
	EndTime     time.Time
	DurationSec int
	Category    model.AppCategory
}

// AppCategoryRule overlays the default classification for a process.
// Ignored processes are never persisted as activity sessions.
type AppCategoryRule struct {
	ProcessName string
	Category    model.AppCategory
	IsIgnored   bool
}

// TaskCompletion is the persisted outcome of one inference pass for one
// planned task on one date. At most one row exists per (date, time_block_id).
type TaskCompletion struct {
	ID                 string
	Date               model.Date
	TimeBlockID        string
	TaskName           string
	TaskType           string
	PlannedStart       model.ClockTime
	PlannedEnd         model.ClockTime
	PlannedDurationMin int
	ActualStart        *time.Time
	ActualEnd          *time.Time
	ActualDurationMin  *int
	CompletionPct      int
	Confidence         model.Confidence
	InferenceData      string
	UserConfirmed      bool
	UserCorrected      bool
	CorrectionType     *model.CorrectionType
	UserNote           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DaySummary aggregates one day's completion records for statistics and the
// motivation engine. A task counts as completed when its effective
// completion reaches 80%.
type DaySummary struct {
	Date           model.Date
	TotalTasks     int
	CompletedTasks int
	AvgCompletion  float64
	FocusMinutes   int
}

// LifetimeTotals spans every record ever written; it backs the cumulative
// achievement predicates.
type LifetimeTotals struct {
	CompletedTasks int
	FocusMinutes   int
}

// EffectiveCompletion prefers the user-confirmed value implicitly carried by
// CompletionPct after confirmation; before confirmation it is the engine
// estimate.
func (c TaskCompletion) EffectiveCompletion() int {
	return c.CompletionPct
}

const completedThresholdPct = 80

func (c TaskCompletion) IsDone() bool {
	return c.CompletionPct >= completedThresholdPct
}
