package inference

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dayline-app/dayline/internal/behavior"
	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/storage"
)

const (
	primaryWeightFloor = 0.7
	unknownAppMinSec   = 10 * 60
	unknownAppWeight   = 0.5
	minUsageSec        = 60
)

// SessionSource is the read-only slice of the persistence store the
// collector queries.
type SessionSource interface {
	ListCompletedFocusSessions(ctx context.Context, timeBlockID string, date model.Date) ([]storage.FocusSession, error)
	ListActivityBetween(ctx context.Context, from, to time.Time) ([]storage.ActivitySession, error)
}

// PatternSource exposes the learned task patterns.
type PatternSource interface {
	GetTaskPattern(taskName string) behavior.TaskPattern
}

// Collector assembles the evidence set for one planned task on one date.
// It holds no state and is safe to call from any goroutine.
type Collector struct {
	sessions SessionSource
	patterns PatternSource
}

func NewCollector(sessions SessionSource, patterns PatternSource) *Collector {
	return &Collector{sessions: sessions, patterns: patterns}
}

// ActualBounds are externally known actual start/end times for a task,
// typically carried by the host's task data. They feed the time-match
// signal; inference itself never invents them.
type ActualBounds struct {
	Start time.Time
	End   time.Time
}

func (c *Collector) Collect(ctx context.Context, task model.PlannedTask, date model.Date, actual *ActualBounds) (model.Signals, error) {
	var signals model.Signals

	focus, err := c.collectFocus(ctx, task.TimeBlockID, date)
	if err != nil {
		return model.Signals{}, fmt.Errorf("focus signal: %w", err)
	}
	signals.Focus = focus

	activity, err := c.collectActivity(ctx, task, date)
	if err != nil {
		return model.Signals{}, fmt.Errorf("activity signal: %w", err)
	}
	signals.Activity = activity
	signals.TimeMatch = timeMatch(task, actual)
	return signals, nil
}

func (c *Collector) collectFocus(ctx context.Context, timeBlockID string, date model.Date) (*model.FocusSignal, error) {
	sessions, err := c.sessions.ListCompletedFocusSessions(ctx, timeBlockID, date)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	signal := &model.FocusSignal{FocusSessions: len(sessions)}
	for _, s := range sessions {
		if s.DurationMin != nil {
			signal.FocusDurationMin += *s.DurationMin
		}
	}
	return signal, nil
}

// collectActivity returns nil when no activity session started inside the
// planned window. A session starting exactly at planned_end is excluded.
func (c *Collector) collectActivity(ctx context.Context, task model.PlannedTask, date model.Date) (*model.ActivitySignal, error) {
	day, err := date.Midnight()
	if err != nil {
		return nil, err
	}
	from := task.PlannedStart.At(day).UTC()
	to := task.PlannedEnd.At(day).UTC()

	sessions, err := c.sessions.ListActivityBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	totalSec := 0
	secondsByProcess := make(map[string]int)
	for _, s := range sessions {
		secondsByProcess[s.ProcessName] += s.DurationSec
		totalSec += s.DurationSec
	}

	pattern := c.patterns.GetTaskPattern(task.Name)
	signal := &model.ActivitySignal{TotalActiveSec: totalSec}
	for _, process := range sortedKeys(secondsByProcess) {
		seconds := secondsByProcess[process]
		if seconds < minUsageSec {
			continue
		}
		use := model.AppUse{App: process, DurationMin: seconds / 60}
		if aff, ok := pattern.TypicalApps[process]; ok {
			use.Weight = aff.Weight
			switch {
			case aff.Weight >= primaryWeightFloor:
				signal.Primary = append(signal.Primary, use)
			case aff.Weight > 0:
				signal.Secondary = append(signal.Secondary, use)
			}
			continue
		}
		// Unknown apps need substantial usage before they count as evidence.
		if seconds >= unknownAppMinSec {
			use.Weight = unknownAppWeight
			signal.Secondary = append(signal.Secondary, use)
		}
	}
	return signal, nil
}

// timeMatch scores how closely the actual duration matched the plan. With
// either bound unknown there is no signal.
func timeMatch(task model.PlannedTask, actual *ActualBounds) *model.TimeMatchSignal {
	if actual == nil || actual.Start.IsZero() || actual.End.IsZero() {
		return nil
	}
	planned := task.PlannedDuration()
	if planned <= 0 {
		return nil
	}
	actualMin := int(actual.End.Sub(actual.Start).Minutes())
	if actualMin < 0 {
		actualMin = 0
	}
	score := float64(actualMin) / float64(planned)
	if score > 1.0 {
		score = 1.0
	}
	return &model.TimeMatchSignal{Score: score, PlannedMin: planned, ActualMin: actualMin}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
