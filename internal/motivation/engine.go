package motivation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/stats"
	"github.com/dayline-app/dayline/internal/storage"
)

const (
	defaultUpdateEvery = 5 * time.Minute
	notifyDebounce     = 500 * time.Millisecond
)

// Stats is the slice of the statistics service the engine reads.
type Stats interface {
	Day(ctx context.Context, date model.Date) (storage.DaySummary, error)
	Week(ctx context.Context, date model.Date) (stats.WeekSummary, error)
	Streak(ctx context.Context, date model.Date) (int, error)
}

// Totals supplies lifetime counters for the cumulative achievements.
type Totals interface {
	SummarizeLifetime(ctx context.Context) (storage.LifetimeTotals, error)
}

// Callbacks are fired from the engine's worker goroutine. Each completion
// and unlock event is delivered at most once; Notify receives the batched
// messages of one debounce window.
type Callbacks struct {
	OnGoalCompleted       func(Goal)
	OnAchievementUnlocked func(Achievement)
	Notify                func(messages []string)
}

// Engine recomputes goal progress and achievement unlocks on a coarse
// ticker and on explicit pokes after confirmation events.
type Engine struct {
	goals        *GoalStore
	achievements *AchievementStore
	stats        Stats
	totals       Totals
	log          *zap.SugaredLogger
	callbacks    Callbacks
	updateEvery  time.Duration
	now          func() time.Time

	notifyMu    sync.Mutex
	pending     []string
	notifyTimer *time.Timer

	pokeCh chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewEngine(goals *GoalStore, achievements *AchievementStore, statsSvc Stats, totals Totals, log *zap.SugaredLogger, callbacks Callbacks) *Engine {
	return &Engine{
		goals:        goals,
		achievements: achievements,
		stats:        statsSvc,
		totals:       totals,
		log:          log,
		callbacks:    callbacks,
		updateEvery:  defaultUpdateEvery,
		now:          time.Now,
		pokeCh:       make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

func (e *Engine) Start() {
	go e.loop()
}

// Stop halts the update loop and flushes any pending notification batch.
func (e *Engine) Stop() {
	close(e.stopCh)
	<-e.doneCh
	e.flushNotifications()
}

// Poke schedules an update pass soon, coalescing with any already pending.
func (e *Engine) Poke() {
	select {
	case e.pokeCh <- struct{}{}:
	default:
	}
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.updateEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-e.pokeCh:
		case <-e.stopCh:
			return
		}
		if err := e.Update(context.Background()); err != nil {
			e.log.Warnw("motivation update failed", "error", err)
		}
	}
}

// Update runs one pass: refresh each active goal and every achievement
// predicate against today's rolling statistics.
func (e *Engine) Update(ctx context.Context) error {
	today := model.NewDate(e.now())

	day, err := e.stats.Day(ctx, today)
	if err != nil {
		return err
	}
	week, err := e.stats.Week(ctx, today)
	if err != nil {
		return err
	}
	streak, err := e.stats.Streak(ctx, today)
	if err != nil {
		return err
	}
	lifetime, err := e.totals.SummarizeLifetime(ctx)
	if err != nil {
		return err
	}

	e.updateGoals(day, week)
	return e.updateAchievements(day, week, streak, lifetime)
}

func (e *Engine) updateGoals(day storage.DaySummary, week stats.WeekSummary) {
	for _, goal := range e.goals.Active() {
		var value float64
		switch goal.Type {
		case GoalDailyTasks:
			value = float64(day.CompletedTasks)
		case GoalWeeklyFocusHours:
			value = float64(week.FocusMinutes) / 60
		case GoalWeeklyCompletionRate:
			value = meanDailyRate(week)
		default:
			continue
		}
		updated, completed, err := e.goals.UpdateProgress(goal.ID, value)
		if err != nil {
			e.log.Warnw("goal update failed", "goal", goal.ID, "error", err)
			continue
		}
		if completed {
			if e.callbacks.OnGoalCompleted != nil {
				e.callbacks.OnGoalCompleted(updated)
			}
			e.queueNotification(fmt.Sprintf("Goal reached: %s %.0f", updated.Type, updated.TargetValue))
		}
	}
}

func (e *Engine) updateAchievements(day storage.DaySummary, week stats.WeekSummary, streak int, lifetime storage.LifetimeTotals) error {
	dayRate := 0.0
	if day.TotalTasks > 0 {
		dayRate = float64(day.CompletedTasks) / float64(day.TotalTasks)
	}
	checks := []struct {
		requirement string
		value       float64
	}{
		{ReqConsecutiveDays, float64(streak)},
		{ReqTotalTasks, float64(lifetime.CompletedTasks)},
		{ReqTotalFocusHours, float64(lifetime.FocusMinutes) / 60},
		{ReqDailyCompletionRate, dayRate},
		{ReqWeeklyCompletionRate, meanDailyRate(week)},
	}
	for _, c := range checks {
		newly, err := e.achievements.CheckAndUnlock(c.requirement, c.value)
		if err != nil {
			return err
		}
		for _, a := range newly {
			if e.callbacks.OnAchievementUnlocked != nil {
				e.callbacks.OnAchievementUnlocked(a)
			}
			e.queueNotification(fmt.Sprintf("Achievement unlocked: %s (+%d pts)", a.Name, a.Points))
		}
	}
	return nil
}

// meanDailyRate averages the per-day completion rates over days that have
// at least one planned task.
func meanDailyRate(week stats.WeekSummary) float64 {
	sum := 0.0
	days := 0
	for _, d := range week.Days {
		if d.TotalTasks == 0 {
			continue
		}
		sum += float64(d.CompletedTasks) / float64(d.TotalTasks)
		days++
	}
	if days == 0 {
		return 0
	}
	return sum / float64(days)
}

// queueNotification batches messages arriving within the debounce window
// into one Notify call.
func (e *Engine) queueNotification(message string) {
	if e.callbacks.Notify == nil {
		return
	}
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.pending = append(e.pending, message)
	if e.notifyTimer == nil {
		e.notifyTimer = time.AfterFunc(notifyDebounce, e.flushNotifications)
	}
}

func (e *Engine) flushNotifications() {
	e.notifyMu.Lock()
	batch := e.pending
	e.pending = nil
	if e.notifyTimer != nil {
		e.notifyTimer.Stop()
		e.notifyTimer = nil
	}
	e.notifyMu.Unlock()

	if len(batch) > 0 && e.callbacks.Notify != nil {
		e.callbacks.Notify(batch)
	}
}
