// Package scheduler runs the daily completion pass: it walks the day's
// planned tasks, asks the inference engine for an estimate per task,
// persists the results and auto-confirms the ones the user does not need
// to review.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/inference"
	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/schedule"
	"github.com/dayline-app/dayline/internal/storage"
)

const (
	tickInterval = time.Minute

	autoConfirmNote    = "auto-confirmed (high confidence)"
	autoConfirmAllNote = "fully auto-confirmed"
)

// Store is the slice of the persistence store the scheduler writes.
type Store interface {
	CreateTaskCompletion(ctx context.Context, in storage.TaskCompletion) error
	GetTaskCompletionByBlock(ctx context.Context, date model.Date, timeBlockID string) (storage.TaskCompletion, error)
	ListUnconfirmedTaskCompletions(ctx context.Context, date model.Date) ([]storage.TaskCompletion, error)
	MarkAutoConfirmed(ctx context.Context, id, note string) error
	CleanupOldTaskCompletions(ctx context.Context, days int) (int64, error)
}

// Estimator produces a completion estimate for one planned task.
type Estimator interface {
	Estimate(ctx context.Context, task model.PlannedTask, date model.Date) (inference.Result, error)
}

// ReviewRequest asks the user to confirm or correct a batch of inferred
// completions.
type ReviewRequest struct {
	Date        model.Date
	Unconfirmed []storage.TaskCompletion
}

type Config struct {
	Enabled              bool
	TriggerTime          model.ClockTime
	TriggerOnStartup     bool
	AutoConfirmThreshold int
	AutoConfirmAll       bool
	RetentionDays        int
}

func (c *Config) applyDefaults() {
	if c.TriggerTime <= 0 {
		c.TriggerTime = 21 * 60
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
}

// Scheduler drives the daily completion pass from a minute-cadence timer.
// Each pass runs on a short-lived worker goroutine.
type Scheduler struct {
	store     Store
	tasks     schedule.Provider
	estimator Estimator
	log       *zap.SugaredLogger
	cfg       Config
	onReview  func(ReviewRequest)
	now       func() time.Time

	mu          sync.Mutex
	lastRunDate model.Date

	workers sync.WaitGroup
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
}

func New(store Store, tasks schedule.Provider, estimator Estimator, log *zap.SugaredLogger, cfg Config, onReview func(ReviewRequest)) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{
		store:     store,
		tasks:     tasks,
		estimator: estimator,
		log:       log,
		cfg:       cfg,
		onReview:  onReview,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the minute loop. With the component disabled it does
// nothing. The optional startup pass covers yesterday, catching days where
// the machine was off at trigger time.
func (s *Scheduler) Start() {
	if !s.cfg.Enabled || s.started {
		return
	}
	s.started = true

	if s.cfg.TriggerOnStartup {
		yesterday := model.NewDate(s.now()).AddDays(-1)
		s.runAsync(yesterday)
	}
	go s.loop()
}

// Stop halts the minute loop within one cycle and waits for in-flight
// passes to finish naturally.
func (s *Scheduler) Stop() {
	if !s.started || s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
	<-s.doneCh
	s.workers.Wait()
}

// ManualTrigger runs the daily pass for a date on a worker goroutine,
// bypassing the once-per-day guard.
func (s *Scheduler) ManualTrigger(date model.Date) {
	s.runAsync(date)
}

func (s *Scheduler) runAsync(date model.Date) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		if err := s.RunDailyPass(context.Background(), date); err != nil {
			s.log.Errorw("daily pass failed", "date", date, "error", err)
		}
	}()
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) tick() {
	now := s.now()
	nowMinute := model.ClockTime(now.Hour()*60 + now.Minute())
	if nowMinute != s.cfg.TriggerTime {
		return
	}
	today := model.NewDate(now)

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	if !alreadyRan {
		s.lastRunDate = today
	}
	s.mu.Unlock()
	if alreadyRan {
		return
	}
	s.runAsync(today)
	s.purgeAsync()
}

// purgeAsync drops completion records older than the retention horizon.
// It piggybacks on the daily trigger so the purge runs once per day.
func (s *Scheduler) purgeAsync() {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		removed, err := s.store.CleanupOldTaskCompletions(context.Background(), s.cfg.RetentionDays)
		if err != nil {
			s.log.Warnw("completion record cleanup failed", "error", err)
			return
		}
		if removed > 0 {
			s.log.Infow("completion record cleanup", "removed", removed, "retention_days", s.cfg.RetentionDays)
		}
	}()
}

// RunDailyPass executes one pass for a date: infer every planned task,
// persist new records, auto-confirm per config, and surface the rest for
// review. Per-task failures are logged and skipped; existing records are
// never overwritten.
func (s *Scheduler) RunDailyPass(ctx context.Context, date model.Date) error {
	tasks, err := s.tasks.TasksForDate(date)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		s.log.Debugw("no planned tasks", "date", date)
		return nil
	}

	for _, task := range tasks {
		if err := s.inferTask(ctx, task, date); err != nil {
			s.log.Warnw("task inference skipped", "date", date, "block", task.TimeBlockID, "error", err)
		}
	}

	if s.cfg.AutoConfirmAll {
		if err := s.confirmAll(ctx, date); err != nil {
			return err
		}
		return nil
	}
	if s.cfg.AutoConfirmThreshold > 0 {
		if err := s.confirmHighConfidence(ctx, date); err != nil {
			return err
		}
	}

	remaining, err := s.store.ListUnconfirmedTaskCompletions(ctx, date)
	if err != nil {
		return err
	}
	if len(remaining) > 0 && s.onReview != nil {
		s.onReview(ReviewRequest{Date: date, Unconfirmed: remaining})
	}
	return nil
}

func (s *Scheduler) inferTask(ctx context.Context, task model.PlannedTask, date model.Date) error {
	if _, err := s.store.GetTaskCompletionByBlock(ctx, date, task.TimeBlockID); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	result, err := s.estimator.Estimate(ctx, task, date)
	if err != nil {
		return err
	}

	record := storage.TaskCompletion{
		Date:               date,
		TimeBlockID:        task.TimeBlockID,
		TaskName:           task.Name,
		TaskType:           task.TaskType,
		PlannedStart:       task.PlannedStart,
		PlannedEnd:         task.PlannedEnd,
		PlannedDurationMin: task.PlannedDuration(),
		ActualStart:        &result.ActualStart,
		ActualEnd:          &result.ActualEnd,
		ActualDurationMin:  &result.ActualDurationMin,
		CompletionPct:      result.Completion,
		Confidence:         result.Confidence,
		InferenceData:      result.DetailJSON(),
	}
	err = s.store.CreateTaskCompletion(ctx, record)
	if errors.Is(err, storage.ErrDuplicateBlock) {
		// A concurrent pass won the race; its record stands.
		return nil
	}
	return err
}

func (s *Scheduler) confirmAll(ctx context.Context, date model.Date) error {
	unconfirmed, err := s.store.ListUnconfirmedTaskCompletions(ctx, date)
	if err != nil {
		return err
	}
	for _, rec := range unconfirmed {
		if err := s.store.MarkAutoConfirmed(ctx, rec.ID, autoConfirmAllNote); err != nil {
			s.log.Warnw("auto-confirm failed", "id", rec.ID, "error", err)
		}
	}
	return nil
}

// confirmHighConfidence auto-confirms records whose confidence is high and
// whose completion meets the threshold. Low and unknown confidence never
// qualify.
func (s *Scheduler) confirmHighConfidence(ctx context.Context, date model.Date) error {
	unconfirmed, err := s.store.ListUnconfirmedTaskCompletions(ctx, date)
	if err != nil {
		return err
	}
	for _, rec := range unconfirmed {
		if rec.Confidence != model.ConfidenceHigh || rec.CompletionPct < s.cfg.AutoConfirmThreshold {
			continue
		}
		if err := s.store.MarkAutoConfirmed(ctx, rec.ID, autoConfirmNote); err != nil {
			s.log.Warnw("auto-confirm failed", "id", rec.ID, "error", err)
		}
	}
	return nil
}
