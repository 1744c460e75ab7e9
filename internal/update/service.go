// Package update implements the interactive review screen: the bubbletea
// model, its key handling, and the confirmation service behind it.
package update

import (
	"context"

	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/aiclient"
	"github.com/dayline-app/dayline/internal/behavior"
	"github.com/dayline-app/dayline/internal/inference"
	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/stats"
	"github.com/dayline-app/dayline/internal/storage"
)

// ReviewStore is the slice of the persistence store used by the review
// flow.
type ReviewStore interface {
	ListUnconfirmedTaskCompletions(ctx context.Context, date model.Date) ([]storage.TaskCompletion, error)
	ConfirmTaskCompletion(ctx context.Context, id string, newCompletion int, note string) (storage.TaskCompletion, bool, error)
}

// Learner feeds confirmed corrections back into the behavior model.
type Learner interface {
	LearnFromCorrection(taskName string, appsUsed []behavior.AppUsed, correction model.CorrectionType) error
}

// Poker nudges the motivation engine after confirmations.
type Poker interface {
	Poke()
}

// Reporter renders the week's numbers into markdown via the AI proxy.
type Reporter interface {
	WeeklyReport(ctx context.Context, req aiclient.WeeklyReportRequest) (*aiclient.WeeklyReportResponse, error)
}

// Service runs the confirmation path: persist the user's answer, learn
// from the derived correction, and poke the motivation engine.
type Service struct {
	store      ReviewStore
	learner    Learner
	motivation Poker
	stats      *stats.Service
	reporter   Reporter
	log        *zap.SugaredLogger
}

func NewService(store ReviewStore, learner Learner, motivation Poker, statsSvc *stats.Service, reporter Reporter, log *zap.SugaredLogger) *Service {
	return &Service{
		store:      store,
		learner:    learner,
		motivation: motivation,
		stats:      statsSvc,
		reporter:   reporter,
		log:        log,
	}
}

func (s *Service) Unconfirmed(ctx context.Context, date model.Date) ([]storage.TaskCompletion, error) {
	return s.store.ListUnconfirmedTaskCompletions(ctx, date)
}

// Confirm persists one confirmation and runs its side effects. Learning
// failures are logged, not surfaced; the confirmation itself stands. A
// record already confirmed comes back unchanged with no side effects.
func (s *Service) Confirm(ctx context.Context, id string, completion int, note string) (storage.TaskCompletion, error) {
	rec, applied, err := s.store.ConfirmTaskCompletion(ctx, id, completion, note)
	if err != nil {
		return storage.TaskCompletion{}, err
	}
	if !applied {
		return rec, nil
	}
	if s.learner != nil && rec.CorrectionType != nil {
		apps := inference.ParseAppsUsed(rec.InferenceData)
		if err := s.learner.LearnFromCorrection(rec.TaskName, apps, *rec.CorrectionType); err != nil {
			s.log.Warnw("learning from correction failed", "task", rec.TaskName, "error", err)
		}
	}
	if s.motivation != nil {
		s.motivation.Poke()
	}
	return rec, nil
}

// WeeklyReportMarkdown fetches the AI-written report for the week
// containing date.
func (s *Service) WeeklyReportMarkdown(ctx context.Context, date model.Date) (string, error) {
	week, err := s.stats.Week(ctx, date)
	if err != nil {
		return "", err
	}
	resp, err := s.reporter.WeeklyReport(ctx, aiclient.WeeklyReportRequest{
		WeekStart:      week.Start,
		WeekEnd:        week.End,
		TotalTasks:     week.TotalTasks,
		CompletedTasks: week.CompletedTasks,
		CompletionRate: week.CompletionRate,
		FocusMinutes:   week.FocusMinutes,
	})
	if err != nil {
		return "", err
	}
	return resp.Markdown, nil
}
