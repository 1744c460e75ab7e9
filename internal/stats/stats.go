// Package stats computes rolling completion statistics on top of the
// persistence store. The motivation engine and the stats CLI command are
// its consumers.
package stats

import (
	"context"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/storage"
)

// Store is the read slice of the persistence store the service queries.
type Store interface {
	SummarizeDay(ctx context.Context, date model.Date) (storage.DaySummary, error)
}

// WeekSummary aggregates the seven day summaries of a Monday-to-Sunday
// week. Rates are computed over tasks, not over days, so a heavy Friday
// counts more than an empty Sunday.
type WeekSummary struct {
	Start          model.Date
	End            model.Date
	Days           []storage.DaySummary
	TotalTasks     int
	CompletedTasks int
	CompletionRate float64
	FocusMinutes   int
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Day(ctx context.Context, date model.Date) (storage.DaySummary, error) {
	return s.store.SummarizeDay(ctx, date)
}

// Week summarizes the ISO week containing date.
func (s *Service) Week(ctx context.Context, date model.Date) (WeekSummary, error) {
	start, end := date.WeekBounds()
	week := WeekSummary{Start: start, End: end}
	for day := start; ; day = day.AddDays(1) {
		summary, err := s.store.SummarizeDay(ctx, day)
		if err != nil {
			return WeekSummary{}, err
		}
		week.Days = append(week.Days, summary)
		week.TotalTasks += summary.TotalTasks
		week.CompletedTasks += summary.CompletedTasks
		week.FocusMinutes += summary.FocusMinutes
		if day == end {
			break
		}
	}
	if week.TotalTasks > 0 {
		week.CompletionRate = float64(week.CompletedTasks) / float64(week.TotalTasks)
	}
	return week, nil
}

// Streak counts consecutive days ending at date on which at least one task
// was completed. A day with planned tasks but none completed breaks the
// streak; so does a day with no tasks at all.
func (s *Service) Streak(ctx context.Context, date model.Date) (int, error) {
	streak := 0
	for day := date; ; day = day.AddDays(-1) {
		summary, err := s.store.SummarizeDay(ctx, day)
		if err != nil {
			return 0, err
		}
		if summary.CompletedTasks == 0 {
			return streak, nil
		}
		streak++
	}
}
