package stats

import (
	"context"
	"testing"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/storage"
)

type fakeStore struct {
	days map[model.Date]storage.DaySummary
}

func (f *fakeStore) SummarizeDay(ctx context.Context, date model.Date) (storage.DaySummary, error) {
	if s, ok := f.days[date]; ok {
		return s, nil
	}
	return storage.DaySummary{Date: date}, nil
}

func day(date model.Date, total, completed, focus int) storage.DaySummary {
	return storage.DaySummary{Date: date, TotalTasks: total, CompletedTasks: completed, FocusMinutes: focus}
}

func TestWeekAggregatesMondayToSunday(t *testing.T) {
	// 2026-03-04 is a Wednesday; its week runs 03-02 (Mon) to 03-08 (Sun).
	store := &fakeStore{days: map[model.Date]storage.DaySummary{
		"2026-03-02": day("2026-03-02", 4, 3, 50),
		"2026-03-04": day("2026-03-04", 6, 3, 75),
		"2026-03-08": day("2026-03-08", 2, 2, 25),
		"2026-03-09": day("2026-03-09", 9, 9, 999), // next Monday, out of range
	}}
	svc := NewService(store)

	week, err := svc.Week(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("Week() error = %v", err)
	}
	if week.Start != "2026-03-02" || week.End != "2026-03-08" {
		t.Errorf("bounds = %s..%s, want 2026-03-02..2026-03-08", week.Start, week.End)
	}
	if len(week.Days) != 7 {
		t.Fatalf("got %d day summaries, want 7", len(week.Days))
	}
	if week.TotalTasks != 12 || week.CompletedTasks != 8 {
		t.Errorf("tasks = %d/%d, want 8/12", week.CompletedTasks, week.TotalTasks)
	}
	if week.FocusMinutes != 150 {
		t.Errorf("FocusMinutes = %d, want 150", week.FocusMinutes)
	}
	if got, want := week.CompletionRate, 8.0/12.0; got != want {
		t.Errorf("CompletionRate = %f, want %f", got, want)
	}
}

func TestWeekEmptyHasZeroRate(t *testing.T) {
	svc := NewService(&fakeStore{days: map[model.Date]storage.DaySummary{}})
	week, err := svc.Week(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("Week() error = %v", err)
	}
	if week.CompletionRate != 0 {
		t.Errorf("CompletionRate = %f, want 0", week.CompletionRate)
	}
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	store := &fakeStore{days: map[model.Date]storage.DaySummary{
		"2026-03-04": day("2026-03-04", 3, 2, 0),
		"2026-03-03": day("2026-03-03", 3, 3, 0),
		"2026-03-02": day("2026-03-02", 3, 1, 0),
		// 2026-03-01 has no completions and breaks the walk.
		"2026-02-28": day("2026-02-28", 3, 3, 0),
	}}
	svc := NewService(store)

	got, err := svc.Streak(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("Streak() error = %v", err)
	}
	if got != 3 {
		t.Errorf("Streak() = %d, want 3", got)
	}
}

func TestStreakZeroWhenTodayIncomplete(t *testing.T) {
	store := &fakeStore{days: map[model.Date]storage.DaySummary{
		"2026-03-03": day("2026-03-03", 3, 3, 0),
	}}
	svc := NewService(store)

	got, err := svc.Streak(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("Streak() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Streak() = %d, want 0", got)
	}
}
