package motivation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/stats"
	"github.com/dayline-app/dayline/internal/storage"
)

type fakeStats struct {
	day    storage.DaySummary
	week   stats.WeekSummary
	streak int
}

func (f *fakeStats) Day(ctx context.Context, date model.Date) (storage.DaySummary, error) {
	return f.day, nil
}

func (f *fakeStats) Week(ctx context.Context, date model.Date) (stats.WeekSummary, error) {
	return f.week, nil
}

func (f *fakeStats) Streak(ctx context.Context, date model.Date) (int, error) {
	return f.streak, nil
}

type fakeTotals struct {
	totals storage.LifetimeTotals
}

func (f *fakeTotals) SummarizeLifetime(ctx context.Context) (storage.LifetimeTotals, error) {
	return f.totals, nil
}

func testStores(t *testing.T) (*GoalStore, *AchievementStore) {
	t.Helper()
	dir := t.TempDir()
	goals, err := OpenGoals(filepath.Join(dir, "goals.json"))
	if err != nil {
		t.Fatalf("open goals: %v", err)
	}
	achievements, err := OpenAchievements(filepath.Join(dir, "achievements.json"))
	if err != nil {
		t.Fatalf("open achievements: %v", err)
	}
	return goals, achievements
}

func TestGoalStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goals.json")

	store, err := OpenGoals(path)
	if err != nil {
		t.Fatalf("open goals: %v", err)
	}
	goal, err := store.Add(GoalDailyTasks, 3)
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}

	reopened, err := OpenGoals(path)
	if err != nil {
		t.Fatalf("reopen goals: %v", err)
	}
	got := reopened.List()
	if len(got) != 1 || got[0].ID != goal.ID || got[0].Status != GoalActive {
		t.Fatalf("unexpected goals after reopen: %+v", got)
	}
}

func TestGoalStoreRejectsInvalidInput(t *testing.T) {
	store, _ := testStores(t)
	if _, err := store.Add(GoalType("monthly_tasks"), 3); err == nil {
		t.Error("unknown goal type accepted")
	}
	if _, err := store.Add(GoalDailyTasks, 0); err == nil {
		t.Error("zero target accepted")
	}
}

func TestGoalCompletesExactlyOnce(t *testing.T) {
	store, _ := testStores(t)
	goal, err := store.Add(GoalDailyTasks, 3)
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}

	_, completed, err := store.UpdateProgress(goal.ID, 2)
	if err != nil || completed {
		t.Fatalf("below target: completed=%v err=%v", completed, err)
	}
	updated, completed, err := store.UpdateProgress(goal.ID, 3)
	if err != nil {
		t.Fatalf("crossing target: %v", err)
	}
	if !completed || updated.Status != GoalCompleted || updated.CompletedAt == nil {
		t.Fatalf("goal not completed on crossing pass: %+v", updated)
	}
	_, completed, err = store.UpdateProgress(goal.ID, 4)
	if err != nil || completed {
		t.Fatalf("completed goal fired again: completed=%v err=%v", completed, err)
	}
}

func TestCheckAndUnlockReturnsEachEntryOnce(t *testing.T) {
	_, store := testStores(t)

	newly, err := store.CheckAndUnlock(ReqConsecutiveDays, 7)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	ids := map[string]bool{}
	for _, a := range newly {
		ids[a.ID] = true
	}
	if !ids["streak-3"] || !ids["streak-7"] || ids["streak-30"] {
		t.Fatalf("unexpected unlocks: %v", ids)
	}

	again, err := store.CheckAndUnlock(ReqConsecutiveDays, 8)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("already-unlocked entries returned again: %v", again)
	}
	if got := store.Progress("streak-30"); got != 8 {
		t.Fatalf("progress not recorded: %f", got)
	}
}

func TestThreeDayStreakUnlocksAchievement(t *testing.T) {
	goals, achievements := testStores(t)
	statsSvc := &fakeStats{
		day:    storage.DaySummary{TotalTasks: 2, CompletedTasks: 1},
		week:   stats.WeekSummary{Days: []storage.DaySummary{{TotalTasks: 2, CompletedTasks: 1}}},
		streak: 3,
	}
	totals := &fakeTotals{totals: storage.LifetimeTotals{CompletedTasks: 3}}

	var unlocked []Achievement
	engine := NewEngine(goals, achievements, statsSvc, totals, zap.NewNop().Sugar(), Callbacks{
		OnAchievementUnlocked: func(a Achievement) { unlocked = append(unlocked, a) },
	})

	if err := engine.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !achievements.IsUnlocked("streak-3") {
		t.Error("streak-3 not unlocked after 3-day streak")
	}
	found := false
	for _, a := range unlocked {
		if a.ID == "streak-3" {
			found = true
		}
	}
	if !found {
		t.Error("no unlock callback for streak-3")
	}

	before := len(unlocked)
	if err := engine.Update(context.Background()); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(unlocked) != before {
		t.Errorf("unlock callbacks fired again on unchanged stats: %d -> %d", before, len(unlocked))
	}
}

func TestGoalProgressDrivenByStats(t *testing.T) {
	goals, achievements := testStores(t)
	goal, err := goals.Add(GoalWeeklyFocusHours, 2)
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	statsSvc := &fakeStats{
		week: stats.WeekSummary{FocusMinutes: 150},
	}

	var completedGoals []Goal
	engine := NewEngine(goals, achievements, statsSvc, &fakeTotals{}, zap.NewNop().Sugar(), Callbacks{
		OnGoalCompleted: func(g Goal) { completedGoals = append(completedGoals, g) },
	})

	if err := engine.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(completedGoals) != 1 || completedGoals[0].ID != goal.ID {
		t.Fatalf("expected one completed goal, got %+v", completedGoals)
	}
	if got := completedGoals[0].CurrentValue; got != 2.5 {
		t.Errorf("CurrentValue = %f, want 2.5", got)
	}
}

func TestNotificationsBatchWithinDebounceWindow(t *testing.T) {
	goals, achievements := testStores(t)
	statsSvc := &fakeStats{streak: 7}

	batches := make(chan []string, 1)
	engine := NewEngine(goals, achievements, statsSvc, &fakeTotals{}, zap.NewNop().Sugar(), Callbacks{
		Notify: func(messages []string) { batches <- messages },
	})

	// A 7-day streak unlocks streak-3 and streak-7 in one pass; both
	// messages must arrive in a single batch.
	if err := engine.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}

	select {
	case batch := <-batches:
		if len(batch) != 2 {
			t.Fatalf("batch size = %d, want 2: %v", len(batch), batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification batch delivered")
	}
	select {
	case extra := <-batches:
		t.Fatalf("unexpected second batch: %v", extra)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestPokeWakesLoop(t *testing.T) {
	goals, achievements := testStores(t)
	statsSvc := &fakeStats{streak: 3}

	unlocked := make(chan Achievement, 4)
	engine := NewEngine(goals, achievements, statsSvc, &fakeTotals{}, zap.NewNop().Sugar(), Callbacks{
		OnAchievementUnlocked: func(a Achievement) { unlocked <- a },
	})
	engine.updateEvery = time.Hour // ticker stays quiet, only the poke fires
	engine.Start()
	defer engine.Stop()

	engine.Poke()
	select {
	case a := <-unlocked:
		if a.ID != "streak-3" {
			t.Fatalf("unexpected unlock %q", a.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poke did not trigger an update pass")
	}
}
