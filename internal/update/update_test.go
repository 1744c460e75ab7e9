package update

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/aiclient"
	"github.com/dayline-app/dayline/internal/behavior"
	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/stats"
	"github.com/dayline-app/dayline/internal/storage"
)

type fakePoker struct {
	pokes int
}

func (p *fakePoker) Poke() { p.pokes++ }

type fakeReporter struct {
	markdown string
	requests []aiclient.WeeklyReportRequest
}

func (r *fakeReporter) WeeklyReport(ctx context.Context, req aiclient.WeeklyReportRequest) (*aiclient.WeeklyReportResponse, error) {
	r.requests = append(r.requests, req)
	return &aiclient.WeeklyReportResponse{Markdown: r.markdown}, nil
}

func testService(t *testing.T) (*Service, *storage.SQLiteRepository, *behavior.Store, *fakePoker) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	behaviorStore, err := behavior.Open(filepath.Join(dir, "model.json"))
	if err != nil {
		t.Fatalf("open behavior store: %v", err)
	}
	poker := &fakePoker{}
	svc := NewService(repo, behaviorStore, poker, stats.NewService(repo), &fakeReporter{markdown: "# Week"}, zap.NewNop().Sugar())
	return svc, repo, behaviorStore, poker
}

func seedRecord(t *testing.T, repo *storage.SQLiteRepository, date model.Date, block string, pct int) storage.TaskCompletion {
	t.Helper()
	ctx := context.Background()
	rec := storage.TaskCompletion{
		Date:               date,
		TimeBlockID:        block,
		TaskName:           "Deep work",
		PlannedStart:       540,
		PlannedEnd:         660,
		PlannedDurationMin: 120,
		CompletionPct:      pct,
		Confidence:         model.ConfidenceMedium,
		InferenceData:      `{"signal_count":1,"total_weight":0.85,"scores":{"activity":80},"primary_apps":["code.exe(45min)"],"secondary_apps":[]}`,
	}
	if err := repo.CreateTaskCompletion(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	got, err := repo.GetTaskCompletionByBlock(ctx, date, block)
	if err != nil {
		t.Fatalf("read back record: %v", err)
	}
	return got
}

func TestConfirmRunsLearningAndPoke(t *testing.T) {
	svc, repo, behaviorStore, poker := testService(t)
	date := model.Date("2026-03-02")
	rec := seedRecord(t, repo, date, "T1", 60)

	// 90 vs 60 is more than 10 points over the estimate, an
	// underestimated correction that should raise app weights.
	confirmed, err := svc.Confirm(context.Background(), rec.ID, 90, "finished late")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !confirmed.UserConfirmed || confirmed.CompletionPct != 90 {
		t.Fatalf("unexpected confirmed record: %+v", confirmed)
	}
	if confirmed.CorrectionType == nil || *confirmed.CorrectionType != model.CorrectionUnderestimated {
		t.Fatalf("correction = %v, want underestimated", confirmed.CorrectionType)
	}
	if poker.pokes != 1 {
		t.Errorf("motivation pokes = %d, want 1", poker.pokes)
	}
	pattern := behaviorStore.GetTaskPattern("Deep work")
	aff, ok := pattern.TypicalApps["code.exe"]
	if !ok {
		t.Fatal("code.exe not learned into pattern")
	}
	if aff.Weight != 0.55 {
		t.Errorf("weight = %f, want 0.55", aff.Weight)
	}
}

func TestReconfirmRunsNoSideEffects(t *testing.T) {
	svc, repo, behaviorStore, poker := testService(t)
	date := model.Date("2026-03-02")
	rec := seedRecord(t, repo, date, "T1", 60)
	ctx := context.Background()

	if _, err := svc.Confirm(ctx, rec.ID, 90, "finished late"); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	again, err := svc.Confirm(ctx, rec.ID, 90, "finished late")
	if err != nil {
		t.Fatalf("re-Confirm() error = %v", err)
	}
	if !again.UserConfirmed || again.CompletionPct != 90 {
		t.Fatalf("unexpected record on re-confirm: %+v", again)
	}

	// The correction was already learned; repeating the confirmation must
	// not count it twice or poke motivation again.
	if q := behaviorStore.Quality(); q.TotalCorrections != 1 {
		t.Errorf("total corrections = %d, want 1", q.TotalCorrections)
	}
	if poker.pokes != 1 {
		t.Errorf("motivation pokes = %d, want 1", poker.pokes)
	}
	pattern := behaviorStore.GetTaskPattern("Deep work")
	if aff := pattern.TypicalApps["code.exe"]; aff == nil || aff.Weight != 0.55 {
		t.Errorf("app weight changed on re-confirm: %+v", aff)
	}
}

func TestWeeklyReportMarkdownForwardsWeekStats(t *testing.T) {
	svc, repo, _, _ := testService(t)
	reporter := &fakeReporter{markdown: "# Week in review"}
	svc.reporter = reporter
	seedRecord(t, repo, "2026-03-02", "T1", 90)

	md, err := svc.WeeklyReportMarkdown(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("WeeklyReportMarkdown() error = %v", err)
	}
	if md != "# Week in review" {
		t.Errorf("markdown = %q", md)
	}
	if len(reporter.requests) != 1 {
		t.Fatalf("got %d report requests, want 1", len(reporter.requests))
	}
	req := reporter.requests[0]
	if req.WeekStart != "2026-03-02" || req.WeekEnd != "2026-03-08" {
		t.Errorf("week bounds = %s..%s", req.WeekStart, req.WeekEnd)
	}
	if req.TotalTasks != 1 || req.CompletedTasks != 1 {
		t.Errorf("tasks = %d/%d, want 1/1", req.CompletedTasks, req.TotalTasks)
	}
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{}
}

func TestCursorAndAdjustKeys(t *testing.T) {
	svc, repo, _, _ := testService(t)
	date := model.Date("2026-03-02")
	first := seedRecord(t, repo, date, "T1", 60)
	second := seedRecord(t, repo, date, "T2", 40)

	m := NewModel(svc, date, []storage.TaskCompletion{first, second})

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d after j, want 1", m.Cursor)
	}
	next, _ = m.Update(keyMsg("j"))
	m = next.(Model)
	if m.Cursor != 1 {
		t.Fatalf("cursor moved past the last entry: %d", m.Cursor)
	}

	next, _ = m.Update(keyMsg("+"))
	m = next.(Model)
	if got := m.PendingCompletion(second); got != 45 {
		t.Errorf("pending after + = %d, want 45", got)
	}
	for i := 0; i < 30; i++ {
		next, _ = m.Update(keyMsg("-"))
		m = next.(Model)
	}
	if got := m.PendingCompletion(second); got != 0 {
		t.Errorf("pending clamped = %d, want 0", got)
	}
}

func TestConfirmKeyProducesCommandAndRemovesEntry(t *testing.T) {
	svc, repo, _, _ := testService(t)
	date := model.Date("2026-03-02")
	first := seedRecord(t, repo, date, "T1", 60)
	second := seedRecord(t, repo, date, "T2", 40)

	m := NewModel(svc, date, []storage.TaskCompletion{first, second})

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	msg := cmd()
	confirmed, ok := msg.(confirmedMsg)
	if !ok {
		t.Fatalf("message = %T, want confirmedMsg", msg)
	}
	if confirmed.Err != nil {
		t.Fatalf("confirm error = %v", confirmed.Err)
	}

	next, _ = m.Update(confirmed)
	m = next.(Model)
	if len(m.Entries) != 1 || m.Entries[0].ID != second.ID {
		t.Fatalf("entries after confirm = %+v", m.Entries)
	}

	stored, err := repo.GetTaskCompletionByBlock(context.Background(), date, "T1")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !stored.UserConfirmed {
		t.Error("record not confirmed in storage")
	}
}

func TestSlashCommandSkip(t *testing.T) {
	svc, repo, _, _ := testService(t)
	date := model.Date("2026-03-02")
	first := seedRecord(t, repo, date, "T1", 60)
	second := seedRecord(t, repo, date, "T2", 40)

	m := NewModel(svc, date, []storage.TaskCompletion{first, second})

	next, _ := m.Update(keyMsg("/"))
	m = next.(Model)
	if !m.Palette.Active {
		t.Fatal("slash did not enter command mode")
	}
	m.commandInput.SetValue("skip 1")
	next, _ = m.Update(keyMsg("enter"))
	m = next.(Model)
	if m.Palette.Active {
		t.Error("command mode still active after enter")
	}
	if len(m.Entries) != 1 || m.Entries[0].ID != second.ID {
		t.Fatalf("entries after skip = %+v", m.Entries)
	}
}

func TestLastConfirmationQuits(t *testing.T) {
	svc, repo, _, _ := testService(t)
	date := model.Date("2026-03-02")
	only := seedRecord(t, repo, date, "T1", 60)

	m := NewModel(svc, date, []storage.TaskCompletion{only})
	next, cmd := m.Update(confirmedMsg{Record: only})
	m = next.(Model)
	if !m.Quitting {
		t.Error("model should quit once the list empties")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}
