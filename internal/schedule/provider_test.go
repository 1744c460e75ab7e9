package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dayline-app/dayline/internal/model"
)

func writePlan(t *testing.T, dir, date, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, date+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
}

func TestTasksForDateSortsByStart(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "2025-01-01", `
date: 2025-01-01
tasks:
  - time_block_id: T2
    name: review
    start: "14:00"
    end: "15:00"
  - time_block_id: T1
    name: code
    task_type: work
    start: "09:00"
    end: "10:00"
  - time_block_id: T3
    name: read
    start: "23:00"
    end: "24:00"
`)

	tasks, err := NewFileProvider(dir).TasksForDate("2025-01-01")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].TimeBlockID != "T1" || tasks[1].TimeBlockID != "T2" || tasks[2].TimeBlockID != "T3" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
	if tasks[2].PlannedEnd != model.EndOfDay {
		t.Fatalf("24:00 should parse to end-of-day, got %d", tasks[2].PlannedEnd)
	}
	if tasks[2].PlannedDuration() != 60 {
		t.Fatalf("23:00-24:00 should be 60 minutes, got %d", tasks[2].PlannedDuration())
	}
}

func TestTasksForDateMissingFile(t *testing.T) {
	tasks, err := NewFileProvider(t.TempDir()).TasksForDate("2025-01-01")
	if err != nil {
		t.Fatalf("missing plan should not error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty plan, got %+v", tasks)
	}
}

func TestTasksForDateRejectsDuplicateBlocks(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "2025-01-01", `
tasks:
  - {time_block_id: T1, name: a, start: "09:00", end: "10:00"}
  - {time_block_id: T1, name: b, start: "10:00", end: "11:00"}
`)
	if _, err := NewFileProvider(dir).TasksForDate("2025-01-01"); err == nil {
		t.Fatal("expected duplicate block error")
	}
}

func TestTasksForDateRejectsBadTimes(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "2025-01-01", `
tasks:
  - {time_block_id: T1, name: a, start: "09:00", end: "25:00"}
`)
	if _, err := NewFileProvider(dir).TasksForDate("2025-01-01"); err == nil {
		t.Fatal("expected clock time error")
	}
}
