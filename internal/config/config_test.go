package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
activity_tracking:
  enabled: true
task_completion:
  enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ActivityTracking.PollingIntervalSec != 5 {
		t.Errorf("polling interval = %d, want 5", cfg.ActivityTracking.PollingIntervalSec)
	}
	if cfg.TaskCompletion.TriggerTime != "21:00" {
		t.Errorf("trigger time = %q, want 21:00", cfg.TaskCompletion.TriggerTime)
	}
	if cfg.TaskCompletion.DataRetentionDays != 365 {
		t.Errorf("completion retention = %d, want 365", cfg.TaskCompletion.DataRetentionDays)
	}
	if cfg.AI.TimeoutSec != 60 {
		t.Errorf("ai timeout = %d, want 60", cfg.AI.TimeoutSec)
	}
	if cfg.DataDir == "" || cfg.PlansDir == "" {
		t.Errorf("data paths not defaulted: %q %q", cfg.DataDir, cfg.PlansDir)
	}
}

func TestLoadRejectsBadTriggerTime(t *testing.T) {
	path := writeConfig(t, `
task_completion:
  enabled: true
  trigger_time: "25:99"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid trigger_time")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, `
task_completion:
  enabled: true
  auto_confirm_threshold: 150
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.TaskCompletion.TriggerTime = "20:30"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.TaskCompletion.TriggerTime != "20:30" {
		t.Errorf("trigger time = %q, want 20:30", loaded.TaskCompletion.TriggerTime)
	}
	if loaded.TriggerClockTime() != 20*60+30 {
		t.Errorf("TriggerClockTime() = %d", loaded.TriggerClockTime())
	}
}
