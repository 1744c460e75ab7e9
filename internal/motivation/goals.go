// Package motivation derives goal progress and achievement unlocks from
// rolling completion statistics, and batches the resulting notifications.
package motivation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayline-app/dayline/internal/model"
)

type GoalType string

const (
	GoalDailyTasks           GoalType = "daily_tasks"
	GoalWeeklyFocusHours     GoalType = "weekly_focus_hours"
	GoalWeeklyCompletionRate GoalType = "weekly_completion_rate"
)

func (g GoalType) IsValid() bool {
	switch g {
	case GoalDailyTasks, GoalWeeklyFocusHours, GoalWeeklyCompletionRate:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
)

type Goal struct {
	ID           string     `json:"goal_id"`
	Type         GoalType   `json:"goal_type"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value"`
	StartDate    model.Date `json:"start_date"`
	EndDate      model.Date `json:"end_date,omitempty"`
	Status       GoalStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type goalsFile struct {
	Goals       []Goal    `json:"goals"`
	LastUpdated time.Time `json:"last_updated"`
}

// GoalStore keeps the user's goals in a small JSON document with atomic
// replacement on save.
type GoalStore struct {
	mu   sync.Mutex
	path string
	doc  goalsFile
}

func OpenGoals(path string) (*GoalStore, error) {
	s := &GoalStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read goals: %w", err)
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse goals: %w", err)
	}
	return s, nil
}

func (s *GoalStore) Add(goalType GoalType, target float64) (Goal, error) {
	if !goalType.IsValid() {
		return Goal{}, fmt.Errorf("motivation: unknown goal type %q", goalType)
	}
	if target <= 0 {
		return Goal{}, errors.New("motivation: goal target must be positive")
	}
	goal := Goal{
		ID:          uuid.NewString(),
		Type:        goalType,
		TargetValue: target,
		StartDate:   model.Today(),
		Status:      GoalActive,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Goals = append(s.doc.Goals, goal)
	return goal, s.saveLocked()
}

// List returns a copy of every goal.
func (s *GoalStore) List() []Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Goal, len(s.doc.Goals))
	copy(out, s.doc.Goals)
	return out
}

func (s *GoalStore) Active() []Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Goal
	for _, g := range s.doc.Goals {
		if g.Status == GoalActive {
			out = append(out, g)
		}
	}
	return out
}

func (s *GoalStore) Abandon(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Goals {
		if s.doc.Goals[i].ID == id {
			s.doc.Goals[i].Status = GoalAbandoned
			return s.saveLocked()
		}
	}
	return fmt.Errorf("motivation: goal %q not found", id)
}

// UpdateProgress records the current value for an active goal and, when the
// target is crossed, transitions it to completed. The returned flag is true
// only on the pass that crosses the target, so completion events fire once.
func (s *GoalStore) UpdateProgress(id string, value float64) (Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Goals {
		g := &s.doc.Goals[i]
		if g.ID != id {
			continue
		}
		if g.Status != GoalActive {
			return *g, false, nil
		}
		g.CurrentValue = value
		completed := value >= g.TargetValue
		if completed {
			g.Status = GoalCompleted
			now := time.Now().UTC()
			g.CompletedAt = &now
		}
		return *g, completed, s.saveLocked()
	}
	return Goal{}, false, fmt.Errorf("motivation: goal %q not found", id)
}

func (s *GoalStore) saveLocked() error {
	s.doc.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
