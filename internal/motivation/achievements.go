package motivation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

type AchievementCategory string

const (
	CategoryConsistency  AchievementCategory = "consistency"
	CategoryProductivity AchievementCategory = "productivity"
	CategoryFocus        AchievementCategory = "focus"
	CategoryExplorer     AchievementCategory = "explorer"
	CategorySpecial      AchievementCategory = "special"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Requirement types checked by the engine on every pass.
const (
	ReqConsecutiveDays      = "consecutive_days"
	ReqTotalTasks           = "total_tasks"
	ReqTotalFocusHours      = "total_focus_hours"
	ReqDailyCompletionRate  = "daily_completion_rate"
	ReqWeeklyCompletionRate = "weekly_completion_rate"
)

// Achievement is a static catalog entry; runtime unlock state lives in the
// achievements JSON document.
type Achievement struct {
	ID               string
	Name             string
	Description      string
	Category         AchievementCategory
	RequirementType  string
	RequirementValue float64
	Rarity           Rarity
	Points           int
	ProgressUnit     string
}

// Catalog returns the fixed achievement set.
func Catalog() []Achievement {
	return []Achievement{
		{ID: "first-task", Name: "First Steps", Description: "Complete your first task", Category: CategorySpecial, RequirementType: ReqTotalTasks, RequirementValue: 1, Rarity: RarityCommon, Points: 5, ProgressUnit: "tasks"},
		{ID: "streak-3", Name: "3-Day Streak", Description: "Complete at least one task on 3 consecutive days", Category: CategoryConsistency, RequirementType: ReqConsecutiveDays, RequirementValue: 3, Rarity: RarityCommon, Points: 10, ProgressUnit: "days"},
		{ID: "streak-7", Name: "Full Week", Description: "Complete at least one task on 7 consecutive days", Category: CategoryConsistency, RequirementType: ReqConsecutiveDays, RequirementValue: 7, Rarity: RarityRare, Points: 25, ProgressUnit: "days"},
		{ID: "streak-30", Name: "Habit Formed", Description: "Complete at least one task on 30 consecutive days", Category: CategoryConsistency, RequirementType: ReqConsecutiveDays, RequirementValue: 30, Rarity: RarityEpic, Points: 100, ProgressUnit: "days"},
		{ID: "tasks-10", Name: "Getting Things Done", Description: "Complete 10 tasks", Category: CategoryProductivity, RequirementType: ReqTotalTasks, RequirementValue: 10, Rarity: RarityCommon, Points: 10, ProgressUnit: "tasks"},
		{ID: "tasks-100", Name: "Centurion", Description: "Complete 100 tasks", Category: CategoryProductivity, RequirementType: ReqTotalTasks, RequirementValue: 100, Rarity: RarityRare, Points: 50, ProgressUnit: "tasks"},
		{ID: "tasks-1000", Name: "Machine", Description: "Complete 1000 tasks", Category: CategoryProductivity, RequirementType: ReqTotalTasks, RequirementValue: 1000, Rarity: RarityLegendary, Points: 250, ProgressUnit: "tasks"},
		{ID: "focus-10h", Name: "Deep Diver", Description: "Accumulate 10 hours of focus time", Category: CategoryFocus, RequirementType: ReqTotalFocusHours, RequirementValue: 10, Rarity: RarityCommon, Points: 15, ProgressUnit: "hours"},
		{ID: "focus-100h", Name: "Monk Mode", Description: "Accumulate 100 hours of focus time", Category: CategoryFocus, RequirementType: ReqTotalFocusHours, RequirementValue: 100, Rarity: RarityEpic, Points: 100, ProgressUnit: "hours"},
		{ID: "perfect-day", Name: "Perfect Day", Description: "Finish every planned task in a day", Category: CategoryExplorer, RequirementType: ReqDailyCompletionRate, RequirementValue: 1.0, Rarity: RarityRare, Points: 30, ProgressUnit: "rate"},
		{ID: "solid-week", Name: "Solid Week", Description: "Reach an 80% completion rate over a week", Category: CategoryExplorer, RequirementType: ReqWeeklyCompletionRate, RequirementValue: 0.8, Rarity: RarityRare, Points: 40, ProgressUnit: "rate"},
	}
}

type unlockedEntry struct {
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

type achievementsFile struct {
	Unlocked    []unlockedEntry    `json:"unlocked"`
	Progress    map[string]float64 `json:"progress"`
	LastUpdated time.Time          `json:"last_updated"`
}

// AchievementStore tracks unlock state and progress per achievement in a
// JSON document with atomic replacement on save.
type AchievementStore struct {
	mu      sync.Mutex
	path    string
	catalog []Achievement
	doc     achievementsFile
}

func OpenAchievements(path string) (*AchievementStore, error) {
	s := &AchievementStore{
		path:    path,
		catalog: Catalog(),
		doc:     achievementsFile{Progress: make(map[string]float64)},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read achievements: %w", err)
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse achievements: %w", err)
	}
	if s.doc.Progress == nil {
		s.doc.Progress = make(map[string]float64)
	}
	return s, nil
}

// CheckAndUnlock records the current value against every catalog entry of
// the given requirement type and returns the entries newly unlocked by it.
// Already-unlocked achievements are never returned again.
func (s *AchievementStore) CheckAndUnlock(requirementType string, value float64) ([]Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newly []Achievement
	changed := false
	for _, a := range s.catalog {
		if a.RequirementType != requirementType {
			continue
		}
		if s.doc.Progress[a.ID] != value {
			s.doc.Progress[a.ID] = value
			changed = true
		}
		if s.unlockedLocked(a.ID) || value < a.RequirementValue {
			continue
		}
		s.doc.Unlocked = append(s.doc.Unlocked, unlockedEntry{
			AchievementID: a.ID,
			UnlockedAt:    time.Now().UTC(),
		})
		newly = append(newly, a)
		changed = true
	}
	if !changed {
		return nil, nil
	}
	return newly, s.saveLocked()
}

func (s *AchievementStore) IsUnlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockedLocked(id)
}

func (s *AchievementStore) unlockedLocked(id string) bool {
	for _, u := range s.doc.Unlocked {
		if u.AchievementID == id {
			return true
		}
	}
	return false
}

// Progress returns the last recorded value for an achievement.
func (s *AchievementStore) Progress(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Progress[id]
}

// TotalPoints sums the points of every unlocked achievement.
func (s *AchievementStore) TotalPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := 0
	for _, a := range s.catalog {
		if s.unlockedLocked(a.ID) {
			points += a.Points
		}
	}
	return points
}

func (s *AchievementStore) saveLocked() error {
	s.doc.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal achievements: %w", err)
	}
	return writeFileAtomic(s.path, data)
}
