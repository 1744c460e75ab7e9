package behavior

import "time"

// PatternConfidence rates how much evidence backs one app weight inside a
// task pattern. "template" marks weights seeded from task templates rather
// than learned from corrections.
type PatternConfidence string

const (
	PatternTemplate PatternConfidence = "template"
	PatternLow      PatternConfidence = "low"
	PatternMedium   PatternConfidence = "medium"
	PatternHigh     PatternConfidence = "high"
)

// AppAffinity is one process's learned relevance for a task.
type AppAffinity struct {
	Weight      float64           `json:"weight"`
	Confidence  PatternConfidence `json:"confidence"`
	SampleCount int               `json:"sample_count"`
}

// TaskPattern captures what the user typically does while working on a task
// with a given name.
type TaskPattern struct {
	TaskType              string                  `json:"task_type,omitempty"`
	TypicalDurationMin    int                     `json:"typical_duration_min,omitempty"`
	TypicalCompletionRate float64                 `json:"typical_completion_rate,omitempty"`
	FocusUsageRate        float64                 `json:"focus_usage_rate,omitempty"`
	LearningSamples       int                     `json:"learning_samples"`
	LastLearned           *time.Time              `json:"last_learned,omitempty"`
	TypicalApps           map[string]*AppAffinity `json:"typical_apps"`
}

type TimeEfficiency struct {
	Morning   float64 `json:"morning"`
	Afternoon float64 `json:"afternoon"`
	Evening   float64 `json:"evening"`
}

type GlobalPatterns struct {
	TimeEfficiency       TimeEfficiency `json:"time_efficiency"`
	AverageFocusDuration float64        `json:"average_focus_duration"`
	TypicalBreakPattern  string         `json:"typical_break_pattern,omitempty"`
	FrequentDistractions []string       `json:"frequent_distractions,omitempty"`
}

// LearningQuality aggregates how well engine estimates have matched user
// corrections.
type LearningQuality struct {
	TotalCorrections    int     `json:"total_corrections"`
	AccuratePredictions int     `json:"accurate_predictions"`
	AccuracyRate        float64 `json:"accuracy_rate"`
	NeedsRelearning     bool    `json:"needs_relearning"`
}

type DataRetention struct {
	KeepDays       int        `json:"keep_days"`
	OldestData     *time.Time `json:"oldest_data,omitempty"`
	CleanupLastRun *time.Time `json:"cleanup_last_run,omitempty"`
}

// Document is the full per-user behavior model persisted as one JSON file.
type Document struct {
	Version         int                     `json:"version"`
	UserID          string                  `json:"user_id,omitempty"`
	LastUpdated     time.Time               `json:"last_updated"`
	LastSynced      *time.Time              `json:"last_synced,omitempty"`
	TaskPatterns    map[string]*TaskPattern `json:"task_patterns"`
	GlobalPatterns  GlobalPatterns          `json:"global_patterns"`
	LearningQuality LearningQuality         `json:"learning_quality"`
	DataRetention   DataRetention           `json:"data_retention"`
}

const (
	documentVersion = 1
	defaultKeepDays = 30
)

func newDocument() *Document {
	return &Document{
		Version:      documentVersion,
		LastUpdated:  time.Now().UTC(),
		TaskPatterns: make(map[string]*TaskPattern),
		DataRetention: DataRetention{
			KeepDays: defaultKeepDays,
		},
	}
}
