// Package config loads the daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dayline-app/dayline/internal/model"
)

// Config is the root configuration for the daemon.
type Config struct {
	DataDir          string           `yaml:"data_dir,omitempty"` // defaults to ~/.dayline
	PlansDir         string           `yaml:"plans_dir,omitempty"`
	Debug            bool             `yaml:"debug,omitempty"`
	ActivityTracking ActivityTracking `yaml:"activity_tracking"`
	TaskCompletion   TaskCompletion   `yaml:"task_completion"`
	Motivation       Motivation       `yaml:"motivation"`
	AI               AI               `yaml:"ai"`
}

// ActivityTracking controls the foreground sampler.
type ActivityTracking struct {
	Enabled            bool `yaml:"enabled"`
	PollingIntervalSec int  `yaml:"polling_interval,omitempty"`     // min 1
	MinSessionSec      int  `yaml:"min_session_duration,omitempty"` // min 1
	DataRetentionDays  int  `yaml:"data_retention_days,omitempty"`
}

// TaskCompletion controls the daily inference pass.
type TaskCompletion struct {
	Enabled              bool   `yaml:"enabled"`
	TriggerTime          string `yaml:"trigger_time,omitempty"` // "HH:MM"
	TriggerOnStartup     bool   `yaml:"trigger_on_startup,omitempty"`
	AutoConfirmThreshold int    `yaml:"auto_confirm_threshold,omitempty"` // 0 disables
	AutoConfirmAll       bool   `yaml:"auto_confirm_all,omitempty"`
	DataRetentionDays    int    `yaml:"data_retention_days,omitempty"`
}

type Motivation struct {
	Enabled bool `yaml:"enabled"`
}

type AI struct {
	BaseURL    string `yaml:"base_url,omitempty"`
	TimeoutSec int    `yaml:"timeout_sec,omitempty"` // 0 = default 60
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns a starter config.
func Default() *Config {
	cfg := &Config{
		ActivityTracking: ActivityTracking{Enabled: true},
		TaskCompletion:   TaskCompletion{Enabled: true, TriggerOnStartup: true, AutoConfirmThreshold: 90},
		Motivation:       Motivation{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.DataDir = filepath.Join(home, ".dayline")
		} else {
			c.DataDir = ".dayline"
		}
	}
	if c.PlansDir == "" {
		c.PlansDir = filepath.Join(c.DataDir, "plans")
	}
	if c.ActivityTracking.PollingIntervalSec <= 0 {
		c.ActivityTracking.PollingIntervalSec = 5
	}
	if c.ActivityTracking.MinSessionSec <= 0 {
		c.ActivityTracking.MinSessionSec = 1
	}
	if c.ActivityTracking.DataRetentionDays <= 0 {
		c.ActivityTracking.DataRetentionDays = 90
	}
	if c.TaskCompletion.TriggerTime == "" {
		c.TaskCompletion.TriggerTime = "21:00"
	}
	if c.TaskCompletion.DataRetentionDays <= 0 {
		c.TaskCompletion.DataRetentionDays = 365
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 60
	}
}

func (c *Config) validate() error {
	if c.ActivityTracking.PollingIntervalSec < 1 {
		return fmt.Errorf("config: activity_tracking.polling_interval must be at least 1")
	}
	if c.ActivityTracking.MinSessionSec < 1 {
		return fmt.Errorf("config: activity_tracking.min_session_duration must be at least 1")
	}
	if _, err := model.ParseClockTime(c.TaskCompletion.TriggerTime); err != nil {
		return fmt.Errorf("config: task_completion.trigger_time: %w", err)
	}
	if t := c.TaskCompletion.AutoConfirmThreshold; t < 0 || t > 100 {
		return fmt.Errorf("config: task_completion.auto_confirm_threshold must be in 0..100")
	}
	return nil
}

// TriggerClockTime parses the validated trigger time.
func (c *Config) TriggerClockTime() model.ClockTime {
	t, err := model.ParseClockTime(c.TaskCompletion.TriggerTime)
	if err != nil {
		return 21 * 60
	}
	return t
}

// Paths derived from the data directory.
func (c *Config) DatabasePath() string      { return filepath.Join(c.DataDir, "dayline.db") }
func (c *Config) BehaviorModelPath() string { return filepath.Join(c.DataDir, "user_behavior_model.json") }
func (c *Config) GoalsPath() string         { return filepath.Join(c.DataDir, "goals.json") }
func (c *Config) AchievementsPath() string  { return filepath.Join(c.DataDir, "achievements.json") }
