// Package schedule supplies the planned task list for a date. The task
// editor owns the plan; this package only reads it.
package schedule

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dayline-app/dayline/internal/model"
)

type Provider interface {
	TasksForDate(date model.Date) ([]model.PlannedTask, error)
}

// FileProvider reads one YAML plan file per day from a directory,
// named "<date>.yaml". A missing file means an unplanned day.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

type planFile struct {
	Date  string     `yaml:"date"`
	Tasks []planTask `yaml:"tasks"`
}

type planTask struct {
	TimeBlockID string `yaml:"time_block_id"`
	Name        string `yaml:"name"`
	TaskType    string `yaml:"task_type,omitempty"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	DurationMin int    `yaml:"duration_min,omitempty"`
}

func (p *FileProvider) TasksForDate(date model.Date) ([]model.PlannedTask, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(p.dir, string(date)+".yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read day plan: %w", err)
	}

	var plan planFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse day plan %s: %w", date, err)
	}

	out := make([]model.PlannedTask, 0, len(plan.Tasks))
	seen := make(map[string]bool, len(plan.Tasks))
	for _, raw := range plan.Tasks {
		task, err := raw.toPlannedTask()
		if err != nil {
			return nil, fmt.Errorf("day plan %s, block %q: %w", date, raw.TimeBlockID, err)
		}
		if seen[task.TimeBlockID] {
			return nil, fmt.Errorf("day plan %s: duplicate time_block_id %q", date, task.TimeBlockID)
		}
		seen[task.TimeBlockID] = true
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlannedStart < out[j].PlannedStart })
	return out, nil
}

func (raw planTask) toPlannedTask() (model.PlannedTask, error) {
	start, err := model.ParseClockTime(raw.Start)
	if err != nil {
		return model.PlannedTask{}, err
	}
	end, err := model.ParseClockTime(raw.End)
	if err != nil {
		return model.PlannedTask{}, err
	}
	task := model.PlannedTask{
		TimeBlockID:  raw.TimeBlockID,
		Name:         raw.Name,
		TaskType:     raw.TaskType,
		PlannedStart: start,
		PlannedEnd:   end,
		DurationMin:  raw.DurationMin,
	}
	if err := task.Validate(); err != nil {
		return model.PlannedTask{}, err
	}
	return task, nil
}
