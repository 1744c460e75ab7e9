package behavior

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	templateAppWeight = 0.75
	newAppWeight      = 0.5
)

// Store is the in-memory cache of the behavior-model document with atomic
// file persistence. All operations are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document
}

// Open loads the document at path, starting from an empty model when the
// file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: newDocument()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read behavior model: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse behavior model: %w", err)
	}
	if doc.TaskPatterns == nil {
		doc.TaskPatterns = make(map[string]*TaskPattern)
	}
	if doc.DataRetention.KeepDays <= 0 {
		doc.DataRetention.KeepDays = defaultKeepDays
	}
	s.doc = &doc
	return s, nil
}

// Save serializes the document and atomically replaces the file
// (write-to-temp + rename) so a crash mid-save never corrupts the model.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	s.doc.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal behavior model: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace model file: %w", err)
	}
	return nil
}

// GetTaskPattern returns a copy of the pattern for a task name. A missing
// task yields an empty pattern; nothing is created.
func (s *Store) GetTaskPattern(taskName string) TaskPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern, ok := s.doc.TaskPatterns[taskName]
	if !ok {
		return TaskPattern{TypicalApps: map[string]*AppAffinity{}}
	}
	return copyPattern(pattern)
}

func copyPattern(p *TaskPattern) TaskPattern {
	out := *p
	out.TypicalApps = make(map[string]*AppAffinity, len(p.TypicalApps))
	for app, aff := range p.TypicalApps {
		c := *aff
		out.TypicalApps[app] = &c
	}
	return out
}

// InitializeTaskPattern seeds a pattern from a template's primary apps.
// Existing patterns are left untouched.
func (s *Store) InitializeTaskPattern(taskName, taskType string, primaryApps []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.TaskPatterns[taskName]; ok {
		return nil
	}
	pattern := &TaskPattern{
		TaskType:    taskType,
		TypicalApps: make(map[string]*AppAffinity, len(primaryApps)),
	}
	for _, app := range primaryApps {
		pattern.TypicalApps[app] = &AppAffinity{
			Weight:     templateAppWeight,
			Confidence: PatternTemplate,
		}
	}
	s.doc.TaskPatterns[taskName] = pattern
	return s.saveLocked()
}

// Quality returns the current learning-quality counters.
func (s *Store) Quality() LearningQuality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LearningQuality
}

// CleanupOldData drops app entries that never accumulated evidence
// (sample_count < 3 and weight < 0.4) and stamps the cleanup run.
func (s *Store) CleanupOldData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pattern := range s.doc.TaskPatterns {
		for app, aff := range pattern.TypicalApps {
			if aff.SampleCount < 3 && aff.Weight < 0.4 {
				delete(pattern.TypicalApps, app)
			}
		}
	}
	now := time.Now().UTC()
	s.doc.DataRetention.CleanupLastRun = &now
	return s.saveLocked()
}

// Export returns the serialized document for the sync upload hook.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.doc, "", "  ")
}

// Import replaces the document from a sync download and persists it.
func (s *Store) Import(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse imported model: %w", err)
	}
	if doc.TaskPatterns == nil {
		doc.TaskPatterns = make(map[string]*TaskPattern)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	doc.LastSynced = &now
	s.doc = &doc
	return s.saveLocked()
}
