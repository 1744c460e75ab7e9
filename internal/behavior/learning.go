package behavior

import (
	"time"

	"github.com/dayline-app/dayline/internal/model"
)

// AppUsed reports one app's usage during a corrected task, as parsed from
// the completion record's inference data.
type AppUsed struct {
	App         string
	DurationMin int
}

const (
	// Apps used for less than this many minutes carry too little signal to
	// learn from.
	learnMinMinutes = 10

	weightStepUnder    = 0.05
	weightStepOver     = -0.05
	weightStepAccurate = 0.02

	confidenceSampleFloor = 10

	relearnCorrectionFloor = 20
	relearnAccuracyFloor   = 0.6
)

// LearnFromCorrection applies one user correction to the task's pattern
// using a bounded additive update, then refreshes the global learning
// quality counters and persists the document.
func (s *Store) LearnFromCorrection(taskName string, appsUsed []AppUsed, correction model.CorrectionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern, ok := s.doc.TaskPatterns[taskName]
	if !ok {
		pattern = &TaskPattern{TypicalApps: make(map[string]*AppAffinity)}
		s.doc.TaskPatterns[taskName] = pattern
	}
	if pattern.TypicalApps == nil {
		pattern.TypicalApps = make(map[string]*AppAffinity)
	}

	delta := weightStepAccurate
	switch correction {
	case model.CorrectionUnderestimated:
		delta = weightStepUnder
	case model.CorrectionOverestimated:
		delta = weightStepOver
	}

	for _, used := range appsUsed {
		if used.DurationMin < learnMinMinutes {
			continue
		}
		aff, ok := pattern.TypicalApps[used.App]
		if !ok {
			aff = &AppAffinity{Weight: newAppWeight, Confidence: PatternLow}
			pattern.TypicalApps[used.App] = aff
		}
		aff.Weight = clampWeight(aff.Weight + delta)
		aff.SampleCount++
		aff.Confidence = bucketConfidence(aff)
	}

	pattern.LearningSamples++
	now := time.Now().UTC()
	pattern.LastLearned = &now

	q := &s.doc.LearningQuality
	q.TotalCorrections++
	if correction == model.CorrectionAccurate {
		q.AccuratePredictions++
	}
	q.AccuracyRate = float64(q.AccuratePredictions) / float64(q.TotalCorrections)
	q.NeedsRelearning = q.TotalCorrections >= relearnCorrectionFloor && q.AccuracyRate < relearnAccuracyFloor

	return s.saveLocked()
}

func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// bucketConfidence keeps template/low confidence until enough samples have
// accumulated, then buckets by weight.
func bucketConfidence(aff *AppAffinity) PatternConfidence {
	if aff.SampleCount < confidenceSampleFloor {
		if aff.Confidence == PatternTemplate {
			return PatternTemplate
		}
		return PatternLow
	}
	switch {
	case aff.Weight >= 0.8:
		return PatternHigh
	case aff.Weight >= 0.5:
		return PatternMedium
	default:
		return PatternLow
	}
}
