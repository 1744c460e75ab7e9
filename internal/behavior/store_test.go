package behavior

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/dayline-app/dayline/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "user_behavior_model.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestInitializeTaskPatternIdempotent(t *testing.T) {
	s := testStore(t)

	if err := s.InitializeTaskPattern("code", "work", []string{"editor.exe"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	pattern := s.GetTaskPattern("code")
	aff, ok := pattern.TypicalApps["editor.exe"]
	if !ok {
		t.Fatal("template app missing")
	}
	if aff.Weight != 0.75 || aff.Confidence != PatternTemplate || aff.SampleCount != 0 {
		t.Fatalf("unexpected template affinity: %+v", aff)
	}

	// A second initialization must not reset learned state.
	if err := s.LearnFromCorrection("code", []AppUsed{{App: "editor.exe", DurationMin: 30}}, model.CorrectionUnderestimated); err != nil {
		t.Fatalf("learn: %v", err)
	}
	if err := s.InitializeTaskPattern("code", "work", []string{"other.exe"}); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	pattern = s.GetTaskPattern("code")
	if _, ok := pattern.TypicalApps["other.exe"]; ok {
		t.Fatal("re-initialize modified an existing pattern")
	}
	if math.Abs(pattern.TypicalApps["editor.exe"].Weight-0.80) > 1e-9 {
		t.Fatalf("learned weight lost: %f", pattern.TypicalApps["editor.exe"].Weight)
	}
}

func TestGetTaskPatternMissingDoesNotCreate(t *testing.T) {
	s := testStore(t)
	pattern := s.GetTaskPattern("nothing")
	if len(pattern.TypicalApps) != 0 || pattern.LearningSamples != 0 {
		t.Fatalf("unexpected pattern for unknown task: %+v", pattern)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	reopened, err := Open(s.path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.doc.TaskPatterns["nothing"]; ok {
		t.Fatal("missing-pattern read created a pattern")
	}
}

func TestLearnFromCorrectionAdjustsWeights(t *testing.T) {
	s := testStore(t)
	if err := s.InitializeTaskPattern("code", "", []string{"editor.exe"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	apps := []AppUsed{
		{App: "editor.exe", DurationMin: 30},
		{App: "chrome.exe", DurationMin: 5}, // below the learning threshold
	}
	if err := s.LearnFromCorrection("code", apps, model.CorrectionUnderestimated); err != nil {
		t.Fatalf("learn: %v", err)
	}

	pattern := s.GetTaskPattern("code")
	if math.Abs(pattern.TypicalApps["editor.exe"].Weight-0.80) > 1e-9 {
		t.Fatalf("underestimated should add 0.05: %f", pattern.TypicalApps["editor.exe"].Weight)
	}
	if _, ok := pattern.TypicalApps["chrome.exe"]; ok {
		t.Fatal("short usage should not enter the pattern")
	}
	if pattern.LearningSamples != 1 {
		t.Fatalf("learning samples: %d", pattern.LearningSamples)
	}

	q := s.Quality()
	if q.TotalCorrections != 1 || q.AccuratePredictions != 0 || q.AccuracyRate != 0 {
		t.Fatalf("unexpected quality: %+v", q)
	}
}

func TestLearnMonotonicity(t *testing.T) {
	s := testStore(t)
	apps := []AppUsed{{App: "editor.exe", DurationMin: 30}}

	for i := 0; i < 30; i++ {
		if err := s.LearnFromCorrection("code", apps, model.CorrectionUnderestimated); err != nil {
			t.Fatalf("learn up: %v", err)
		}
	}
	w := s.GetTaskPattern("code").TypicalApps["editor.exe"].Weight
	if w != 1.0 {
		t.Fatalf("weight should clamp at 1.0, got %f", w)
	}

	for i := 0; i < 60; i++ {
		if err := s.LearnFromCorrection("code", apps, model.CorrectionOverestimated); err != nil {
			t.Fatalf("learn down: %v", err)
		}
	}
	w = s.GetTaskPattern("code").TypicalApps["editor.exe"].Weight
	if w != 0.0 {
		t.Fatalf("weight should clamp at 0.0, got %f", w)
	}
}

func TestConfidenceBucketsAfterTenSamples(t *testing.T) {
	s := testStore(t)
	apps := []AppUsed{{App: "editor.exe", DurationMin: 30}}

	for i := 0; i < 9; i++ {
		_ = s.LearnFromCorrection("code", apps, model.CorrectionUnderestimated)
	}
	if c := s.GetTaskPattern("code").TypicalApps["editor.exe"].Confidence; c != PatternLow {
		t.Fatalf("confidence should stay low before 10 samples: %s", c)
	}
	_ = s.LearnFromCorrection("code", apps, model.CorrectionUnderestimated)
	if c := s.GetTaskPattern("code").TypicalApps["editor.exe"].Confidence; c != PatternHigh {
		t.Fatalf("weight 1.0 after 10 samples should be high: %s", c)
	}
}

func TestNeedsRelearning(t *testing.T) {
	s := testStore(t)
	apps := []AppUsed{{App: "editor.exe", DurationMin: 30}}

	for i := 0; i < 20; i++ {
		if err := s.LearnFromCorrection("code", apps, model.CorrectionOverestimated); err != nil {
			t.Fatalf("learn: %v", err)
		}
	}
	q := s.Quality()
	if !q.NeedsRelearning {
		t.Fatalf("20 inaccurate corrections should flag relearning: %+v", q)
	}

	// Accuracy climbing back above the floor clears the flag.
	for i := 0; i < 40; i++ {
		if err := s.LearnFromCorrection("code", apps, model.CorrectionAccurate); err != nil {
			t.Fatalf("learn accurate: %v", err)
		}
	}
	q = s.Quality()
	if q.NeedsRelearning {
		t.Fatalf("flag should clear once accuracy recovers: %+v", q)
	}
	want := float64(40) / float64(60)
	if math.Abs(q.AccuracyRate-want) > 1e-9 {
		t.Fatalf("accuracy rate %f, want %f", q.AccuracyRate, want)
	}
}

func TestCleanupOldDataDropsWeakEntries(t *testing.T) {
	s := testStore(t)
	s.doc.TaskPatterns["code"] = &TaskPattern{TypicalApps: map[string]*AppAffinity{
		"weak.exe":   {Weight: 0.3, Confidence: PatternLow, SampleCount: 1},
		"strong.exe": {Weight: 0.8, Confidence: PatternHigh, SampleCount: 12},
	}}

	if err := s.CleanupOldData(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	pattern := s.GetTaskPattern("code")
	if _, ok := pattern.TypicalApps["weak.exe"]; ok {
		t.Fatal("weak entry should be dropped")
	}
	if _, ok := pattern.TypicalApps["strong.exe"]; !ok {
		t.Fatal("strong entry should survive")
	}
}

func TestSaveAndReload(t *testing.T) {
	s := testStore(t)
	if err := s.InitializeTaskPattern("write", "deep", []string{"word.exe"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	reopened, err := Open(s.path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	pattern := reopened.GetTaskPattern("write")
	if pattern.TypicalApps["word.exe"] == nil || pattern.TypicalApps["word.exe"].Weight != 0.75 {
		t.Fatalf("pattern did not survive reload: %+v", pattern)
	}
}
