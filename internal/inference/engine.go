package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dayline-app/dayline/internal/behavior"
	"github.com/dayline-app/dayline/internal/model"
)

// Fusion weight constants. Focus evidence dominates; wall-clock overlap is
// the weakest signal.
const (
	weightFocus     = 1.0
	weightPrimary   = 0.85
	weightSecondary = 0.60
	weightTimeMatch = 0.50

	// A single completed pomodoro is full credit for the focus score.
	focusFullCreditMin = 25
)

// Detail is the inference blob persisted alongside each completion record.
// The learning loop parses the app lists back out of it after a correction.
type Detail struct {
	SignalCount   int                `json:"signal_count"`
	TotalWeight   float64            `json:"total_weight"`
	Scores        map[string]float64 `json:"scores"`
	PrimaryApps   []string           `json:"primary_apps,omitempty"`
	SecondaryApps []string           `json:"secondary_apps,omitempty"`
}

// Result is one task's completion estimate.
type Result struct {
	Completion        int
	Confidence        model.Confidence
	ActualStart       time.Time
	ActualEnd         time.Time
	ActualDurationMin int
	Detail            Detail
}

func (r Result) DetailJSON() string {
	data, err := json.Marshal(r.Detail)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Estimate collects evidence and infers in one step. This is the entry
// point the completion scheduler uses per planned task.
func (c *Collector) Estimate(ctx context.Context, task model.PlannedTask, date model.Date) (Result, error) {
	signals, err := c.Collect(ctx, task, date, nil)
	if err != nil {
		return Result{}, err
	}
	return Infer(task, date, signals)
}

type signalScore struct {
	name   string
	score  float64
	weight float64
}

// Infer fuses the collected signals into a completion percentage and a
// confidence tier. It is a pure function of its inputs.
func Infer(task model.PlannedTask, date model.Date, signals model.Signals) (Result, error) {
	day, err := date.Midnight()
	if err != nil {
		return Result{}, err
	}

	var scores []signalScore
	detail := Detail{Scores: make(map[string]float64)}

	if signals.Focus != nil && signals.Focus.HasFocus() {
		score := float64(signals.Focus.FocusDurationMin) / focusFullCreditMin * 100
		if score > 100 {
			score = 100
		}
		scores = append(scores, signalScore{name: "focus", score: score, weight: weightFocus})
	}
	if signals.Activity != nil {
		if len(signals.Activity.Primary) > 0 {
			scores = append(scores, signalScore{
				name:   "primary_apps",
				score:  weightedAppScore(signals.Activity.Primary),
				weight: weightPrimary,
			})
			detail.PrimaryApps = formatApps(signals.Activity.Primary)
		}
		if len(signals.Activity.Secondary) > 0 {
			scores = append(scores, signalScore{
				name:   "secondary_apps",
				score:  weightedAppScore(signals.Activity.Secondary),
				weight: weightSecondary,
			})
			detail.SecondaryApps = formatApps(signals.Activity.Secondary)
		}
	}
	if signals.TimeMatch != nil && signals.TimeMatch.Score > 0 {
		scores = append(scores, signalScore{name: "time_match", score: signals.TimeMatch.Score * 100, weight: weightTimeMatch})
	}

	completion := 0.0
	totalWeight := 0.0
	for _, s := range scores {
		completion += s.score * s.weight
		totalWeight += s.weight
		detail.Scores[s.name] = math.Round(s.score*10) / 10
	}
	if totalWeight > 0 {
		completion /= totalWeight
	}
	detail.SignalCount = len(scores)
	detail.TotalWeight = totalWeight

	result := Result{
		Completion:  int(math.Round(completion)),
		Confidence:  deriveConfidence(signals, scores, totalWeight),
		ActualStart: task.PlannedStart.At(day),
		ActualEnd:   task.PlannedEnd.At(day),
		Detail:      detail,
	}
	if signals.Activity != nil && signals.Activity.TotalActiveSec > 0 {
		result.ActualDurationMin = signals.Activity.TotalActiveSec / 60
	} else {
		result.ActualDurationMin = int(math.Round(float64(task.PlannedDuration()) * float64(result.Completion) / 100))
	}
	return result, nil
}

// deriveConfidence applies the tier rules in priority order.
func deriveConfidence(signals model.Signals, scores []signalScore, totalWeight float64) model.Confidence {
	if len(scores) == 0 {
		return model.ConfidenceUnknown
	}
	hasFocus := signals.Focus != nil && signals.Focus.HasFocus()
	hasPrimary := signals.Activity != nil && len(signals.Activity.Primary) > 0
	hasSecondary := signals.Activity != nil && len(signals.Activity.Secondary) > 0
	hasTime := signals.TimeMatch != nil && signals.TimeMatch.Score > 0

	switch {
	case hasFocus:
		return model.ConfidenceHigh
	case hasPrimary && totalWeight >= weightPrimary:
		return model.ConfidenceHigh
	case hasPrimary || hasSecondary:
		return model.ConfidenceMedium
	case hasTime:
		return model.ConfidenceLow
	default:
		return model.ConfidenceUnknown
	}
}

func weightedAppScore(apps []model.AppUse) float64 {
	weighted := 0.0
	minutes := 0
	for _, a := range apps {
		weighted += float64(a.DurationMin) * a.Weight
		minutes += a.DurationMin
	}
	if minutes == 0 {
		return 0
	}
	score := weighted / float64(minutes) * 100
	if score > 100 {
		score = 100
	}
	return score
}

func formatApps(apps []model.AppUse) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, fmt.Sprintf("%s(%dmin)", a.App, a.DurationMin))
	}
	return out
}

// ParseAppsUsed recovers the app usage list from a persisted inference blob
// so the learning loop can feed it back into the behavior model.
func ParseAppsUsed(detailJSON string) []behavior.AppUsed {
	var detail Detail
	if err := json.Unmarshal([]byte(detailJSON), &detail); err != nil {
		return nil
	}
	var out []behavior.AppUsed
	for _, entry := range append(detail.PrimaryApps, detail.SecondaryApps...) {
		if used, ok := parseAppEntry(entry); ok {
			out = append(out, used)
		}
	}
	return out
}

func parseAppEntry(entry string) (behavior.AppUsed, bool) {
	open := strings.LastIndex(entry, "(")
	if open <= 0 || !strings.HasSuffix(entry, "min)") {
		return behavior.AppUsed{}, false
	}
	minutes, err := strconv.Atoi(entry[open+1 : len(entry)-len("min)")])
	if err != nil {
		return behavior.AppUsed{}, false
	}
	return behavior.AppUsed{App: entry[:open], DurationMin: minutes}, true
}
