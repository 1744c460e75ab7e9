package model

// AppUse is one process's contribution to a task's activity evidence.
type AppUse struct {
	App         string
	DurationMin int
	Weight      float64
}

// FocusSignal summarizes completed focus sessions bound to a time block.
type FocusSignal struct {
	FocusDurationMin int
	FocusSessions    int
}

func (s FocusSignal) HasFocus() bool {
	return s.FocusSessions > 0 && s.FocusDurationMin > 0
}

// ActivitySignal summarizes foreground activity inside the planned window,
// split into primary apps (typical for the task) and secondary apps.
type ActivitySignal struct {
	Primary        []AppUse
	Secondary      []AppUse
	TotalActiveSec int
}

func (s ActivitySignal) HasActivity() bool {
	return len(s.Primary) > 0 || len(s.Secondary) > 0
}

// TimeMatchSignal compares actual to planned duration. Score is in [0,1];
// when either actual bound is unknown the score is 0.
type TimeMatchSignal struct {
	Score      float64
	PlannedMin int
	ActualMin  int
}

// Signals is the full evidence set the inference engine fuses.
type Signals struct {
	Focus     *FocusSignal
	Activity  *ActivitySignal
	TimeMatch *TimeMatchSignal
}
