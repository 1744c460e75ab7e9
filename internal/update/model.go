package update

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/storage"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up      string
	Down    string
	Raise   string
	Lower   string
	Confirm string
	All     string
	Report  string
	Help    string
	Quit    string
}

func DefaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Up:      "k",
		Down:    "j",
		Raise:   "+",
		Lower:   "-",
		Confirm: "enter",
		All:     "a",
		Report:  "r",
		Help:    "?",
		Quit:    "q",
	}
}

// Model is the review screen state: the day's unconfirmed completion
// records, a cursor, and per-record pending adjustments.
type Model struct {
	Date    model.Date
	Entries []storage.TaskCompletion
	Cursor  int
	// Adjust holds completion overrides keyed by record ID, applied on
	// confirm.
	Adjust map[string]int
	Notes  map[string]string

	Palette       PaletteState
	Report        string
	ReportVisible bool
	HelpVisible   bool
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool

	svc          *Service
	commandInput textinput.Model
	reportView   viewport.Model
}

type PaletteState struct {
	Active bool
	Input  string
}

func NewModel(svc *Service, date model.Date, entries []storage.TaskCompletion) Model {
	input := textinput.New()
	input.Placeholder = "confirm <n> [pct] | note <n> ... | skip <n> | all | report"
	input.CharLimit = 200

	return Model{
		Date:         date,
		Entries:      entries,
		Adjust:       make(map[string]int),
		Notes:        make(map[string]string),
		Keys:         DefaultKeyMap(),
		svc:          svc,
		commandInput: input,
		reportView:   viewport.New(80, 20),
	}
}

// PendingCompletion returns the completion that confirming the entry would
// persist, with any adjustment applied.
func (m Model) PendingCompletion(entry storage.TaskCompletion) int {
	if pct, ok := m.Adjust[entry.ID]; ok {
		return pct
	}
	return entry.CompletionPct
}

func (m Model) current() (storage.TaskCompletion, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Entries) {
		return storage.TaskCompletion{}, false
	}
	return m.Entries[m.Cursor], true
}

// removeEntry drops a confirmed record from the list and clamps the
// cursor.
func (m *Model) removeEntry(id string) {
	for i, e := range m.Entries {
		if e.ID == id {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			break
		}
	}
	delete(m.Adjust, id)
	delete(m.Notes, id)
	if m.Cursor >= len(m.Entries) && m.Cursor > 0 {
		m.Cursor = len(m.Entries) - 1
	}
}

func (m *Model) adjustCurrent(delta int) {
	entry, ok := m.current()
	if !ok {
		return
	}
	pct := m.PendingCompletion(entry) + delta
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	m.Adjust[entry.ID] = pct
}
