package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dayline-app/dayline/internal/commands"
	"github.com/dayline-app/dayline/internal/storage"
	"github.com/dayline-app/dayline/internal/views"
)

type confirmedMsg struct {
	Record storage.TaskCompletion
	Err    error
}

type reportMsg struct {
	Markdown string
	Err      error
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.ReportVisible {
			return m.handleReportKey(typed)
		}
		return m.handleListKey(typed)

	case confirmedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("confirm failed: %v", typed.Err), IsError: true}
			return m, nil
		}
		m.removeEntry(typed.Record.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("confirmed %s at %d%%", typed.Record.TaskName, typed.Record.CompletionPct)}
		if len(m.Entries) == 0 {
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil

	case reportMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("report failed: %v", typed.Err), IsError: true}
			return m, nil
		}
		m.Report = typed.Markdown
		m.ReportVisible = true
		m.reportView.SetContent(views.RenderMarkdown(typed.Markdown))
		m.Status = StatusBar{Text: "weekly report"}
		return m, nil

	case tea.WindowSizeMsg:
		m.reportView.Width = typed.Width
		m.reportView.Height = typed.Height - 4
		return m, nil
	}
	return m, nil
}

func (m Model) handleListKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "/":
		m.Palette.Active = true
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command mode"}
		return m, nil
	case "up", m.Keys.Up:
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", m.Keys.Down:
		if m.Cursor < len(m.Entries)-1 {
			m.Cursor++
		}
		return m, nil
	case m.Keys.Raise:
		m.adjustCurrent(5)
		return m, nil
	case m.Keys.Lower:
		m.adjustCurrent(-5)
		return m, nil
	case m.Keys.Confirm:
		entry, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, m.confirmCmd(entry, m.PendingCompletion(entry), m.Notes[entry.ID])
	case m.Keys.All:
		return m, m.confirmAllCmd()
	case m.Keys.Report:
		m.Status = StatusBar{Text: "fetching weekly report"}
		return m, m.reportCmd()
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePaletteKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.Palette.Active = false
		m.commandInput.Blur()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.Palette.Active = false
		m.commandInput.Blur()
		return m.runCommand(input)
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(key)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) handleReportKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", m.Keys.Quit:
		m.ReportVisible = false
		m.Status = StatusBar{}
		return m, nil
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.reportView, cmd = m.reportView.Update(key)
	return m, cmd
}

// runCommand parses and executes one slash command against the model.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var teaCmd tea.Cmd
	result, err := commands.Execute(cmd, commands.Handlers{
		Confirm: func(args commands.ConfirmArgs) (commands.Result, error) {
			entry, ok := m.entryAt(args.Index)
			if !ok {
				return commands.Result{}, fmt.Errorf("no entry %d", args.Index)
			}
			pct := m.PendingCompletion(entry)
			if args.Completion >= 0 {
				pct = args.Completion
			}
			teaCmd = m.confirmCmd(entry, pct, m.Notes[entry.ID])
			return commands.Result{Message: fmt.Sprintf("confirming %s", entry.TaskName)}, nil
		},
		Note: func(args commands.NoteArgs) (commands.Result, error) {
			entry, ok := m.entryAt(args.Index)
			if !ok {
				return commands.Result{}, fmt.Errorf("no entry %d", args.Index)
			}
			m.Notes[entry.ID] = args.Text
			return commands.Result{Message: "note attached"}, nil
		},
		Skip: func(args commands.SkipArgs) (commands.Result, error) {
			entry, ok := m.entryAt(args.Index)
			if !ok {
				return commands.Result{}, fmt.Errorf("no entry %d", args.Index)
			}
			m.removeEntry(entry.ID)
			return commands.Result{Message: fmt.Sprintf("skipped %s", entry.TaskName)}, nil
		},
		All: func() (commands.Result, error) {
			teaCmd = m.confirmAllCmd()
			return commands.Result{Message: "confirming all"}, nil
		},
		Report: func() (commands.Result, error) {
			teaCmd = m.reportCmd()
			return commands.Result{Message: "fetching weekly report"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: result.Message}
	return m, teaCmd
}

// entryAt maps a 1-based command index to a record.
func (m Model) entryAt(index int) (storage.TaskCompletion, bool) {
	if index < 1 || index > len(m.Entries) {
		return storage.TaskCompletion{}, false
	}
	return m.Entries[index-1], true
}

func (m Model) confirmCmd(entry storage.TaskCompletion, completion int, note string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		rec, err := svc.Confirm(context.Background(), entry.ID, completion, note)
		return confirmedMsg{Record: rec, Err: err}
	}
}

// confirmAllCmd confirms every remaining entry as-is, one message per
// record so the list updates incrementally.
func (m Model) confirmAllCmd() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.Entries))
	for _, entry := range m.Entries {
		cmds = append(cmds, m.confirmCmd(entry, m.PendingCompletion(entry), m.Notes[entry.ID]))
	}
	return tea.Batch(cmds...)
}

func (m Model) reportCmd() tea.Cmd {
	svc := m.svc
	date := m.Date
	return func() tea.Msg {
		md, err := svc.WeeklyReportMarkdown(context.Background(), date)
		return reportMsg{Markdown: md, Err: err}
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.ReportVisible {
		return views.RenderReport(m.reportView.View())
	}

	entries := make([]views.ReviewEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, views.ReviewEntry{
			TaskName:   e.TaskName,
			Block:      fmt.Sprintf("%s-%s", e.PlannedStart, e.PlannedEnd),
			Inferred:   e.CompletionPct,
			Pending:    m.PendingCompletion(e),
			Confidence: string(e.Confidence),
			Note:       m.Notes[e.ID],
		})
	}
	return views.RenderReview(views.ReviewData{
		Date:        m.Date.String(),
		Entries:     entries,
		Cursor:      m.Cursor,
		Status:      m.Status.Text,
		StatusError: m.Status.IsError,
		Command:     m.Palette.Active,
		CommandLine: m.commandInput.View(),
		HelpVisible: m.HelpVisible,
	})
}
