package views

import (
	"fmt"
	"strings"
)

// ReviewEntry is one unconfirmed completion record prepared for display.
type ReviewEntry struct {
	TaskName   string
	Block      string
	Inferred   int
	Pending    int
	Confidence string
	Note       string
}

type ReviewData struct {
	Date        string
	Entries     []ReviewEntry
	Cursor      int
	Status      string
	StatusError bool
	Command     bool
	CommandLine string
	HelpVisible bool
}

func RenderReview(data ReviewData) string {
	header := headerStyle.Render(fmt.Sprintf("Review %s (%d to confirm)", data.Date, len(data.Entries)))

	var body strings.Builder
	if len(data.Entries) == 0 {
		body.WriteString("nothing to review")
	}
	for i, e := range data.Entries {
		line := formatEntry(i+1, e)
		if i == data.Cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		body.WriteString(line)
		if i < len(data.Entries)-1 {
			body.WriteString("\n")
		}
	}

	status := statusStyle.Render(data.Status)
	if data.StatusError {
		status = errorStyle.Render(data.Status)
	}

	lines := []string{header, panelStyle.Render(body.String())}
	if data.Command {
		lines = append(lines, data.CommandLine)
	}
	if data.Status != "" {
		lines = append(lines, status)
	}
	if data.HelpVisible {
		lines = append(lines, footerStyle.Render(helpText))
	} else {
		lines = append(lines, footerStyle.Render("j/k move  +/- adjust  enter confirm  a all  r report  / command  ? help  q quit"))
	}
	return strings.Join(lines, "\n")
}

const helpText = `enter    confirm the selected record at the shown percentage
+ / -    adjust the percentage before confirming
a        confirm every record as shown
r        fetch the AI weekly report
/        command mode: confirm <n> [pct], note <n> ..., skip <n>, all, report
q        quit without confirming the rest`

func formatEntry(n int, e ReviewEntry) string {
	pct := fmt.Sprintf("%3d%%", e.Pending)
	if e.Pending != e.Inferred {
		pct = adjustedStyle.Render(fmt.Sprintf("%3d%% (was %d%%)", e.Pending, e.Inferred))
	}
	line := fmt.Sprintf("%d. %-24s %-12s %s %s", n, e.TaskName, e.Block, pct, e.Confidence)
	if e.Note != "" {
		line += footerStyle.Render("  # " + e.Note)
	}
	return line
}
