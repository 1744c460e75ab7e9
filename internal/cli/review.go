package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dayline-app/dayline/internal/motivation"
	"github.com/dayline-app/dayline/internal/update"
)

var reviewCmd = &cobra.Command{
	Use:   "review [date]",
	Short: "Review and confirm inferred completions interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	goals, achievements, err := a.motivationStores()
	if err != nil {
		return err
	}
	engine := motivation.NewEngine(goals, achievements, a.stats, a.repo, a.log, motivation.Callbacks{})
	engine.Start()
	defer engine.Stop()

	svc := a.reviewService(engine)
	entries, err := svc.Unconfirmed(context.Background(), date)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("nothing to review for %s\n", date)
		return nil
	}

	program := tea.NewProgram(update.NewModel(svc, date, entries))
	_, err = program.Run()
	return err
}
