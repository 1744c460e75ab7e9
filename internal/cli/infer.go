package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dayline-app/dayline/internal/scheduler"
)

var inferCmd = &cobra.Command{
	Use:   "infer [date]",
	Short: "Run the completion-inference pass for a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfer,
}

func runInfer(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.repo, a.plans, a.collector, a.log, scheduler.Config{
		Enabled:              true,
		AutoConfirmThreshold: a.cfg.TaskCompletion.AutoConfirmThreshold,
		AutoConfirmAll:       a.cfg.TaskCompletion.AutoConfirmAll,
	}, nil)
	if err := sched.RunDailyPass(cmd.Context(), date); err != nil {
		return err
	}

	records, err := a.repo.ListTaskCompletionsByDate(context.Background(), date)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no planned tasks for %s\n", date)
		return nil
	}
	for _, rec := range records {
		confirmed := " "
		if rec.UserConfirmed {
			confirmed = "*"
		}
		fmt.Printf("%s %-24s %s-%s  %3d%%  %s\n",
			confirmed, rec.TaskName, rec.PlannedStart, rec.PlannedEnd, rec.CompletionPct, rec.Confidence)
	}
	return nil
}
