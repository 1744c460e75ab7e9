package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [date]",
	Short: "Show completion statistics for a day and its week",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	day, err := a.stats.Day(ctx, date)
	if err != nil {
		return err
	}
	week, err := a.stats.Week(ctx, date)
	if err != nil {
		return err
	}
	streak, err := a.stats.Streak(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", date)
	fmt.Printf("  tasks:       %d/%d completed (avg %.0f%%)\n", day.CompletedTasks, day.TotalTasks, day.AvgCompletion)
	fmt.Printf("  focus:       %d min\n", day.FocusMinutes)
	fmt.Printf("  streak:      %d day(s)\n", streak)
	fmt.Printf("week %s .. %s\n", week.Start, week.End)
	fmt.Printf("  tasks:       %d/%d completed (%.0f%%)\n", week.CompletedTasks, week.TotalTasks, week.CompletionRate*100)
	fmt.Printf("  focus:       %.1f h\n", float64(week.FocusMinutes)/60)

	if quality := a.behavior.Quality(); quality.TotalCorrections > 0 {
		fmt.Printf("learning\n")
		fmt.Printf("  corrections: %d (accuracy %.0f%%)\n", quality.TotalCorrections, quality.AccuracyRate*100)
		if quality.NeedsRelearning {
			fmt.Printf("  estimates have drifted; confirm more tasks to retrain\n")
		}
	}
	return nil
}
