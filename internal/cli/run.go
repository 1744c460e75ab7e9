package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayline-app/dayline/internal/motivation"
	"github.com/dayline-app/dayline/internal/sampler"
	"github.com/dayline-app/dayline/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon: sampler, daily inference pass, motivation engine",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.behavior.CleanupOldData(); err != nil {
		a.log.Warnw("behavior model cleanup failed", "error", err)
	}

	goals, achievements, err := a.motivationStores()
	if err != nil {
		return err
	}

	var engine *motivation.Engine
	if a.cfg.Motivation.Enabled {
		engine = motivation.NewEngine(goals, achievements, a.stats, a.repo, a.log, motivation.Callbacks{
			OnGoalCompleted: func(g motivation.Goal) {
				a.log.Infow("goal completed", "type", g.Type, "target", g.TargetValue)
			},
			OnAchievementUnlocked: func(ach motivation.Achievement) {
				a.log.Infow("achievement unlocked", "name", ach.Name, "points", ach.Points)
			},
			Notify: func(messages []string) {
				for _, msg := range messages {
					fmt.Println(msg)
				}
			},
		})
		engine.Start()
		defer engine.Stop()
	}

	sched := scheduler.New(a.repo, a.plans, a.collector, a.log, scheduler.Config{
		Enabled:              a.cfg.TaskCompletion.Enabled,
		TriggerTime:          a.cfg.TriggerClockTime(),
		TriggerOnStartup:     a.cfg.TaskCompletion.TriggerOnStartup,
		AutoConfirmThreshold: a.cfg.TaskCompletion.AutoConfirmThreshold,
		AutoConfirmAll:       a.cfg.TaskCompletion.AutoConfirmAll,
		RetentionDays:        a.cfg.TaskCompletion.DataRetentionDays,
	}, func(req scheduler.ReviewRequest) {
		a.log.Infow("review pending", "date", req.Date, "records", len(req.Unconfirmed))
		fmt.Printf("%d completion records for %s await review: daylined review %s\n",
			len(req.Unconfirmed), req.Date, req.Date)
	})
	sched.Start()
	defer sched.Stop()

	var smp *sampler.Sampler
	if a.cfg.ActivityTracking.Enabled {
		smp = sampler.New(sampler.NewPlatformProbe(), a.repo, a.log, sampler.Config{
			PollInterval:      time.Duration(a.cfg.ActivityTracking.PollingIntervalSec) * time.Second,
			MinSessionSeconds: a.cfg.ActivityTracking.MinSessionSec,
			RetentionDays:     a.cfg.ActivityTracking.DataRetentionDays,
		})
		smp.Start()
		defer smp.Stop()
	}

	a.log.Infow("daylined running",
		"activity_tracking", a.cfg.ActivityTracking.Enabled,
		"task_completion", a.cfg.TaskCompletion.Enabled,
		"motivation", a.cfg.Motivation.Enabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	a.log.Infow("shutting down", "signal", sig.String())
	return nil
}
