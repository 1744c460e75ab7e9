package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dayline-app/dayline/internal/aiclient"
	"github.com/dayline-app/dayline/internal/behavior"
	"github.com/dayline-app/dayline/internal/config"
	"github.com/dayline-app/dayline/internal/inference"
	"github.com/dayline-app/dayline/internal/logging"
	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/motivation"
	"github.com/dayline-app/dayline/internal/schedule"
	"github.com/dayline-app/dayline/internal/stats"
	"github.com/dayline-app/dayline/internal/storage"
	"github.com/dayline-app/dayline/internal/update"
)

// app bundles the daemon's long-lived services for the CLI commands.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	repo      *storage.SQLiteRepository
	behavior  *behavior.Store
	plans     *schedule.FileProvider
	collector *inference.Collector
	stats     *stats.Service
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	behaviorStore, err := behavior.Open(cfg.BehaviorModelPath())
	if err != nil {
		repo.Close()
		return nil, err
	}
	return &app{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		behavior:  behaviorStore,
		plans:     schedule.NewFileProvider(cfg.PlansDir),
		collector: inference.NewCollector(repo, behaviorStore),
		stats:     stats.NewService(repo),
	}, nil
}

func (a *app) Close() {
	a.repo.Close()
	a.log.Sync()
}

func (a *app) aiClient() *aiclient.Client {
	return aiclient.New(a.cfg.AI.BaseURL,
		aiclient.WithTimeout(time.Duration(a.cfg.AI.TimeoutSec)*time.Second))
}

func (a *app) motivationStores() (*motivation.GoalStore, *motivation.AchievementStore, error) {
	goals, err := motivation.OpenGoals(a.cfg.GoalsPath())
	if err != nil {
		return nil, nil, err
	}
	achievements, err := motivation.OpenAchievements(a.cfg.AchievementsPath())
	if err != nil {
		return nil, nil, err
	}
	return goals, achievements, nil
}

func (a *app) reviewService(poker update.Poker) *update.Service {
	return update.NewService(a.repo, a.behavior, poker, a.stats, a.aiClient(), a.log)
}

// loadConfig falls back to defaults when no config file exists yet.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// dateArg parses an optional date argument, defaulting to today.
func dateArg(args []string) (model.Date, error) {
	if len(args) == 0 {
		return model.Today(), nil
	}
	date := model.Date(args[0])
	if err := date.Validate(); err != nil {
		return "", err
	}
	return date, nil
}
