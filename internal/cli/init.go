package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dayline-app/dayline/internal/config"
	"github.com/dayline-app/dayline/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and create the data directory",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	cfg := config.Default()
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.PlansDir, 0o755); err != nil {
		return fmt.Errorf("create plans dir: %w", err)
	}

	// Opening the store runs migrations and seeds the category table.
	repo, err := storage.OpenSQLite(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	repo.Close()

	fmt.Printf("Initialized daylined\n")
	fmt.Printf("  config:   %s\n", configPath)
	fmt.Printf("  database: %s\n", cfg.DatabasePath())
	fmt.Printf("  plans:    %s\n", cfg.PlansDir)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Drop day plans into %s (e.g. %s)\n", cfg.PlansDir, filepath.Join(cfg.PlansDir, "2026-01-02.yaml"))
	fmt.Println("  2. Run: daylined run")
	fmt.Println("  3. Review inferred completions: daylined review")
	return nil
}
