package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayline-app/dayline/internal/model"
	"github.com/dayline-app/dayline/internal/storage"
)

var categoryIgnore bool

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage app category rules",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List app category rules",
	RunE:  runCategoryList,
}

var categorySetCmd = &cobra.Command{
	Use:   "set <process> <PRODUCTIVE|LEISURE|NEUTRAL|UNKNOWN>",
	Short: "Set the category for a process name",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategorySet,
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rules, err := a.repo.ListAppCategories(context.Background())
	if err != nil {
		return err
	}
	for _, rule := range rules {
		ignored := ""
		if rule.IsIgnored {
			ignored = "  (ignored)"
		}
		fmt.Printf("%-32s %s%s\n", rule.ProcessName, rule.Category, ignored)
	}
	return nil
}

func runCategorySet(cmd *cobra.Command, args []string) error {
	process := strings.ToLower(strings.TrimSpace(args[0]))
	category := model.AppCategory(strings.ToUpper(args[1]))
	if !category.IsValid() {
		return fmt.Errorf("unknown category %q", args[1])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.repo.SetAppCategory(context.Background(), storage.AppCategoryRule{
		ProcessName: process,
		Category:    category,
		IsIgnored:   categoryIgnore,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", process, category)
	return nil
}

func init() {
	categorySetCmd.Flags().BoolVar(&categoryIgnore, "ignore", false, "exclude the process from tracking entirely")
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categorySetCmd)
}
