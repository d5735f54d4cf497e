package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print sent-job counters",
	Long:  "Prints how many postings were delivered today and in total.",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sentStore, closeStore, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := sentStore.CountSentSince(startOfDay)
	if err != nil {
		return fmt.Errorf("count today: %w", err)
	}
	total, err := sentStore.CountTotal()
	if err != nil {
		return fmt.Errorf("count total: %w", err)
	}

	fmt.Printf("sent today: %d\n", today)
	fmt.Printf("sent total: %d\n", total)
	return nil
}
