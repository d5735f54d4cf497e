package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recently sent postings",
	Long:  "Opens an interactive browser over the sent-jobs store, newest first.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "number of records to load")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	records, err := sentStore.RecentRecords(historyLimit)
	if err != nil {
		logger.Error("failed to load history", "error", err)
		os.Exit(1)
	}

	return history.Run(records)
}
