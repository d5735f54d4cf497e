package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Check whether a posting URL was already sent",
	Long:  "Looks the URL up in the dedup store after the same normalization the pipeline applies.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	url := rules.CleanURL(args[0])
	sent, err := sentStore.IsAlreadySent(url)
	if err != nil {
		return fmt.Errorf("check %s: %w", url, err)
	}

	if sent {
		fmt.Printf("%s\nalready sent\n", url)
	} else {
		fmt.Printf("%s\nnot sent yet\n", url)
	}
	return nil
}
