package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform one full scan and exit",
	Long:  "Fetches all configured boards, qualifies new postings, delivers the digest, and exits.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"companies", cfg.Sources.Total(),
		"concurrency", cfg.Fetch.Concurrency,
		"dedup", cfg.Dedup.Backend,
		"delivery", cfg.Delivery.Type,
		"ai", cfg.AI.Enabled,
	)

	collector := metrics.NewCollector(logger)
	p, closeStore, err := buildPipeline(cfg, collector, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := p.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		collector.Report()
		os.Exit(1)
	}

	collector.Report()
	return nil
}
