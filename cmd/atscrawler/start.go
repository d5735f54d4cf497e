package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/metrics"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduled scanner daemon",
	Long:  "Runs the pipeline on the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Schedule == "" {
		logger.Error("schedule is required for the start command (cron expression in config)")
		os.Exit(1)
	}

	collector := metrics.NewCollector(logger)
	p, closeStore, err := buildPipeline(cfg, collector, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Single-flight: a run that overruns its slot makes the next tick skip.
	var running atomic.Bool
	scan := func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous run still in progress, skipping this tick")
			return
		}
		defer running.Store(false)

		if _, err := p.Run(ctx); err != nil {
			logger.Error("run failed", "error", err)
		}
		collector.Report()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, scan); err != nil {
		logger.Error("invalid schedule", "schedule", cfg.Schedule, "error", err)
		os.Exit(1)
	}

	logger.Info("scheduler started", "schedule", cfg.Schedule)
	c.Start()

	<-ctx.Done()
	logger.Info("shutting down, waiting for in-flight run")
	<-c.Stop().Done()

	logger.Info("goodbye")
	return nil
}
