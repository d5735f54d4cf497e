package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/config"
	"github.com/SamDev98/ats-crawler/internal/delivery"
	"github.com/SamDev98/ats-crawler/internal/enhance"
	"github.com/SamDev98/ats-crawler/internal/model"
	"github.com/SamDev98/ats-crawler/internal/pipeline"
	"github.com/SamDev98/ats-crawler/internal/rules"
	"github.com/SamDev98/ats-crawler/internal/scoring"
	"github.com/SamDev98/ats-crawler/internal/source"
	"github.com/SamDev98/ats-crawler/internal/store"
	"github.com/SamDev98/ats-crawler/internal/textmatch"
)

var (
	cfgPath     string
	profilePath string
	debug       bool
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "atscrawler",
	Short: "Job board crawler — scan, score, deliver",
	Long:  "atscrawler scans ATS job boards, qualifies postings against your rules, and delivers a scored digest.",
	// Default to `run` so that `atscrawler` with no args performs one scan.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: ATSCRAWLER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "profile.json", "path to preference profile (missing file is ignored)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "qualify and print postings without delivering or recording them")
}

// loadConfig resolves the config path, parses it, and applies the optional
// preference profile on top.
// Priority: explicit path arg > ATSCRAWLER_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("ATSCRAWLER_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	profile.Apply(cfg)
	return cfg, nil
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// buildSources instantiates one source per ATS that has companies configured.
func buildSources(cfg *config.Config, client *source.Client) []model.Source {
	var sources []model.Source
	add := func(s model.Source) {
		if len(s.Companies()) > 0 {
			sources = append(sources, s)
		}
	}
	add(source.NewGreenhouse(client, cfg.Sources.Greenhouse))
	add(source.NewLever(client, cfg.Sources.Lever))
	add(source.NewAshby(client, cfg.Sources.Ashby))
	add(source.NewWorkable(client, cfg.Sources.Workable))
	add(source.NewSmartRecruiters(client, cfg.Sources.SmartRecruiters))
	add(source.NewRecruitee(client, cfg.Sources.Recruitee))
	add(source.NewTeamtailor(client, cfg.Sources.Teamtailor))
	add(source.NewBambooHR(client, cfg.Sources.BambooHR))
	add(source.NewComeet(client, cfg.Sources.Comeet))
	add(source.NewHomerun(client, cfg.Sources.Homerun))
	return sources
}

func buildOrchestrators(cfg *config.Config, sources []model.Source, m model.Metrics, logger *slog.Logger) []*source.Orchestrator {
	orchestrators := make([]*source.Orchestrator, 0, len(sources))
	for _, s := range sources {
		orch := source.NewOrchestrator(s, m, logger,
			cfg.Fetch.ConcurrencyFor(s.Name()), cfg.Fetch.DispatchDelay)
		orchestrators = append(orchestrators, orch)
		logger.Info("registered source", "source", s.Name(), "companies", len(s.Companies()))
	}
	return orchestrators
}

// setupStore opens the configured dedup backend. The caller owns Close.
func setupStore(cfg *config.Config, logger *slog.Logger) (model.SentStore, func(), error) {
	switch cfg.Dedup.Backend {
	case "redis":
		r, err := store.NewRedisStore(cfg.Dedup.Redis.Addr, cfg.Dedup.Redis.Password, cfg.Dedup.Redis.DB, cfg.Dedup.Retention)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis dedup store", "addr", cfg.Dedup.Redis.Addr)
		return r, func() { r.Close() }, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Dedup.Path, cfg.Dedup.Retention)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}

func setupEnhancer(cfg *config.Config, logger *slog.Logger) model.Enhancer {
	if !cfg.AI.Enabled {
		return enhance.NewNopEnhancer()
	}

	client := &http.Client{Timeout: cfg.AI.Timeout}
	var provider enhance.Provider
	switch cfg.AI.Provider {
	case "gemini":
		provider = enhance.NewGeminiProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, client)
	default:
		provider = enhance.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, client)
	}
	logger.Info("enhancement enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return enhance.NewLLMEnhancer(provider, cfg.AI.MaxJobs, logger)
}

func setupDelivery(cfg *config.Config, logger *slog.Logger) model.Delivery {
	switch cfg.Delivery.Type {
	case "email":
		e := cfg.Delivery.Email
		logger.Info("using email delivery", "to", e.To)
		return delivery.NewEmailDelivery(e.Host, e.Port, e.Username, e.Password, e.From, e.To, logger)
	default:
		return delivery.NewLogDelivery(logger)
	}
}

// buildPipeline wires the full run from config. The returned cleanup closes
// the store.
func buildPipeline(cfg *config.Config, m model.Metrics, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	client := source.NewClient(httpClient, m)

	sources := buildSources(cfg, client)
	orchestrators := buildOrchestrators(cfg, sources, m, logger)

	effectiveDryRun := dryRun || cfg.DryRun
	if effectiveDryRun {
		logger.Info("dry-run mode enabled, nothing will be delivered or recorded")
	}

	// Dry runs still read the real store: the report must show what a real
	// run would deliver, so already-sent postings are filtered out.
	sentStore, closer, err := setupStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cache := textmatch.NewCache()
	rulesEngine := rules.NewEngine(rules.Config{
		BlockTerms:         cfg.Rules.BlockTerms,
		DomainKeywords:     cfg.Rules.DomainKeywords,
		PrimaryKeyword:     cfg.Rules.PrimaryKeyword,
		TargetTechnologies: cfg.Rules.TargetTechnologies,
		RemoteIndicators:   cfg.Rules.RemoteIndicators,
		ContractIndicators: cfg.Rules.ContractIndicators,
	}, cache)
	scorer := scoring.NewEngine(scoring.Config{
		Threshold:      cfg.Scoring.Threshold,
		Weights:        cfg.Scoring.Weights,
		PrimaryKeyword: cfg.Rules.PrimaryKeyword,
		SeniorityTerms: cfg.Scoring.SeniorityTerms,
		RegionTerms:    cfg.Scoring.RegionTerms,
		TechStack:      cfg.Scoring.TechStack,
		TechStackCap:   cfg.Scoring.TechStackCap,
	}, cache)

	p := pipeline.New(
		orchestrators,
		sentStore,
		rulesEngine,
		scorer,
		setupEnhancer(cfg, logger),
		setupDelivery(cfg, logger),
		m,
		logger,
		effectiveDryRun,
	)
	return p, closer, nil
}
