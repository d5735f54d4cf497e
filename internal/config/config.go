package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the crawler.
type Config struct {
	Sources  SourcesConfig
	Fetch    FetchConfig
	Rules    RulesConfig
	Scoring  ScoringConfig
	Dedup    DedupConfig
	Delivery DeliveryConfig
	AI       AIConfig
	Schedule string // cron expression for the start command
	DryRun   bool
}

// SourcesConfig lists the company boards per ATS. Comeet entries are
// "uid:token" pairs.
type SourcesConfig struct {
	Greenhouse      []string `yaml:"greenhouse"`
	Lever           []string `yaml:"lever"`
	Ashby           []string `yaml:"ashby"`
	Workable        []string `yaml:"workable"`
	SmartRecruiters []string `yaml:"smartrecruiters"`
	Recruitee       []string `yaml:"recruitee"`
	Teamtailor      []string `yaml:"teamtailor"`
	BambooHR        []string `yaml:"bamboohr"`
	Comeet          []string `yaml:"comeet"`
	Homerun         []string `yaml:"homerun"`
}

// Total returns the number of configured companies across all sources.
func (s SourcesConfig) Total() int {
	return len(s.Greenhouse) + len(s.Lever) + len(s.Ashby) + len(s.Workable) +
		len(s.SmartRecruiters) + len(s.Recruitee) + len(s.Teamtailor) +
		len(s.BambooHR) + len(s.Comeet) + len(s.Homerun)
}

// FetchConfig controls the per-source fan-out.
type FetchConfig struct {
	Concurrency         int            // in-flight companies per source
	ConcurrencyOverride map[string]int // per-source overrides, keyed by source name
	DispatchDelay       time.Duration  // gap between dispatches for rate-sensitive upstreams
	Timeout             time.Duration  // per-request HTTP timeout
}

// ConcurrencyFor returns the cap for the given source, falling back to the
// shared default.
func (f FetchConfig) ConcurrencyFor(source string) int {
	if c, ok := f.ConcurrencyOverride[source]; ok {
		return c
	}
	return f.Concurrency
}

// RulesConfig holds the eligibility rule data.
type RulesConfig struct {
	BlockTerms         []string `yaml:"block_terms"`
	DomainKeywords     []string `yaml:"domain_keywords"`
	PrimaryKeyword     string   `yaml:"primary_keyword"`
	TargetTechnologies []string `yaml:"target_technologies"`
	RemoteIndicators   []string `yaml:"remote_indicators"`
	ContractIndicators []string `yaml:"contract_indicators"`
}

// ScoringConfig holds scoring weights and keyword data.
type ScoringConfig struct {
	Threshold      int            `yaml:"threshold"`
	Weights        map[string]int `yaml:"weights"`
	SeniorityTerms []string       `yaml:"seniority_terms"`
	RegionTerms    []string       `yaml:"region_terms"`
	TechStack      map[string]int `yaml:"tech_stack"`
	TechStackCap   int            `yaml:"tech_stack_cap"`
}

// DedupConfig selects and configures the sent-jobs store.
type DedupConfig struct {
	Backend   string // "sqlite" (default) or "redis"
	Path      string // sqlite database path
	Redis     RedisConfig
	Retention time.Duration
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DeliveryConfig selects the digest delivery: "log" (default) or "email".
type DeliveryConfig struct {
	Type  string      `yaml:"type"`
	Email EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// AIConfig controls the optional enhancement layer.
type AIConfig struct {
	Enabled  bool
	Provider string // "openai" (covers groq/openrouter via base_url) or "gemini"
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
	MaxJobs  int // cap enhancement to the top N postings; 0 = all
}

const (
	defaultConcurrency   = 3
	defaultDispatchDelay = 300 * time.Millisecond
	defaultFetchTimeout  = 30 * time.Second
	defaultRetentionDays = 30
	defaultSQLitePath    = "sent_jobs.db"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultAITimeout     = 30 * time.Second
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as
// strings).
type rawConfig struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Fetch    rawFetchConfig `yaml:"fetch"`
	Rules    RulesConfig    `yaml:"rules"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Dedup    rawDedupConfig `yaml:"dedup"`
	Delivery DeliveryConfig `yaml:"delivery"`
	AI       rawAIConfig    `yaml:"ai"`
	Schedule string         `yaml:"schedule"`
	DryRun   bool           `yaml:"dry_run"`
}

type rawFetchConfig struct {
	Concurrency         int            `yaml:"concurrency"`
	ConcurrencyOverride map[string]int `yaml:"concurrency_override"`
	DispatchDelay       string         `yaml:"dispatch_delay"`
	Timeout             string         `yaml:"timeout"`
}

type rawDedupConfig struct {
	Backend       string      `yaml:"backend"`
	Path          string      `yaml:"path"`
	Redis         RedisConfig `yaml:"redis"`
	RetentionDays int         `yaml:"retention_days"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
	MaxJobs  int    `yaml:"max_jobs"`
}

// Load reads and parses the YAML config at path, applies defaults, validates,
// and returns the typed Config. Environment variables in the file are
// expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	concurrency := raw.Fetch.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	dispatchDelay := defaultDispatchDelay
	if raw.Fetch.DispatchDelay != "" {
		d, err := time.ParseDuration(raw.Fetch.DispatchDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.dispatch_delay %q: %w", raw.Fetch.DispatchDelay, err)
		}
		dispatchDelay = d
	}

	timeout := defaultFetchTimeout
	if raw.Fetch.Timeout != "" {
		d, err := time.ParseDuration(raw.Fetch.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.timeout %q: %w", raw.Fetch.Timeout, err)
		}
		timeout = d
	}

	retentionDays := raw.Dedup.RetentionDays
	if retentionDays == 0 {
		retentionDays = defaultRetentionDays
	}

	dedupBackend := raw.Dedup.Backend
	if dedupBackend == "" {
		dedupBackend = "sqlite"
	}

	dedupPath := raw.Dedup.Path
	if dedupPath == "" {
		dedupPath = defaultSQLitePath
	}

	aiTimeout := defaultAITimeout
	if raw.AI.Timeout != "" {
		d, err := time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
		aiTimeout = d
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" && raw.AI.Provider != "gemini" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	return &Config{
		Sources: raw.Sources,
		Fetch: FetchConfig{
			Concurrency:         concurrency,
			ConcurrencyOverride: raw.Fetch.ConcurrencyOverride,
			DispatchDelay:       dispatchDelay,
			Timeout:             timeout,
		},
		Rules:   raw.Rules,
		Scoring: raw.Scoring,
		Dedup: DedupConfig{
			Backend:   dedupBackend,
			Path:      dedupPath,
			Redis:     raw.Dedup.Redis,
			Retention: time.Duration(retentionDays) * 24 * time.Hour,
		},
		Delivery: raw.Delivery,
		AI: AIConfig{
			Enabled:  raw.AI.Enabled,
			Provider: raw.AI.Provider,
			BaseURL:  aiBaseURL,
			Model:    raw.AI.Model,
			APIKey:   raw.AI.APIKey,
			Timeout:  aiTimeout,
			MaxJobs:  raw.AI.MaxJobs,
		},
		Schedule: raw.Schedule,
		DryRun:   raw.DryRun,
	}, nil
}

func validate(cfg *Config) error {
	if cfg.Sources.Total() == 0 {
		return fmt.Errorf("at least one company must be configured under sources")
	}

	if cfg.Fetch.Concurrency < 1 || cfg.Fetch.Concurrency > 20 {
		return fmt.Errorf("fetch.concurrency must be between 1 and 20, got %d", cfg.Fetch.Concurrency)
	}
	for source, c := range cfg.Fetch.ConcurrencyOverride {
		if c < 1 || c > 20 {
			return fmt.Errorf("fetch.concurrency_override[%q] must be between 1 and 20, got %d", source, c)
		}
	}

	if cfg.Rules.PrimaryKeyword == "" {
		return fmt.Errorf("rules.primary_keyword is required")
	}

	switch cfg.Dedup.Backend {
	case "sqlite":
	case "redis":
		if cfg.Dedup.Redis.Addr == "" {
			return fmt.Errorf("dedup.redis.addr is required when dedup.backend is \"redis\"")
		}
	default:
		return fmt.Errorf("dedup.backend must be \"sqlite\" or \"redis\", got %q", cfg.Dedup.Backend)
	}

	switch cfg.Delivery.Type {
	case "", "log":
	case "email":
		e := cfg.Delivery.Email
		if e.Host == "" || e.Port == 0 || e.From == "" || e.To == "" {
			return fmt.Errorf("delivery.email requires host, port, from, and to")
		}
	default:
		return fmt.Errorf("delivery.type must be \"log\" or \"email\", got %q", cfg.Delivery.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.Provider != "openai" && cfg.AI.Provider != "gemini" {
			return fmt.Errorf("ai.provider must be \"openai\" or \"gemini\", got %q", cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
