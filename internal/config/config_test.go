package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Fetch.Concurrency != 3 {
		t.Errorf("default concurrency = %d, want 3", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.DispatchDelay != 300*time.Millisecond {
		t.Errorf("default dispatch delay = %v", cfg.Fetch.DispatchDelay)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Dedup.Backend != "sqlite" {
		t.Errorf("default dedup backend = %q", cfg.Dedup.Backend)
	}
	if cfg.Dedup.Path != "sent_jobs.db" {
		t.Errorf("default sqlite path = %q", cfg.Dedup.Path)
	}
	if cfg.Dedup.Retention != 30*24*time.Hour {
		t.Errorf("default retention = %v", cfg.Dedup.Retention)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sources:
  lever: [acme]
fetch:
  concurrency: 5
  dispatch_delay: 500ms
  timeout: 10s
rules:
  primary_keyword: java
dedup:
  retention_days: 7
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Fetch.Concurrency != 5 {
		t.Errorf("concurrency = %d, want 5", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.DispatchDelay != 500*time.Millisecond {
		t.Errorf("dispatch delay = %v", cfg.Fetch.DispatchDelay)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Dedup.Retention != 7*24*time.Hour {
		t.Errorf("retention = %v", cfg.Dedup.Retention)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_SMTP_PASSWORD", "hunter2")

	cfg, err := Load(writeConfig(t, `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
delivery:
  type: email
  email:
    host: smtp.example.com
    port: 587
    username: bot
    password: ${TEST_SMTP_PASSWORD}
    from: bot@example.com
    to: me@example.com
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Delivery.Email.Password != "hunter2" {
		t.Errorf("password = %q, want env value", cfg.Delivery.Email.Password)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no sources",
			content: `
rules:
  primary_keyword: java
`,
		},
		{
			name: "missing primary keyword",
			content: `
sources:
  greenhouse: [acme]
`,
		},
		{
			name: "concurrency out of range",
			content: `
sources:
  greenhouse: [acme]
fetch:
  concurrency: 50
rules:
  primary_keyword: java
`,
		},
		{
			name: "unknown dedup backend",
			content: `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
dedup:
  backend: dynamo
`,
		},
		{
			name: "redis backend without addr",
			content: `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
dedup:
  backend: redis
`,
		},
		{
			name: "email delivery without host",
			content: `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
delivery:
  type: email
`,
		},
		{
			name: "ai enabled without api key",
			content: `
sources:
  greenhouse: [acme]
rules:
  primary_keyword: java
ai:
  enabled: true
  provider: openai
  model: gpt-4o-mini
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConcurrencyFor(t *testing.T) {
	f := FetchConfig{
		Concurrency:         3,
		ConcurrencyOverride: map[string]int{"BambooHR": 1},
	}
	if got := f.ConcurrencyFor("BambooHR"); got != 1 {
		t.Errorf("override = %d, want 1", got)
	}
	if got := f.ConcurrencyFor("Lever"); got != 3 {
		t.Errorf("fallback = %d, want 3", got)
	}
}

func TestProfileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(`{
		"name": "test",
		"target_technologies": ["kotlin"],
		"scoring": {"threshold": 60, "weights": {"senior_level": 25}},
		"tech_stack_weights": {"kafka": 12}
	}`), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}

	cfg := &Config{}
	cfg.Rules.TargetTechnologies = []string{"java"}
	cfg.Scoring.Threshold = 70
	profile.Apply(cfg)

	if len(cfg.Rules.TargetTechnologies) != 1 || cfg.Rules.TargetTechnologies[0] != "kotlin" {
		t.Errorf("target technologies not overridden: %v", cfg.Rules.TargetTechnologies)
	}
	if cfg.Scoring.Threshold != 60 {
		t.Errorf("threshold = %d, want 60", cfg.Scoring.Threshold)
	}
	if cfg.Scoring.Weights["senior_level"] != 25 {
		t.Errorf("weights not merged: %v", cfg.Scoring.Weights)
	}
	if cfg.Scoring.TechStack["kafka"] != 12 {
		t.Errorf("tech stack not overridden: %v", cfg.Scoring.TechStack)
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing profile must not error: %v", err)
	}
	if profile != nil {
		t.Error("expected nil profile for a missing file")
	}

	// Applying a nil profile is a no-op.
	cfg := &Config{}
	profile.Apply(cfg)
}
