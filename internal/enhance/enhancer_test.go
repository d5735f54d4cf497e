package enhance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/SamDev98/ats-crawler/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	responses map[string]string // matched by substring of the prompt
	err       error
	calls     int
}

func (p *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	for marker, response := range p.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "Verdict: MAYBE", nil
}

func TestEnhanceAllAnnotatesJobs(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"Acme": "Strong backend match.\nVerdict: APPLY",
	}}
	e := NewLLMEnhancer(provider, 0, discardLogger())

	jobs := []model.Job{
		{Title: "Senior Java Developer", Company: "Acme", Description: "Java."},
	}
	enhanced, err := e.EnhanceAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("EnhanceAll: %v", err)
	}
	if enhanced[0].Analysis != "Strong backend match.\nVerdict: APPLY" {
		t.Errorf("unexpected analysis: %q", enhanced[0].Analysis)
	}
	// The input slice must not be mutated.
	if jobs[0].Analysis != "" {
		t.Error("EnhanceAll mutated its input")
	}
}

func TestEnhanceAllMaxJobsCapsCalls(t *testing.T) {
	provider := &fakeProvider{}
	e := NewLLMEnhancer(provider, 2, discardLogger())

	jobs := []model.Job{
		{Title: "A", Company: "One"},
		{Title: "B", Company: "Two"},
		{Title: "C", Company: "Three"},
	}
	enhanced, err := e.EnhanceAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("EnhanceAll: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", provider.calls)
	}
	if enhanced[2].Analysis != "" {
		t.Errorf("job beyond the cap must stay unannotated, got %q", enhanced[2].Analysis)
	}
	if len(enhanced) != 3 {
		t.Errorf("capping must not drop jobs, got %d", len(enhanced))
	}
}

func TestEnhanceAllPerJobFailureIsSkipped(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	e := NewLLMEnhancer(provider, 0, discardLogger())

	jobs := []model.Job{{Title: "A", Company: "One"}}
	enhanced, err := e.EnhanceAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("per-job failures must not fail the batch: %v", err)
	}
	if enhanced[0].Analysis != "" {
		t.Errorf("failed job must stay unannotated, got %q", enhanced[0].Analysis)
	}
}

func TestDiscarded(t *testing.T) {
	tests := []struct {
		analysis string
		want     bool
	}{
		{"Looks great.\nVerdict: APPLY", false},
		{"Requires US work authorization.\nVerdict: DISCARD", true},
		{"", false},
		{"Verdict: MAYBE", false},
	}
	for _, tt := range tests {
		if got := Discarded(tt.analysis); got != tt.want {
			t.Errorf("Discarded(%q) = %v, want %v", tt.analysis, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 7000)
	if got := truncate(long, 6000); len(got) != 6000 {
		t.Errorf("truncate length = %d, want 6000", len(got))
	}
	if got := truncate("short", 6000); got != "short" {
		t.Errorf("truncate(%q) = %q", "short", got)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// "é" is 2 bytes; a cut at 5 would split the third rune.
	got := truncate("aéééé", 5)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if got != "aéé" {
		t.Errorf("truncate = %q, want %q", got, "aéé")
	}

	long := strings.Repeat("日", 3000) // 3 bytes each, 9000 total
	cut := truncate(long, 6000)
	if !utf8.ValidString(cut) {
		t.Error("truncate produced invalid UTF-8 on multibyte input")
	}
	if len(cut) > 6000 {
		t.Errorf("truncate length = %d, want at most 6000", len(cut))
	}
}

func TestNopEnhancerDisabled(t *testing.T) {
	e := NewNopEnhancer()
	if e.Enabled() {
		t.Error("NopEnhancer must report disabled")
	}
	jobs := []model.Job{{Title: "A"}}
	out, err := e.EnhanceAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("EnhanceAll: %v", err)
	}
	if len(out) != 1 || out[0].Title != "A" {
		t.Errorf("NopEnhancer must pass jobs through: %+v", out)
	}
}
