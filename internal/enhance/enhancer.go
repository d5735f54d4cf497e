// Package enhance annotates qualified postings with LLM-generated analysis.
// Enhancement is best-effort: any failure leaves the posting unchanged, and
// a total failure leaves the whole batch unchanged.
package enhance

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/SamDev98/ats-crawler/internal/model"
)

//go:embed prompts/job_analysis.md
var jobAnalysisPromptRaw string

// jobAnalysisTemplate is parsed once at package init and reused on every call.
var jobAnalysisTemplate = template.Must(template.New("job_analysis").Parse(jobAnalysisPromptRaw))

// discardMarker in an analysis removes the posting from the digest.
const discardMarker = "Verdict: DISCARD"

// Discarded reports whether an analysis carries the discard verdict.
func Discarded(analysis string) bool {
	return strings.Contains(analysis, discardMarker)
}

// LLMEnhancer implements model.Enhancer over an LLM provider.
type LLMEnhancer struct {
	provider Provider
	maxJobs  int // 0 = enhance all qualified postings
	logger   *slog.Logger
}

// NewLLMEnhancer creates an enhancer. maxJobs > 0 caps enhancement to the
// first maxJobs postings; callers pass them sorted by score descending, so
// the cap keeps the top-scored ones.
func NewLLMEnhancer(provider Provider, maxJobs int, logger *slog.Logger) *LLMEnhancer {
	return &LLMEnhancer{
		provider: provider,
		maxJobs:  maxJobs,
		logger:   logger,
	}
}

func (e *LLMEnhancer) Enabled() bool { return true }

// EnhanceAll analyzes each posting in turn. A posting whose analysis fails
// is passed through unchanged; EnhanceAll itself only fails if the prompt
// template cannot render, which would affect every posting equally.
func (e *LLMEnhancer) EnhanceAll(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	limit := len(jobs)
	if e.maxJobs > 0 && e.maxJobs < limit {
		limit = e.maxJobs
	}

	enhanced := make([]model.Job, len(jobs))
	copy(enhanced, jobs)

	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			return enhanced, ctx.Err()
		}
		analysis, err := e.analyze(ctx, enhanced[i])
		if err != nil {
			e.logger.Warn("enhancement failed for posting",
				"title", enhanced[i].Title,
				"company", enhanced[i].Company,
				"error", err,
			)
			continue
		}
		enhanced[i].Analysis = analysis
	}
	return enhanced, nil
}

func (e *LLMEnhancer) analyze(ctx context.Context, job model.Job) (string, error) {
	var prompt bytes.Buffer
	if err := jobAnalysisTemplate.Execute(&prompt, struct {
		Title       string
		Company     string
		Location    string
		Description string
	}{
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Description: truncate(job.Description, 6000),
	}); err != nil {
		return "", err
	}
	return e.provider.Complete(ctx, prompt.String())
}

// truncate keeps prompts within provider context limits. The cut is backed
// off to a rune boundary so the prompt stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// NopEnhancer is used when AI enhancement is disabled.
type NopEnhancer struct{}

func NewNopEnhancer() *NopEnhancer { return &NopEnhancer{} }

func (NopEnhancer) Enabled() bool { return false }

func (NopEnhancer) EnhanceAll(_ context.Context, jobs []model.Job) ([]model.Job, error) {
	return jobs, nil
}
