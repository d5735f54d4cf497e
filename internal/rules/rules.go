// Package rules implements the eligibility gate applied to every posting
// before scoring.
package rules

import (
	"regexp"
	"strings"

	"github.com/SamDev98/ats-crawler/internal/model"
	"github.com/SamDev98/ats-crawler/internal/textmatch"
)

// Config holds the rule data the engine evaluates. All entries are data, not
// algorithm: they come from external configuration.
type Config struct {
	BlockTerms         []string
	DomainKeywords     []string // matched word-bounded in the title
	PrimaryKeyword     string   // matched word-bounded in the description as a last resort
	TargetTechnologies []string // matched as phrases in title or description
	RemoteIndicators   []string
	ContractIndicators []string
}

// Result is the outcome of one eligibility check. Produced once per posting
// and consumed immediately by the scorer; never persisted.
type Result struct {
	Eligible       bool
	BlockReason    string // set only when not eligible
	Remote         bool
	Contract       bool
	DomainRelevant bool
}

func blocked(reason string) Result {
	return Result{Eligible: false, BlockReason: reason}
}

// Engine evaluates eligibility rules. It is a pure evaluator: no I/O, safe
// for concurrent use (the pattern cache is concurrency-safe).
type Engine struct {
	cfg   Config
	cache *textmatch.Cache
}

func NewEngine(cfg Config, cache *textmatch.Cache) *Engine {
	return &Engine{cfg: cfg, cache: cache}
}

// Check runs the rule sequence against a posting:
// block terms first (first match short-circuits), then domain relevance,
// then remote/contract indicator scans. A block-term match always wins; the
// remote/contract flags stay false on any blocked result.
func (e *Engine) Check(job model.Job) Result {
	title := strings.ToLower(job.Title)
	description := strings.ToLower(job.Description)
	combined := title + " " + description

	for _, term := range e.cfg.BlockTerms {
		if textmatch.ContainsPhrase(combined, term) {
			return blocked(term)
		}
	}

	if !e.domainRelevant(title, description) {
		return blocked("not domain-relevant")
	}

	return Result{
		Eligible:       true,
		Remote:         e.anyPhrase(combined, e.cfg.RemoteIndicators),
		Contract:       e.anyPhrase(combined, e.cfg.ContractIndicators),
		DomainRelevant: true,
	}
}

// domainRelevant checks, in order: target technology phrases in title or
// description, domain keywords word-bounded in the title, and finally the
// primary keyword word-bounded in the description. The checks are OR'd.
func (e *Engine) domainRelevant(title, description string) bool {
	for _, tech := range e.cfg.TargetTechnologies {
		if textmatch.ContainsPhrase(title, tech) || textmatch.ContainsPhrase(description, tech) {
			return true
		}
	}

	for _, kw := range e.cfg.DomainKeywords {
		if e.cache.ContainsWord(title, kw) {
			return true
		}
	}

	return e.cache.ContainsWord(description, e.cfg.PrimaryKeyword)
}

func (e *Engine) anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if textmatch.ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	zeroWidthRegex  = regexp.MustCompile("[\u200B-\u200D\uFEFF]")
)

// CleanURL normalizes a posting URL before it is used as the dedup identity
// key: strips whitespace and zero-width characters and ensures an http(s)
// scheme so the link survives email clients.
func CleanURL(url string) string {
	cleaned := whitespaceRegex.ReplaceAllString(strings.TrimSpace(url), "")
	cleaned = zeroWidthRegex.ReplaceAllString(cleaned, "")
	if cleaned != "" && !strings.HasPrefix(cleaned, "http") {
		cleaned = "https://" + cleaned
	}
	return cleaned
}
