// Package scoring implements the additive weighted scorer applied to
// postings that passed the eligibility gate.
package scoring

import (
	"strings"

	"github.com/SamDev98/ats-crawler/internal/model"
	"github.com/SamDev98/ats-crawler/internal/rules"
	"github.com/SamDev98/ats-crawler/internal/textmatch"
)

// Signal names used as breakdown keys.
const (
	SignalKeywordInTitle = "java_in_title"
	SignalSeniorLevel    = "senior_level"
	SignalRemoteExplicit = "remote_explicit"
	SignalNoUSOnly       = "no_us_only"
	SignalContractB2B    = "contract_b2b"
	SignalRegionBoost    = "latam_brazil_boost"
	SignalTechStack      = "tech_stack"
)

// Default weights, used when no override is configured.
const (
	defaultThreshold      = 70
	defaultKeywordInTitle = 20
	defaultSeniorLevel    = 10
	defaultRemoteExplicit = 15
	defaultNoUSOnly       = 20
	defaultContractB2B    = 15
	defaultRegionBoost    = 10
	defaultTechStackCap   = 20
)

// maxScore caps the grand total.
const maxScore = 100

var defaultSeniorityTerms = []string{"senior", "sr", "lead", "staff", "principal"}

// defaultRegionTerms back the region boost when no locations are configured.
var defaultRegionTerms = []string{
	"brazil", "brasil", "latam", "latin america", "south america",
	"são paulo", "sao paulo", "rio de janeiro", "curitiba", "belo horizonte",
	"florianopolis", "remoto brasil", "remote brazil",
}

// Config carries the scorer's data: per-installation weight overrides fall
// back to the compiled-in defaults above.
type Config struct {
	Threshold      int
	Weights        map[string]int // overrides keyed by signal name
	PrimaryKeyword string         // keyword scored when present in the title
	SeniorityTerms []string
	RegionTerms    []string
	TechStack      map[string]int // keyword -> weight, summed then capped
	TechStackCap   int
}

// Result of one scoring pass. Produced once per posting.
type Result struct {
	Score       int
	ShouldApply bool
	Breakdown   map[string]int
}

// Engine computes applicability scores. Pure and safe for concurrent use.
type Engine struct {
	cfg   Config
	cache *textmatch.Cache
}

func NewEngine(cfg Config, cache *textmatch.Cache) *Engine {
	return &Engine{cfg: cfg, cache: cache}
}

// Calculate sums the configured signal weights for every signal whose
// predicate holds, records each under its name in the breakdown, and caps
// the total at 100. Calling it twice on the same inputs yields identical
// results.
func (e *Engine) Calculate(job model.Job, eligibility rules.Result) Result {
	breakdown := make(map[string]int)
	total := 0

	title := strings.ToLower(job.Title)
	description := strings.ToLower(job.Description)
	combined := title + " " + description

	add := func(signal string, points int) {
		breakdown[signal] = points
		total += points
	}

	if e.cache.ContainsWord(title, e.cfg.PrimaryKeyword) {
		add(SignalKeywordInTitle, e.weight(SignalKeywordInTitle, defaultKeywordInTitle))
	}

	if e.hasSeniorityTerm(title) {
		add(SignalSeniorLevel, e.weight(SignalSeniorLevel, defaultSeniorLevel))
	}

	if eligibility.Remote {
		add(SignalRemoteExplicit, e.weight(SignalRemoteExplicit, defaultRemoteExplicit))
	}

	// Reaching the scorer means every gate passed; effectively a constant bonus.
	if eligibility.Eligible {
		add(SignalNoUSOnly, e.weight(SignalNoUSOnly, defaultNoUSOnly))
	}

	if eligibility.Contract {
		add(SignalContractB2B, e.weight(SignalContractB2B, defaultContractB2B))
	}

	if e.matchesRegion(job) {
		add(SignalRegionBoost, e.weight(SignalRegionBoost, defaultRegionBoost))
	}

	if techScore := e.techStackScore(combined); techScore > 0 {
		limit := e.weight("tech_stack_max", e.techStackCap())
		if techScore > limit {
			techScore = limit
		}
		add(SignalTechStack, techScore)
	}

	if total > maxScore {
		total = maxScore
	}

	return Result{
		Score:       total,
		ShouldApply: total >= e.Threshold(),
		Breakdown:   breakdown,
	}
}

// Threshold returns the configured score threshold, falling back to the
// compiled-in default.
func (e *Engine) Threshold() int {
	if e.cfg.Threshold > 0 {
		return e.cfg.Threshold
	}
	return defaultThreshold
}

func (e *Engine) weight(signal string, fallback int) int {
	if w, ok := e.cfg.Weights[signal]; ok {
		return w
	}
	return fallback
}

func (e *Engine) hasSeniorityTerm(title string) bool {
	terms := e.cfg.SeniorityTerms
	if len(terms) == 0 {
		terms = defaultSeniorityTerms
	}
	for _, term := range terms {
		if e.cache.ContainsWord(title, term) {
			return true
		}
	}
	return false
}

// matchesRegion checks the location and description against the configured
// target-region phrases (plain substring match).
func (e *Engine) matchesRegion(job model.Job) bool {
	terms := e.cfg.RegionTerms
	if len(terms) == 0 {
		terms = defaultRegionTerms
	}
	for _, term := range terms {
		if textmatch.ContainsPhrase(job.Location, term) || textmatch.ContainsPhrase(job.Description, term) {
			return true
		}
	}
	return false
}

// techStackScore sums the weights of every configured tech keyword present
// in the combined text. The cap is applied by the caller.
func (e *Engine) techStackScore(text string) int {
	score := 0
	for keyword, points := range e.cfg.TechStack {
		if e.cache.ContainsWord(text, keyword) {
			score += points
		}
	}
	return score
}

func (e *Engine) techStackCap() int {
	if e.cfg.TechStackCap > 0 {
		return e.cfg.TechStackCap
	}
	return defaultTechStackCap
}
