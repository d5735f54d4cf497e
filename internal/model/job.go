package model

import (
	"context"
	"time"
)

// Job is the unified representation of a posting from any ATS source.
type Job struct {
	Title        string
	URL          string // identity key for deduplication
	Company      string
	Location     string
	Description  string // HTML stripped to plain text
	Source       string // ATS name (Lever, Greenhouse, etc.)
	DiscoveredAt time.Time

	// Eligibility flags, set during pipeline processing.
	Remote   bool
	Contract bool

	// Scoring, set during pipeline processing.
	Score          int            // 0–100, capped sum of breakdown values
	ScoreBreakdown map[string]int // signal name -> points

	// Optional AI analysis text, populated by an Enhancer.
	Analysis string
}

// SentRecord is the persisted trace of a delivered posting.
// Written only after confirmed delivery; never updated.
type SentRecord struct {
	URL      string
	Title    string
	Company  string
	Source   string
	Score    int
	Location string
	SentAt   time.Time
}

// Source is one ATS backend: it knows its companies and how to fetch
// and normalize one company's postings.
type Source interface {
	Name() string
	Companies() []string
	FetchCompany(ctx context.Context, company string) ([]Job, error)
}

// SentStore tracks delivered postings by URL for cross-run deduplication.
type SentStore interface {
	// FilterNew returns the subset of jobs whose URLs have not been sent
	// within the retention window, preserving input order.
	FilterNew(jobs []Job) ([]Job, error)
	// MarkSent persists one SentRecord per job, stamped with the commit time.
	// Called only after confirmed delivery.
	MarkSent(jobs []Job) error
	IsAlreadySent(url string) (bool, error)
	CountSentSince(since time.Time) (int64, error)
	CountTotal() (int64, error)
	RecentRecords(limit int) ([]SentRecord, error)
	Cleanup(olderThan time.Duration) error
}

// Delivery hands the final digest to the outside world. An error means the
// digest was not delivered and nothing may be committed to the SentStore.
type Delivery interface {
	SendDigest(jobs []Job) error
}

// Enhancer optionally annotates qualified jobs with extra analysis.
// Implementations must tolerate total failure by returning the input unchanged.
type Enhancer interface {
	EnhanceAll(ctx context.Context, jobs []Job) ([]Job, error)
	Enabled() bool
}

// Metrics is a write-only sink for pipeline observability. No core logic
// depends on it; tests use NopMetrics.
type Metrics interface {
	JobsFound(count int)
	JobsFiltered(count int)
	JobsQualified(count int)
	JobsSent(count int)
	FetchLatency(source string, d time.Duration)
	FetchFailure(source string)
	LastRunStats(found, qualified, sent int)
}
