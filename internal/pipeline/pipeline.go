// Package pipeline sequences one full scan: fetch, dedup, eligibility,
// scoring, sort, enhancement, delivery, commit. Each run is independent;
// callers must guarantee runs do not overlap.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SamDev98/ats-crawler/internal/enhance"
	"github.com/SamDev98/ats-crawler/internal/model"
	"github.com/SamDev98/ats-crawler/internal/rules"
	"github.com/SamDev98/ats-crawler/internal/scoring"
	"github.com/SamDev98/ats-crawler/internal/source"
)

// Pipeline owns one scan run end to end.
type Pipeline struct {
	sources  []*source.Orchestrator
	store    model.SentStore
	rules    *rules.Engine
	scorer   *scoring.Engine
	enhancer model.Enhancer
	delivery model.Delivery
	metrics  model.Metrics
	logger   *slog.Logger
	dryRun   bool
}

func New(
	sources []*source.Orchestrator,
	store model.SentStore,
	rulesEngine *rules.Engine,
	scorer *scoring.Engine,
	enhancer model.Enhancer,
	delivery model.Delivery,
	metrics model.Metrics,
	logger *slog.Logger,
	dryRun bool,
) *Pipeline {
	return &Pipeline{
		sources:  sources,
		store:    store,
		rules:    rulesEngine,
		scorer:   scorer,
		enhancer: enhancer,
		delivery: delivery,
		metrics:  metrics,
		logger:   logger,
		dryRun:   dryRun,
	}
}

// Run executes the full pipeline and returns the delivered postings.
// Fetch failures are isolated upstream; the only run-level error is a
// delivery failure, which leaves the store uncommitted so the same postings
// qualify again on the next run.
func (p *Pipeline) Run(ctx context.Context) ([]model.Job, error) {
	allJobs := p.fetchAll(ctx)
	p.logger.Info("fetch complete", "total", len(allJobs))
	p.metrics.JobsFound(len(allJobs))

	if len(allJobs) == 0 {
		p.metrics.LastRunStats(0, 0, 0)
		return nil, nil
	}

	newJobs, err := p.store.FilterNew(allJobs)
	if err != nil {
		return nil, fmt.Errorf("deduplication: %w", err)
	}
	p.logger.Info("deduplication complete",
		"total", len(allJobs),
		"already_sent", len(allJobs)-len(newJobs),
		"new", len(newJobs),
	)

	if len(newJobs) == 0 {
		p.metrics.LastRunStats(len(allJobs), 0, 0)
		return nil, nil
	}

	qualified := p.qualify(newJobs)
	p.metrics.JobsFiltered(len(newJobs) - len(qualified))
	p.metrics.JobsQualified(len(qualified))
	p.logger.Info("qualification complete",
		"threshold", p.scorer.Threshold(),
		"qualified", len(qualified),
	)

	if len(qualified) == 0 {
		p.metrics.LastRunStats(len(allJobs), 0, 0)
		return nil, nil
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Score > qualified[j].Score
	})

	qualified = p.enhanceAll(ctx, qualified)

	if p.dryRun {
		p.logger.Info("dry run, skipping delivery", "would_send", len(qualified))
		for _, j := range qualified {
			p.logger.Info("would send",
				"source", j.Source,
				"title", j.Title,
				"company", j.Company,
				"score", j.Score,
			)
		}
		p.metrics.LastRunStats(len(allJobs), len(qualified), 0)
		return qualified, nil
	}

	if err := p.delivery.SendDigest(qualified); err != nil {
		// Nothing is committed: the same postings are retried next run.
		p.metrics.LastRunStats(len(allJobs), len(qualified), 0)
		return nil, fmt.Errorf("delivery: %w", err)
	}

	if err := p.store.MarkSent(qualified); err != nil {
		// Delivered but not recorded; the next run may send duplicates.
		return qualified, fmt.Errorf("marking sent after delivery: %w", err)
	}

	p.metrics.JobsSent(len(qualified))
	p.metrics.LastRunStats(len(allJobs), len(qualified), len(qualified))
	p.logger.Info("run complete", "sent", len(qualified))
	return qualified, nil
}

// fetchAll runs every source orchestrator concurrently and unions their
// postings. Postings without a URL are dropped here: the URL is the dedup
// identity key.
func (p *Pipeline) fetchAll(ctx context.Context) []model.Job {
	var (
		mu   sync.Mutex
		jobs []model.Job
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, orch := range p.sources {
		orch := orch
		g.Go(func() error {
			fetched := orch.FetchAll(ctx)
			mu.Lock()
			jobs = append(jobs, fetched...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	kept := jobs[:0]
	for _, job := range jobs {
		job.URL = rules.CleanURL(job.URL)
		if job.URL == "" {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

// qualify runs eligibility and scoring over each posting and keeps the ones
// that pass both gates, annotated with flags, score, and breakdown.
func (p *Pipeline) qualify(jobs []model.Job) []model.Job {
	var qualified []model.Job
	for _, job := range jobs {
		eligibility := p.rules.Check(job)
		if !eligibility.Eligible {
			p.logger.Debug("posting blocked",
				"title", job.Title,
				"reason", eligibility.BlockReason,
			)
			continue
		}

		job.Remote = eligibility.Remote
		job.Contract = eligibility.Contract

		result := p.scorer.Calculate(job, eligibility)
		if !result.ShouldApply {
			p.logger.Debug("posting below threshold",
				"title", job.Title,
				"score", result.Score,
			)
			continue
		}

		job.Score = result.Score
		job.ScoreBreakdown = result.Breakdown
		qualified = append(qualified, job)
	}
	return qualified
}

// enhanceAll runs the enhancement collaborator over the sorted survivors.
// Failures are absorbed: the run continues with un-enhanced postings. A
// discard verdict removes a posting from the final set.
func (p *Pipeline) enhanceAll(ctx context.Context, jobs []model.Job) []model.Job {
	if !p.enhancer.Enabled() {
		return jobs
	}

	enhanced, err := p.enhancer.EnhanceAll(ctx, jobs)
	if err != nil {
		p.logger.Error("enhancement failed, continuing without it", "error", err)
		return jobs
	}

	kept := enhanced[:0]
	for _, job := range enhanced {
		if enhance.Discarded(job.Analysis) {
			p.logger.Debug("posting discarded by enhancement verdict", "title", job.Title)
			continue
		}
		kept = append(kept, job)
	}
	p.logger.Info("enhancement complete", "remaining", len(kept))
	return kept
}
