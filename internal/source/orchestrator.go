package source

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SamDev98/ats-crawler/internal/model"
)

// Orchestrator fans out one source's per-company fetches under a bounded
// concurrency limit. Per-company failures are absorbed: a failing company
// yields zero postings and the batch continues.
type Orchestrator struct {
	source        model.Source
	metrics       model.Metrics
	logger        *slog.Logger
	concurrency   int
	dispatchDelay time.Duration // gap between dispatches for rate-sensitive upstreams
	retryBase     time.Duration
}

// NewOrchestrator wires a source with its fan-out policy. concurrency below 1
// falls back to 3, the safe default for unauthenticated boards.
func NewOrchestrator(source model.Source, metrics model.Metrics, logger *slog.Logger, concurrency int, dispatchDelay time.Duration) *Orchestrator {
	if concurrency < 1 {
		concurrency = 3
	}
	return &Orchestrator{
		source:        source,
		metrics:       metrics,
		logger:        logger,
		concurrency:   concurrency,
		dispatchDelay: dispatchDelay,
		retryBase:     2 * time.Second,
	}
}

// FetchAll fetches every company of the source and returns the union of their
// postings. It never fails: errors are isolated per company, classified, and
// reported in a summary log for operator follow-up.
func (o *Orchestrator) FetchAll(ctx context.Context) []model.Job {
	companies := o.source.Companies()
	o.logger.Info("fetching source",
		"source", o.source.Name(),
		"companies", len(companies),
		"concurrency", o.concurrency,
	)

	var (
		mu    sync.Mutex
		jobs  []model.Job
		empty []string
		dead  []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, company := range companies {
		if ctx.Err() != nil {
			break
		}
		company := company
		g.Go(func() error {
			fetched, err := o.fetchWithRetry(ctx, company)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && isNotFound(err):
				// Company likely moved or changed ATS; candidate for config cleanup.
				dead = append(dead, company)
				o.metrics.FetchFailure(o.source.Name())
			case err != nil:
				o.logger.Warn("company fetch failed",
					"source", o.source.Name(),
					"company", company,
					"error", err,
				)
				o.metrics.FetchFailure(o.source.Name())
			case len(fetched) == 0:
				empty = append(empty, company)
			default:
				jobs = append(jobs, fetched...)
			}
			return nil
		})

		if o.dispatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.dispatchDelay):
			}
		}
	}
	g.Wait()

	o.logSummary(empty, dead)
	return jobs
}

// fetchWithRetry fetches one company, retrying once with backoff when the
// failure looks transient (HTTP 429, honoring Retry-After).
func (o *Orchestrator) fetchWithRetry(ctx context.Context, company string) ([]model.Job, error) {
	jobs, err := o.source.FetchCompany(ctx, company)
	if err == nil || !isRateLimited(err) {
		return jobs, err
	}

	delay := o.retryBase
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		delay = httpErr.RetryAfter
	}

	o.logger.Warn("rate limited, retrying once",
		"source", o.source.Name(),
		"company", company,
		"delay", delay,
	)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	return o.source.FetchCompany(ctx, company)
}

// logSummary surfaces companies worth operator attention. Observability only;
// it never affects the batch result.
func (o *Orchestrator) logSummary(empty, dead []string) {
	sort.Strings(empty)
	sort.Strings(dead)
	if len(dead) > 0 {
		o.logger.Info("companies likely relocated or defunct",
			"source", o.source.Name(),
			"companies", strings.Join(dead, ", "),
		)
	}
	if len(empty) > 0 {
		o.logger.Info("companies with zero postings",
			"source", o.source.Name(),
			"companies", strings.Join(empty, ", "),
		)
	}
}

func isRateLimited(err error) bool {
	var httpErr *model.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 429
}

func isNotFound(err error) bool {
	var httpErr *model.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 404
}
