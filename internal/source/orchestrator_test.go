package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SamDev98/ats-crawler/internal/metrics"
	"github.com/SamDev98/ats-crawler/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scriptedSource struct {
	name  string
	mu    sync.Mutex
	calls map[string]int
	fetch func(company string, call int) ([]model.Job, error)
}

func newScriptedSource(name string, fetch func(company string, call int) ([]model.Job, error)) *scriptedSource {
	return &scriptedSource{name: name, calls: make(map[string]int), fetch: fetch}
}

func (s *scriptedSource) Name() string { return s.name }

func (s *scriptedSource) Companies() []string {
	return []string{"alpha", "beta", "gamma"}
}

func (s *scriptedSource) FetchCompany(_ context.Context, company string) ([]model.Job, error) {
	s.mu.Lock()
	s.calls[company]++
	call := s.calls[company]
	s.mu.Unlock()
	return s.fetch(company, call)
}

func job(company, id string) model.Job {
	return model.Job{
		Title: "Engineer",
		URL:   "https://example.com/" + company + "/" + id,
	}
}

func TestFetchAllUnionsCompanies(t *testing.T) {
	src := newScriptedSource("Lever", func(company string, _ int) ([]model.Job, error) {
		return []model.Job{job(company, "1")}, nil
	})

	o := NewOrchestrator(src, metrics.NewNop(), discardLogger(), 3, 0)
	jobs := o.FetchAll(context.Background())
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
}

func TestFetchAllIsolatesCompanyFailure(t *testing.T) {
	src := newScriptedSource("Lever", func(company string, _ int) ([]model.Job, error) {
		if company == "beta" {
			return nil, errors.New("connection reset")
		}
		return []model.Job{job(company, "1")}, nil
	})

	o := NewOrchestrator(src, metrics.NewNop(), discardLogger(), 3, 0)
	jobs := o.FetchAll(context.Background())
	if len(jobs) != 2 {
		t.Fatalf("expected the failing company to be skipped, got %d jobs", len(jobs))
	}
}

func TestFetchAllRetriesRateLimitOnce(t *testing.T) {
	src := newScriptedSource("Lever", func(company string, call int) ([]model.Job, error) {
		if company == "beta" && call == 1 {
			return nil, &model.HTTPError{
				StatusCode: 429,
				RetryAfter: 10 * time.Millisecond,
				Err:        errors.New("too many requests"),
			}
		}
		return []model.Job{job(company, "1")}, nil
	})

	o := NewOrchestrator(src, metrics.NewNop(), discardLogger(), 3, 0)
	jobs := o.FetchAll(context.Background())
	if len(jobs) != 3 {
		t.Fatalf("expected the rate-limited company to succeed on retry, got %d jobs", len(jobs))
	}
	if src.calls["beta"] != 2 {
		t.Errorf("expected exactly 2 calls for beta, got %d", src.calls["beta"])
	}
}

func TestFetchAllDoesNotRetryNotFound(t *testing.T) {
	src := newScriptedSource("Lever", func(company string, _ int) ([]model.Job, error) {
		if company == "beta" {
			return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
		}
		return []model.Job{job(company, "1")}, nil
	})

	o := NewOrchestrator(src, metrics.NewNop(), discardLogger(), 3, 0)
	jobs := o.FetchAll(context.Background())
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if src.calls["beta"] != 1 {
		t.Errorf("404 must not be retried, got %d calls", src.calls["beta"])
	}
}

func TestFetchAllHonorsConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	src := newScriptedSource("Lever", func(company string, _ int) ([]model.Job, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return []model.Job{job(company, "1")}, nil
	})

	o := NewOrchestrator(src, metrics.NewNop(), discardLogger(), 1, 0)
	o.FetchAll(context.Background())
	if peak.Load() > 1 {
		t.Errorf("concurrency limit exceeded: peak %d", peak.Load())
	}
}
