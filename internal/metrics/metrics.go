// Package metrics implements the observability sink injected into every
// pipeline stage. Core logic never depends on its return values.
package metrics

import (
	"log/slog"
	"sync"
	"time"
)

// Collector aggregates run counters and per-source stats in memory and dumps
// them through slog. Safe for concurrent use (adapters report latency from
// many goroutines).
type Collector struct {
	logger *slog.Logger

	mu            sync.Mutex
	found         int
	filtered      int
	qualified     int
	sent          int
	fetchCount    map[string]int
	fetchTotal    map[string]time.Duration
	fetchFailures map[string]int
	lastFound     int
	lastQualified int
	lastSent      int
}

func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger:        logger,
		fetchCount:    make(map[string]int),
		fetchTotal:    make(map[string]time.Duration),
		fetchFailures: make(map[string]int),
	}
}

func (c *Collector) JobsFound(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.found += count
}

func (c *Collector) JobsFiltered(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filtered += count
}

func (c *Collector) JobsQualified(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qualified += count
}

func (c *Collector) JobsSent(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent += count
}

func (c *Collector) FetchLatency(source string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchCount[source]++
	c.fetchTotal[source] += d
}

func (c *Collector) FetchFailure(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchFailures[source]++
}

func (c *Collector) LastRunStats(found, qualified, sent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFound = found
	c.lastQualified = qualified
	c.lastSent = sent
}

// Report logs the aggregated run stats, one line per source plus a totals
// line. Called once at the end of a run.
func (c *Collector) Report() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for source, count := range c.fetchCount {
		avg := time.Duration(0)
		if count > 0 {
			avg = c.fetchTotal[source] / time.Duration(count)
		}
		c.logger.Info("source stats",
			"source", source,
			"requests", count,
			"avg_latency", avg.Round(time.Millisecond).String(),
			"failures", c.fetchFailures[source],
		)
	}

	c.logger.Info("run stats",
		"found", c.lastFound,
		"filtered", c.filtered,
		"qualified", c.lastQualified,
		"sent", c.lastSent,
	)
}

// Nop discards everything. Used by tests and subcommands that do not run the
// pipeline.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (Nop) JobsFound(int)                      {}
func (Nop) JobsFiltered(int)                   {}
func (Nop) JobsQualified(int)                  {}
func (Nop) JobsSent(int)                       {}
func (Nop) FetchLatency(string, time.Duration) {}
func (Nop) FetchFailure(string)                {}
func (Nop) LastRunStats(int, int, int)         {}
