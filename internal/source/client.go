package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client is the shared HTTP helper for all ATS adapters. Every request runs
// under the client's timeout and reports its latency and outcome to the
// metrics sink. Non-2xx responses become model.HTTPError so the orchestrator
// can classify them.
type Client struct {
	http    *http.Client
	metrics model.Metrics
}

// NewClient wraps an http.Client (which should carry a 30s timeout) with
// latency reporting.
func NewClient(httpClient *http.Client, metrics model.Metrics) *Client {
	return &Client{http: httpClient, metrics: metrics}
}

// GetJSON issues a GET and decodes the JSON response body into out.
func (c *Client) GetJSON(ctx context.Context, sourceName, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s request: %w", sourceName, err)
	}
	return c.do(req, sourceName, headers, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, sourceName, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s request body: %w", sourceName, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s request: %w", sourceName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, sourceName, nil, out)
}

func (c *Client) do(req *http.Request, sourceName string, headers map[string]string, out any) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.FetchLatency(sourceName, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s fetch: %w", sourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s fetch %s: unexpected status %d", sourceName, req.URL.Host, resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", sourceName, err)
	}
	return nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports both forms the header allows: delta-seconds (e.g. "120") and an
// HTTP-date. Returns zero if absent, unparseable, or already in the past.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
