package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SamDev98/ats-crawler/internal/metrics"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// testClient returns a Client whose requests are rewritten to hit srv
// regardless of the adapter's hard-coded base URL.
func testClient(srv *httptest.Server) *Client {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
	return NewClient(httpClient, metrics.NewNop())
}

func TestGreenhouseFetchCompany(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"title": "Senior Java Developer",
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"content": "&lt;p&gt;Build &amp;amp; run backend services.&lt;/p&gt;",
				"location": {"name": "Remote - Brazil"}
			},
			{
				"title": "Data Engineer",
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890",
				"content": "<p>Pipelines.</p>",
				"location": {"name": "New York"}
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("expected content=true query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := NewGreenhouse(testClient(srv), []string{"acme"})
	jobs, err := s.FetchCompany(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FetchCompany: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Senior Java Developer" {
		t.Errorf("unexpected title: %q", j.Title)
	}
	if j.URL != "https://boards.greenhouse.io/acme/jobs/12345" {
		t.Errorf("unexpected url: %q", j.URL)
	}
	if j.Company != "Acme" {
		t.Errorf("unexpected company: %q", j.Company)
	}
	if j.Location != "Remote - Brazil" {
		t.Errorf("unexpected location: %q", j.Location)
	}
	// Double-encoded HTML must come out as plain text.
	if j.Description != "Build & run backend services." {
		t.Errorf("unexpected description: %q", j.Description)
	}
	if j.Source != "Greenhouse" {
		t.Errorf("unexpected source: %q", j.Source)
	}
	if j.DiscoveredAt.IsZero() {
		t.Error("expected DiscoveredAt to be set")
	}
}

func TestGreenhouseEmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs": []}`))
	}))
	defer srv.Close()

	s := NewGreenhouse(testClient(srv), []string{"acme"})
	jobs, err := s.FetchCompany(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FetchCompany: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}
