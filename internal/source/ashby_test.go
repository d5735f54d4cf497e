package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAshbyFetchCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body struct {
			OperationName string            `json:"operationName"`
			Variables     map[string]string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.OperationName != "ApiJobBoardWithTeams" {
			t.Errorf("unexpected operation: %q", body.OperationName)
		}
		if body.Variables["organizationHostedJobsPageName"] != "acme" {
			t.Errorf("unexpected variables: %v", body.Variables)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"jobBoard": {
					"jobPostings": [
						{
							"id": "abc-123",
							"title": "Backend Engineer",
							"locationName": "Remote",
							"descriptionPlain": "Java services."
						}
					]
				}
			}
		}`))
	}))
	defer srv.Close()

	s := NewAshby(testClient(srv), []string{"acme"})
	jobs, err := s.FetchCompany(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FetchCompany: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	j := jobs[0]
	if j.URL != "https://jobs.ashbyhq.com/acme/abc-123" {
		t.Errorf("unexpected url: %q", j.URL)
	}
	if j.Title != "Backend Engineer" {
		t.Errorf("unexpected title: %q", j.Title)
	}
	if j.Source != "Ashby" {
		t.Errorf("unexpected source: %q", j.Source)
	}
}

func TestAshbyNullBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"jobBoard": null}}`))
	}))
	defer srv.Close()

	s := NewAshby(testClient(srv), []string{"gone"})
	jobs, err := s.FetchCompany(context.Background(), "gone")
	if err != nil {
		t.Fatalf("FetchCompany: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs for a null board, got %d", len(jobs))
	}
}
