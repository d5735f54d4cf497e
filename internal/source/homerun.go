package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const homerunURL = "https://%s.homerun.co/jobs.json"

type homerunJob struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Location    struct {
		City string `json:"city"`
	} `json:"location"`
}

type homerunResponse struct {
	Jobs []homerunJob `json:"jobs"`
}

// Homerun fetches postings from the Homerun public jobs feed.
type Homerun struct {
	client    *Client
	companies []string
}

func NewHomerun(client *Client, companies []string) *Homerun {
	return &Homerun{client: client, companies: companies}
}

func (s *Homerun) Name() string { return "Homerun" }

func (s *Homerun) Companies() []string { return s.companies }

func (s *Homerun) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(homerunURL, company)

	var resp homerunResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, hj := range resp.Jobs {
		jobs = append(jobs, model.Job{
			Title:        hj.Title,
			URL:          hj.URL,
			Company:      FormatCompanyName(company),
			Location:     hj.Location.City,
			Description:  StripHTML(hj.Description),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
