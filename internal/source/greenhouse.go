package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const greenhouseURL = "https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true"

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseJob struct {
	Title       string             `json:"title"`
	AbsoluteURL string             `json:"absolute_url"`
	Content     string             `json:"content"`
	Location    greenhouseLocation `json:"location"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Greenhouse fetches postings from the Greenhouse public boards API.
type Greenhouse struct {
	client    *Client
	companies []string
}

func NewGreenhouse(client *Client, companies []string) *Greenhouse {
	return &Greenhouse{client: client, companies: companies}
}

func (s *Greenhouse) Name() string { return "Greenhouse" }

func (s *Greenhouse) Companies() []string { return s.companies }

// FetchCompany retrieves one board's postings and normalizes them.
// Greenhouse returns descriptions as double-encoded HTML in "content".
func (s *Greenhouse) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(greenhouseURL, company)

	var resp greenhouseResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		jobs = append(jobs, model.Job{
			Title:        gj.Title,
			URL:          gj.AbsoluteURL,
			Company:      FormatCompanyName(company),
			Location:     gj.Location.Name,
			Description:  StripHTML(gj.Content),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
