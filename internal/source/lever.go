package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const leverURL = "https://api.lever.co/v0/postings/%s?mode=json"

type leverJob struct {
	Text             string            `json:"text"`
	HostedURL        string            `json:"hostedUrl"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Categories       map[string]string `json:"categories"`
}

// Lever fetches postings from the Lever public postings API.
type Lever struct {
	client    *Client
	companies []string
}

func NewLever(client *Client, companies []string) *Lever {
	return &Lever{client: client, companies: companies}
}

func (s *Lever) Name() string { return "Lever" }

func (s *Lever) Companies() []string { return s.companies }

func (s *Lever) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(leverURL, company)

	var leverJobs []leverJob
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &leverJobs); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(leverJobs))
	for _, lj := range leverJobs {
		jobs = append(jobs, model.Job{
			Title:        lj.Text,
			URL:          lj.HostedURL,
			Company:      FormatCompanyName(company),
			Location:     lj.Categories["location"],
			Description:  lj.DescriptionPlain,
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
