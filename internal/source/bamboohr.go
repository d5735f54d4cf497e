package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const bambooHRURL = "https://%s.bamboohr.com/jobs/jobs.php?inline=true"

type bambooHRJob struct {
	ID       string `json:"id"`
	JobTitle string `json:"jobTitle"`
	Location string `json:"location"`
}

// BambooHR fetches postings from the BambooHR embedded jobs endpoint.
// The endpoint requires AJAX-style headers or it serves the HTML page instead.
type BambooHR struct {
	client    *Client
	companies []string
}

func NewBambooHR(client *Client, companies []string) *BambooHR {
	return &BambooHR{client: client, companies: companies}
}

func (s *BambooHR) Name() string { return "BambooHR" }

func (s *BambooHR) Companies() []string { return s.companies }

func (s *BambooHR) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(bambooHRURL, company)
	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          "https://" + company + ".bamboohr.com/jobs/",
	}

	var bambooJobs []bambooHRJob
	if err := s.client.GetJSON(ctx, s.Name(), url, headers, &bambooJobs); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(bambooJobs))
	for _, bj := range bambooJobs {
		jobs = append(jobs, model.Job{
			Title:    bj.JobTitle,
			URL:      "https://" + company + ".bamboohr.com/jobs/view.php?id=" + bj.ID,
			Company:  FormatCompanyName(company),
			Location: bj.Location,
			// The embed API exposes no description; the title is the only text
			// the rules engine can work with.
			Description:  bj.JobTitle,
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
