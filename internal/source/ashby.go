package source

import (
	"context"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const ashbyURL = "https://jobs.ashbyhq.com/api/non-user-graphql?op=ApiJobBoardWithTeams"

const ashbyQuery = `query ApiJobBoardWithTeams($organizationHostedJobsPageName: String!) {
    jobBoard: jobBoardWithTeams(organizationHostedJobsPageName: $organizationHostedJobsPageName) {
        jobPostings { id title locationName descriptionPlain }
    }
}`

type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	LocationName     string `json:"locationName"`
	DescriptionPlain string `json:"descriptionPlain"`
}

type ashbyResponse struct {
	Data struct {
		JobBoard struct {
			JobPostings []ashbyJob `json:"jobPostings"`
		} `json:"jobBoard"`
	} `json:"data"`
}

// Ashby fetches postings via Ashby's public GraphQL job board endpoint.
type Ashby struct {
	client    *Client
	companies []string
}

func NewAshby(client *Client, companies []string) *Ashby {
	return &Ashby{client: client, companies: companies}
}

func (s *Ashby) Name() string { return "Ashby" }

func (s *Ashby) Companies() []string { return s.companies }

func (s *Ashby) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	payload := map[string]any{
		"operationName": "ApiJobBoardWithTeams",
		"variables":     map[string]string{"organizationHostedJobsPageName": company},
		"query":         ashbyQuery,
	}

	var resp ashbyResponse
	if err := s.client.PostJSON(ctx, s.Name(), ashbyURL, payload, &resp); err != nil {
		return nil, err
	}

	postings := resp.Data.JobBoard.JobPostings
	jobs := make([]model.Job, 0, len(postings))
	for _, aj := range postings {
		jobs = append(jobs, model.Job{
			Title:        aj.Title,
			URL:          "https://jobs.ashbyhq.com/" + company + "/" + aj.ID,
			Company:      FormatCompanyName(company),
			Location:     aj.LocationName,
			Description:  aj.DescriptionPlain,
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
