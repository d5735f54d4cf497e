package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const teamtailorURL = "https://%s.teamtailor.com/api/v1/jobs"

type teamtailorAttributes struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	CareersiteURL string `json:"careersite-job-url"`
}

type teamtailorRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type teamtailorJob struct {
	ID            string               `json:"id"`
	Attributes    teamtailorAttributes `json:"attributes"`
	Relationships struct {
		Locations struct {
			Data []teamtailorRef `json:"data"`
		} `json:"locations"`
	} `json:"relationships"`
}

type teamtailorIncluded struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

type teamtailorResponse struct {
	Data     []teamtailorJob      `json:"data"`
	Included []teamtailorIncluded `json:"included"`
}

// Teamtailor fetches postings from the Teamtailor JSON:API endpoint.
// Locations live in the side-loaded "included" section and are resolved
// through the job's relationship references.
type Teamtailor struct {
	client    *Client
	companies []string
}

func NewTeamtailor(client *Client, companies []string) *Teamtailor {
	return &Teamtailor{client: client, companies: companies}
}

func (s *Teamtailor) Name() string { return "Teamtailor" }

func (s *Teamtailor) Companies() []string { return s.companies }

func (s *Teamtailor) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(teamtailorURL, company)

	var resp teamtailorResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	// Index included locations by ID for relationship lookups.
	locations := make(map[string]string)
	for _, inc := range resp.Included {
		if inc.Type == "locations" && inc.Attributes.Name != "" {
			locations[inc.ID] = inc.Attributes.Name
		}
	}

	jobs := make([]model.Job, 0, len(resp.Data))
	for _, tj := range resp.Data {
		location := ""
		for _, ref := range tj.Relationships.Locations.Data {
			if name, ok := locations[ref.ID]; ok {
				location = name
				break
			}
		}

		jobURL := tj.Attributes.CareersiteURL
		if jobURL == "" {
			jobURL = "https://" + company + ".teamtailor.com/jobs/" + tj.ID
		}

		jobs = append(jobs, model.Job{
			Title:        tj.Attributes.Title,
			URL:          jobURL,
			Company:      FormatCompanyName(company),
			Location:     location,
			Description:  StripHTML(tj.Attributes.Body),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
