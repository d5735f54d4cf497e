package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const recruiteeURL = "https://%s.recruitee.com/api/offers"

type recruiteeOffer struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CompanyName string `json:"company_name"`
	CareersURL  string `json:"careers_url"`
}

type recruiteeResponse struct {
	Offers []recruiteeOffer `json:"offers"`
}

// Recruitee fetches postings from the Recruitee public offers API.
type Recruitee struct {
	client    *Client
	companies []string
}

func NewRecruitee(client *Client, companies []string) *Recruitee {
	return &Recruitee{client: client, companies: companies}
}

func (s *Recruitee) Name() string { return "Recruitee" }

func (s *Recruitee) Companies() []string { return s.companies }

func (s *Recruitee) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(recruiteeURL, company)

	var resp recruiteeResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(resp.Offers))
	for _, ro := range resp.Offers {
		jobURL := ro.CareersURL
		if jobURL == "" {
			jobURL = "https://" + company + ".recruitee.com/o/" + ro.Slug
		}

		companyName := ro.CompanyName
		if companyName == "" {
			companyName = FormatCompanyName(company)
		}

		jobs = append(jobs, model.Job{
			Title:        ro.Title,
			URL:          jobURL,
			Company:      companyName,
			Location:     ro.Location,
			Description:  StripHTML(ro.Description),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
