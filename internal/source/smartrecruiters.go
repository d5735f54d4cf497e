package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const smartRecruitersURL = "https://api.smartrecruiters.com/v1/companies/%s/postings"

type smartRecruitersSection struct {
	Text string `json:"text"`
}

type smartRecruitersJob struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ref     string `json:"ref"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Location struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	JobAd struct {
		Sections struct {
			JobDescription *smartRecruitersSection `json:"jobDescription"`
			Qualifications *smartRecruitersSection `json:"qualifications"`
		} `json:"sections"`
	} `json:"jobAd"`
}

type smartRecruitersResponse struct {
	Content []smartRecruitersJob `json:"content"`
}

// SmartRecruiters fetches postings from the SmartRecruiters public postings API.
type SmartRecruiters struct {
	client    *Client
	companies []string
}

func NewSmartRecruiters(client *Client, companies []string) *SmartRecruiters {
	return &SmartRecruiters{client: client, companies: companies}
}

func (s *SmartRecruiters) Name() string { return "SmartRecruiters" }

func (s *SmartRecruiters) Companies() []string { return s.companies }

func (s *SmartRecruiters) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(smartRecruitersURL, company)

	var resp smartRecruitersResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(resp.Content))
	for _, sj := range resp.Content {
		location := sj.Location.City
		if location == "" {
			location = sj.Location.Country
		}

		jobURL := sj.Ref
		if jobURL == "" {
			jobURL = "https://jobs.smartrecruiters.com/" + company + "/" + sj.ID
		}

		companyName := sj.Company.Name
		if companyName == "" {
			companyName = FormatCompanyName(company)
		}

		jobs = append(jobs, model.Job{
			Title:        sj.Name,
			URL:          jobURL,
			Company:      companyName,
			Location:     location,
			Description:  joinSections(sj),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}

// joinSections combines the description and qualifications sections of a
// SmartRecruiters job ad into one plain-text description.
func joinSections(sj smartRecruitersJob) string {
	var parts []string
	if d := sj.JobAd.Sections.JobDescription; d != nil && d.Text != "" {
		parts = append(parts, StripHTML(d.Text))
	}
	if q := sj.JobAd.Sections.Qualifications; q != nil && q.Text != "" {
		parts = append(parts, StripHTML(q.Text))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
