package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const workableURL = "https://apply.workable.com/api/v3/accounts/%s/jobs"

type workableLocation struct {
	LocationStr string `json:"locationStr"`
}

type workableJob struct {
	Shortcode   string            `json:"shortcode"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    *workableLocation `json:"location"`
}

type workableResponse struct {
	Results []workableJob `json:"results"`
}

// Workable fetches postings from the Workable embedded jobs API.
type Workable struct {
	client    *Client
	companies []string
}

func NewWorkable(client *Client, companies []string) *Workable {
	return &Workable{client: client, companies: companies}
}

func (s *Workable) Name() string { return "Workable" }

func (s *Workable) Companies() []string { return s.companies }

func (s *Workable) FetchCompany(ctx context.Context, company string) ([]model.Job, error) {
	url := fmt.Sprintf(workableURL, company)

	var resp workableResponse
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &resp); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(resp.Results))
	for _, wj := range resp.Results {
		location := ""
		if wj.Location != nil {
			location = wj.Location.LocationStr
		}
		jobs = append(jobs, model.Job{
			Title:        wj.Title,
			URL:          "https://apply.workable.com/" + company + "/j/" + wj.Shortcode + "/",
			Company:      FormatCompanyName(company),
			Location:     location,
			Description:  StripHTML(wj.Description),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
