package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const comeetURL = "https://www.comeet.co/careers-api/2.0/company/%s/positions?token=%s"

type comeetPosition struct {
	Name        string `json:"name"`
	URLComeet   string `json:"url_comeet"`
	Description string `json:"description"`
	Location    struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

// Comeet fetches postings from the Comeet careers API. Company entries are
// configured as "uid:token" pairs because the API requires a board token.
type Comeet struct {
	client    *Client
	companies []string
}

func NewComeet(client *Client, companies []string) *Comeet {
	return &Comeet{client: client, companies: companies}
}

func (s *Comeet) Name() string { return "Comeet" }

func (s *Comeet) Companies() []string { return s.companies }

func (s *Comeet) FetchCompany(ctx context.Context, companyConfig string) ([]model.Job, error) {
	uid, token, ok := strings.Cut(companyConfig, ":")
	if !ok {
		return nil, fmt.Errorf("comeet company must be configured as \"uid:token\", got %q", companyConfig)
	}
	url := fmt.Sprintf(comeetURL, uid, token)

	var positions []comeetPosition
	if err := s.client.GetJSON(ctx, s.Name(), url, nil, &positions); err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(positions))
	for _, cp := range positions {
		jobs = append(jobs, model.Job{
			Title:        cp.Name,
			URL:          cp.URLComeet,
			Company:      FormatCompanyName(uid),
			Location:     cp.Location.DisplayName,
			Description:  StripHTML(cp.Description),
			Source:       s.Name(),
			DiscoveredAt: time.Now(),
		})
	}
	return jobs, nil
}
