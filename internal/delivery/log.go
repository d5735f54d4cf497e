package delivery

import (
	"log/slog"

	"github.com/SamDev98/ats-crawler/internal/model"
)

// Ensure LogDelivery implements model.Delivery.
var _ model.Delivery = (*LogDelivery)(nil)

// LogDelivery writes the digest to the logger as structured messages.
// Used as the default delivery and in dry-run reporting.
type LogDelivery struct {
	logger *slog.Logger
}

func NewLogDelivery(logger *slog.Logger) *LogDelivery {
	return &LogDelivery{logger: logger}
}

// SendDigest logs each qualified posting. Returns nil (stdout does not fail).
func (d *LogDelivery) SendDigest(jobs []model.Job) error {
	for _, j := range jobs {
		d.logger.Info("qualified job",
			"source", j.Source,
			"title", j.Title,
			"company", j.Company,
			"location", j.Location,
			"score", j.Score,
			"remote", j.Remote,
			"contract", j.Contract,
			"url", j.URL,
		)
	}
	return nil
}
