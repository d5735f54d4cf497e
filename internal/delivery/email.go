// Package delivery hands the final digest to the outside world. The commit
// of sent records is gated on this layer reporting success.
package delivery

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

//go:embed templates/digest.html.tmpl
var digestTemplateRaw string

var digestTemplate = template.Must(template.New("digest").Parse(digestTemplateRaw))

// EmailDelivery sends the digest as one HTML email over SMTP.
type EmailDelivery struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	logger   *slog.Logger
}

func NewEmailDelivery(host string, port int, username, password, from, to string, logger *slog.Logger) *EmailDelivery {
	return &EmailDelivery{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		logger:   logger,
	}
}

type digestData struct {
	Jobs          []model.Job
	JobCount      int
	Date          string
	RemoteCount   int
	ContractCount int
	AvgScore      string
}

// SendDigest renders and sends the digest. A nil return confirms delivery;
// any error means nothing was delivered and nothing may be committed.
func (d *EmailDelivery) SendDigest(jobs []model.Job) error {
	body, err := renderDigest(jobs)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	subject := fmt.Sprintf("Job Scanner: %d New Positions - %s",
		len(jobs), time.Now().Format("2006-01-02"))

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", d.from)
	fmt.Fprintf(&msg, "To: %s\r\n", d.to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", d.host, d.port)
	auth := smtp.PlainAuth("", d.username, d.password, d.host)
	if err := smtp.SendMail(addr, auth, d.from, []string{d.to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send digest to %s: %w", d.to, err)
	}

	d.logger.Info("digest email sent", "to", d.to, "jobs", len(jobs))
	return nil
}

func renderDigest(jobs []model.Job) (string, error) {
	remote, contract, scoreSum := 0, 0, 0
	for _, j := range jobs {
		if j.Remote {
			remote++
		}
		if j.Contract {
			contract++
		}
		scoreSum += j.Score
	}
	avg := 0.0
	if len(jobs) > 0 {
		avg = float64(scoreSum) / float64(len(jobs))
	}

	var buf bytes.Buffer
	err := digestTemplate.Execute(&buf, digestData{
		Jobs:          jobs,
		JobCount:      len(jobs),
		Date:          time.Now().Format("January 2, 2006"),
		RemoteCount:   remote,
		ContractCount: contract,
		AvgScore:      fmt.Sprintf("%.1f", avg),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
