package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers alerts over SMTP.
type EmailSender struct {
	dialer    *gomail.Dialer
	from      string
	receivers []string
}

func NewEmailSender(host string, port int, from, password string, receivers []string) *EmailSender {
	return &EmailSender{
		dialer:    gomail.NewDialer(host, port, from, password),
		from:      from,
		receivers: receivers,
	}
}

func (s *EmailSender) Channel() model.Channel { return model.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, a *model.Alert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.receivers...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s alert: %s", a.Severity, a.AlertType, a.MetricName))

	body := fmt.Sprintf(`Metric: %s
Severity: %s
Current Value: %.2f %s
Threshold: %s %.2f
Occurrences: %d
Source: %s
Endpoint: %s
First Seen: %s
Last Seen: %s
`, a.MetricName, a.Severity, a.CurrentValue, a.Unit,
		a.Operator, a.ThresholdValue, a.OccurrenceCount,
		a.Source, a.Endpoint,
		a.CreatedAt.Format(time.RFC3339), a.LastOccurrence.Format(time.RFC3339))
	m.SetBody("text/plain", body)

	// gomail has no context support; honour cancellation around the blocking send.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
