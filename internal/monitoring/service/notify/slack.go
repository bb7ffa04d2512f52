package notify

import (
	"context"
	"fmt"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/slack-go/slack"
)

// SlackSender posts alerts to a Slack channel as colored attachments.
type SlackSender struct {
	client  *slack.Client
	channel string
}

func NewSlackSender(token, channel string) *SlackSender {
	return &SlackSender{client: slack.New(token), channel: channel}
}

func (s *SlackSender) Channel() model.Channel { return model.ChannelSlack }

func (s *SlackSender) Send(ctx context.Context, a *model.Alert) error {
	attachment := slack.Attachment{
		Color: severityColor(a.Severity),
		Title: fmt.Sprintf("%s alert: %s", a.AlertType, a.MetricName),
		Fields: []slack.AttachmentField{
			{Title: "Severity", Value: string(a.Severity), Short: true},
			{Title: "Status", Value: string(a.Status), Short: true},
			{Title: "Current Value", Value: fmt.Sprintf("%.2f %s", a.CurrentValue, a.Unit), Short: true},
			{Title: "Threshold", Value: fmt.Sprintf("%s %.2f", a.Operator, a.ThresholdValue), Short: true},
			{Title: "Occurrences", Value: fmt.Sprintf("%d", a.OccurrenceCount), Short: true},
			{Title: "Source", Value: a.Source, Short: true},
		},
		Footer: "sentinel",
	}
	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionAttachments(attachment))
	return err
}

func severityColor(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "#ff0000"
	case model.SeverityHigh:
		return "#ff8000"
	case model.SeverityMedium:
		return "#ffcc00"
	default:
		return "#36a64f"
	}
}
