package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer submits messages through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
}

// NewSendGridMailer returns a Mailer backed by SendGrid, or nil when no
// API key is configured so the notifier runs disabled.
func NewSendGridMailer(apiKey string) *SendGridMailer {
	if apiKey == "" {
		return nil
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey)}
}

func (m *SendGridMailer) Send(ctx context.Context, from, to, subject, body string) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail("PharmaTrack", from))
	msg.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/plain", body))

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
