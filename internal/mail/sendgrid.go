package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

type SendGridConfig struct {
	APIKey   string
	Sender   string
	FromName string
	// Host overrides the API host, for tests.
	Host string
}

// SendGridMailer sends emails through the SendGrid v3 mail API.
type SendGridMailer struct {
	cfg SendGridConfig
}

func NewSendGridMailer(cfg SendGridConfig) *SendGridMailer {
	if cfg.Host == "" {
		cfg.Host = sendGridHost
	}
	if cfg.FromName == "" {
		cfg.FromName = "FindMyPaw"
	}
	if cfg.Sender == "" {
		cfg.Sender = "no-reply@findmypaw.local"
		slog.Warn("SENDGRID_FROM_EMAIL not set, using default sender", "sender", cfg.Sender)
	}
	return &SendGridMailer{cfg: cfg}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(m.cfg.FromName, m.cfg.Sender))
	message.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	message.AddPersonalizations(p)
	message.AddContent(sgmail.NewContent("text/html", msg.HTML))

	request := sendgrid.GetRequest(m.cfg.APIKey, "/v3/mail/send", m.cfg.Host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", msg.To, resp.StatusCode, resp.Body)
	}

	slog.Info("email sent", "to", msg.To, "via", "sendgrid")
	return nil
}
