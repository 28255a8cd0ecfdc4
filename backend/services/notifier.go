package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Notifier delivers a plain-text message to an email address. Callers treat
// delivery as best-effort.
type Notifier interface {
	Notify(ctx context.Context, address, subject, body string) error
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type SendGridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
	log    *zap.Logger
}

func NewSendGridNotifier(cfg SendGridConfig, log *zap.Logger) (*SendGridNotifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("missing MAIL_FROM_EMAIL")
	}
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		log:    log.Named("sendgrid"),
	}, nil
}

func (n *SendGridNotifier) Notify(ctx context.Context, address, subject, body string) error {
	to := mail.NewEmail("", address)
	message := mail.NewSingleEmail(n.from, subject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	n.log.Debug("email sent", zap.String("subject", subject), zap.Int("status", resp.StatusCode))
	return nil
}

// LogNotifier is used when no mail provider is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, address, subject, _ string) error {
	n.log.Info("notification (mail disabled)",
		zap.String("to", address),
		zap.String("subject", subject),
	)
	return nil
}
