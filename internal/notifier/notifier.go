// Package notifier delivers the transactional emails sent by the expiry
// sweeper through SMTP, Amazon SES, or the application log.
package notifier

import (
	"context"
	"fmt"

	"kumoney/internal/config"
)

// Kind identifies an email template.
type Kind string

const (
	KindSubscriptionExpiring Kind = "subscription_expiring"
	KindSubscriptionExpired  Kind = "subscription_expired"
)

// Keys of Message.Data understood by the templates.
const (
	DataName      = "name"
	DataExpiresAt = "expires_at"
)

// Message is a single email to render and send.
type Message struct {
	To   string
	Kind Kind
	Data map[string]string
}

// Sender delivers a message. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the sender selected by cfg.EmailDriver.
func New(ctx context.Context, cfg *config.Config) (Sender, error) {
	renderer, err := NewRenderer(cfg.ClientURL)
	if err != nil {
		return nil, err
	}

	switch cfg.EmailDriver {
	case "smtp":
		return NewSMTPSender(renderer, SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}), nil
	case "ses":
		return NewSESSender(ctx, renderer, cfg.AWSRegion, cfg.EmailFrom)
	case "log", "":
		return NewLogSender(renderer), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.EmailDriver)
	}
}
