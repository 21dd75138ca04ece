package notifier

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends HTML email through an SMTP relay.
type SMTPSender struct {
	renderer *Renderer
	from     string
	send     func(m *gomail.Message) error
}

// NewSMTPSender creates a sender that dials the relay for every message.
func NewSMTPSender(renderer *Renderer, cfg SMTPConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPSender{
		renderer: renderer,
		from:     cfg.From,
		send:     func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// Send renders msg and delivers it. The dial itself is bounded by gomail's
// connection timeout; ctx bounds the wait for the whole exchange.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	subject, body, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- s.send(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
