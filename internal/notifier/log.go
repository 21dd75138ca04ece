package notifier

import (
	"context"

	"kumoney/internal/logger"
)

// LogSender renders messages and writes them to the application log instead
// of delivering them. It is the default driver for local development.
type LogSender struct {
	renderer *Renderer
}

func NewLogSender(renderer *Renderer) *LogSender {
	return &LogSender{renderer: renderer}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}
	logger.Named("notifier").Infow("Email (log driver)",
		"to", msg.To,
		"kind", msg.Kind,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}
