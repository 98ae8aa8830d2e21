// Package notify delivers alert messages to users outside the application.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier sends a text message to a destination address. Delivery is not
// guaranteed; a nil error only means the channel accepted the message.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// LogNotifier writes messages to the log instead of delivering them. It is
// used when no messaging provider is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Str("to", to).Str("body", body).Msg("notification not delivered, no channel configured")
	return nil
}
