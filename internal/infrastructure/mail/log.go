package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell/internal/core/ports"
)

// LogSender writes emails to the log instead of delivering them. Used in
// development, where the activation/two-factor links need to be visible
// without a mailbox.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, email ports.Email) error {
	s.log.Info().
		Str("to", email.To).
		Str("kind", email.Kind).
		Str("subject", email.Subject).
		Str("body", email.Text).
		Msg("email (log sender)")
	return nil
}
