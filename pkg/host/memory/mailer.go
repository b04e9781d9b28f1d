package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/goliatone/go-userforms/pkg/host"
)

// SendEmail delegates to the configured mailer.
func (h *Host) SendEmail(ctx context.Context, msg host.Email) error {
	return h.mailer.SendEmail(ctx, msg)
}

// LogMailer writes outgoing mail to a logger instead of delivering it.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer returns a mailer that logs every message at info level.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendEmail(ctx context.Context, msg host.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("outgoing email")
	return nil
}

// Outbox records messages in memory. Set Fail to simulate a transport outage.
type Outbox struct {
	mu       sync.Mutex
	messages []host.Email
	Fail     bool
}

func (o *Outbox) SendEmail(ctx context.Context, msg host.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return oops.Code("MAIL_FAILED").With("to", msg.To).Wrap(host.ErrMailFailed)
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (o *Outbox) Messages() []host.Email {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]host.Email(nil), o.messages...)
}
