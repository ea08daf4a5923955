package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
)

// Dispatcher routes outbound messages to the channel's sender. It is the
// concrete usecase.Notifier.
type Dispatcher struct {
	mailer   *Mailer
	whatsapp *WhatsAppSender
	logger   *zap.Logger
}

func NewDispatcher(mailer *Mailer, whatsapp *WhatsAppSender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{mailer: mailer, whatsapp: whatsapp, logger: logger}
}

// Send delivers over the named channel. WhatsApp messages ignore subject;
// email wraps the body in the shared HTML shell.
func (d *Dispatcher) Send(ctx context.Context, channel, target, subject, body string) error {
	switch channel {
	case domain.ChannelEmail:
		if d.mailer == nil {
			return fmt.Errorf("email channel not configured")
		}
		return d.mailer.Send(ctx, target, subject, body)
	case domain.ChannelWhatsApp:
		if d.whatsapp == nil {
			return fmt.Errorf("whatsapp channel not configured")
		}
		return d.whatsapp.Send(target, body)
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}
