package usecase

import "context"

// Notifier delivers a message over one outbound channel (email or
// whatsapp). Implementations live in internal/infrastructure/notify.
type Notifier interface {
	Send(ctx context.Context, channel, target, subject, body string) error
}
