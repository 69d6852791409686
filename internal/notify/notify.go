// Package notify delivers fired disposal reminders to item owners.
package notify

import (
	"context"

	"github.com/erazemk/gegenstand/internal/model"
)

// Notifier sends a reminder about item to its owner.
type Notifier interface {
	Send(ctx context.Context, owner *model.User, item *model.Item, message string) error
}

// Noop discards every reminder. It is used when no delivery channel is set up.
type Noop struct{}

// Send implements Notifier.
func (Noop) Send(context.Context, *model.User, *model.Item, string) error { return nil }
