// Package notify delivers stored notifications to users over external channels.
package notify

import (
	"context"

	"irisai/internal/models"
)

// Notifier delivers one notification to one user. Implementations return nil
// when the user has no address on their channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, user models.User, n models.Notification) error
}
