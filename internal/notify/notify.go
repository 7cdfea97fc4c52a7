// Package notify shows desktop notifications for session boundaries.
package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
)

// DesktopNotifier implements domain.Notifier using the platform notification
// service. Notifications are best effort; callers swallow failures.
type DesktopNotifier struct {
	logger *zap.Logger
}

// NewDesktopNotifier creates a desktop notifier.
func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{logger: logger}
}

// Notify shows the notification.
func (n *DesktopNotifier) Notify(title, message string) error {
	n.logger.Debug("showing notification", zap.String("title", title))
	return beeep.Notify(title, message, "")
}

// NopNotifier discards notifications. Used when the daemon runs headless.
type NopNotifier struct{}

func (NopNotifier) Notify(title, message string) error { return nil }

// Ensure both implement domain.Notifier.
var (
	_ domain.Notifier = (*DesktopNotifier)(nil)
	_ domain.Notifier = NopNotifier{}
)
