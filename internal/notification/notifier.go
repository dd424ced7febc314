package notification

import (
	"context"

	"cardioalert/internal/config"
	"cardioalert/pkg/logger"

	"go.uber.org/zap"
)

// Message is one push notification addressed to a channel (an FCM topic)
type Message struct {
	Channel string
	Title   string
	Body    string
	Data    map[string]string
}

// Receipt is returned for an accepted message
type Receipt struct {
	MessageID string
	Simulated bool
}

// Notifier delivers push notifications. A non-nil error means the send failed.
type Notifier interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// NewNotifier returns the FCM notifier when a server key is configured and the simulated one otherwise
func NewNotifier(cfg config.NotificationConfig) Notifier {
	if cfg.FCMServerKey == "" {
		logger.Warn("FCM not configured, notifications will be simulated", zap.Bool("simulated", true))
		return NewSimulatedNotifier()
	}
	return NewFCMNotifier(cfg)
}
