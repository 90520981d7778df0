// Package notify publishes user-facing events to the real-time layer over
// Redis pub/sub. Delivery is best-effort: a user without a live session
// simply misses the event, and publish failures are logged and swallowed.
package notify

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Pub/sub channels consumed by the socket gateway.
const (
	emitChannel       = "socket:emit"
	disconnectChannel = "socket:disconnect"
)

// Event names delivered to user sessions.
const (
	EventBanUser             = "banUser"
	EventWarnUser            = "warnUser"
	EventWarn                = "warn"
	EventStrikeReceived      = "strikeReceived"
	EventReportStatusChanged = "reportStatusChanged"
)

type socketEvent struct {
	UserID string `json:"userId"`
	Event  string `json:"event"`
	Data   any    `json:"data"`
}

// Notifier delivers events to live user sessions.
type Notifier struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewNotifier creates a notifier on the given pub/sub connection.
func NewNotifier(client rueidis.Client, logger *zap.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger.Named("notify"),
	}
}

// Notify publishes an event to the user's live sessions. Failures are
// swallowed; notifications are never part of a correctness invariant.
func (n *Notifier) Notify(ctx context.Context, userID, event string, data any) {
	payload, err := sonic.Marshal(socketEvent{UserID: userID, Event: event, Data: data})
	if err != nil {
		n.logger.Warn("Failed to marshal socket event",
			zap.String("event", event), zap.Error(err))

		return
	}

	err = n.client.Do(ctx, n.client.B().Publish().
		Channel(emitChannel).Message(string(payload)).Build()).Error()
	if err != nil {
		n.logger.Warn("Failed to publish socket event",
			zap.String("user_id", userID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// Disconnect signals the socket gateway to drop all of the user's live
// connections, used when an account is banned mid-session.
func (n *Notifier) Disconnect(ctx context.Context, userID string) {
	payload, err := sonic.Marshal(userID)
	if err != nil {
		n.logger.Warn("Failed to marshal disconnect signal", zap.Error(err))

		return
	}

	err = n.client.Do(ctx, n.client.B().Publish().
		Channel(disconnectChannel).Message(string(payload)).Build()).Error()
	if err != nil {
		n.logger.Warn("Failed to publish disconnect signal",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
