package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/PoluyanbIch/exambot/internal/metrics"
)

// Notification is a plain text message for a chat.
type Notification struct {
	ChatID int64
	Text   string
}

// Notifier delivers notifications over the chat transport.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationQueue decouples admin notifications from the answering flow.
// Delivery failures are logged and never reach the user.
type NotificationQueue struct {
	notifier Notifier
	queue    chan Notification
	logger   zerolog.Logger
}

func NewNotificationQueue(notifier Notifier, size int, logger zerolog.Logger) *NotificationQueue {
	if size <= 0 {
		size = 64
	}
	return &NotificationQueue{
		notifier: notifier,
		queue:    make(chan Notification, size),
		logger:   logger.With().Str("component", "notification_queue").Logger(),
	}
}

// Enqueue never blocks; when the buffer is full the notification is dropped.
func (q *NotificationQueue) Enqueue(n Notification) {
	select {
	case q.queue <- n:
	default:
		metrics.NotificationFailures.Inc()
		q.logger.Warn().Int64("chat_id", n.ChatID).Msg("notification queue full, dropping message")
	}
}

// Run delivers queued notifications until the context is cancelled, then
// flushes whatever is still buffered.
func (q *NotificationQueue) Run(ctx context.Context) error {
	q.logger.Info().Msg("notification queue started")
	for {
		select {
		case <-ctx.Done():
			q.drain()
			q.logger.Info().Msg("notification queue stopped")
			return ctx.Err()
		case n := <-q.queue:
			q.deliver(ctx, n)
		}
	}
}

func (q *NotificationQueue) drain() {
	for {
		select {
		case n := <-q.queue:
			q.deliver(context.Background(), n)
		default:
			return
		}
	}
}

func (q *NotificationQueue) deliver(ctx context.Context, n Notification) {
	if err := q.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		q.logger.Error().Err(err).Int64("chat_id", n.ChatID).Msg("notification delivery failed")
	}
}
