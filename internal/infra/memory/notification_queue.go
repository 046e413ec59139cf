package memory

import (
	"context"

	"leadgen-service/internal/domain"
)

// NotificationQueue is a bounded in-process implementation of
// app.NotificationQueue. Enqueue never blocks: a full queue rejects work.
type NotificationQueue struct {
	ch chan domain.Notification
}

func NewNotificationQueue(size int) *NotificationQueue {
	if size < 1 {
		size = 1
	}
	return &NotificationQueue{ch: make(chan domain.Notification, size)}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- n:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

func (q *NotificationQueue) Dequeue(ctx context.Context) (domain.Notification, error) {
	select {
	case n := <-q.ch:
		return n, nil
	case <-ctx.Done():
		return domain.Notification{}, ctx.Err()
	}
}

// Len reports how many notifications are waiting.
func (q *NotificationQueue) Len() int { return len(q.ch) }
