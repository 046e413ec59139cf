package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadgen-service/internal/domain"
)

// NotificationQueue is a Redis list shared by every instance:
//
//	LPUSH {key} <json>   on enqueue
//	BRPOP {key} <poll>   on dequeue
//
// Notifications survive process restarts as long as Redis keeps the list.
type NotificationQueue struct {
	client *redis.Client
	key    string
	poll   time.Duration
}

func NewNotificationQueue(client *redis.Client, key string) *NotificationQueue {
	if key == "" {
		key = "leadgen:notifications"
	}
	return &NotificationQueue{client: client, key: key, poll: time.Second}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Dequeue polls with a short BRPOP so cancellation is noticed promptly.
func (q *NotificationQueue) Dequeue(ctx context.Context) (domain.Notification, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Notification{}, err
		}
		res, err := q.client.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return domain.Notification{}, fmt.Errorf("pop notification: %w", err)
		}
		// BRPOP replies with [key, value].
		var n domain.Notification
		if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
			return domain.Notification{}, fmt.Errorf("decode notification: %w", err)
		}
		return n, nil
	}
}

// Len reports the number of queued notifications.
func (q *NotificationQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
