package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/straye-as/project-ledger-api/internal/domain"
)

// Publisher is the part of a Redis client used for push delivery
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisDeliverer publishes notifications on a Redis channel for real-time
// consumers such as a websocket gateway
type RedisDeliverer struct {
	client  Publisher
	channel string
}

func NewRedisDeliverer(client Publisher, channel string) *RedisDeliverer {
	return &RedisDeliverer{client: client, channel: channel}
}

// pushMessage is the payload consumers receive
type pushMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (r *RedisDeliverer) Name() string { return "redis" }

func (r *RedisDeliverer) Deliver(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(pushMessage{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
