package events

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers an event payload to a pub/sub topic. Implementations
// make no delivery or ordering guarantees; subscribers are outside this
// service's scope.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// RedisPublisher publishes events on Redis channels, the transport the
// dashboard's sibling services subscribe to.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing Redis connection.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	if client == nil {
		return nil
	}
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return p.client.Publish(ctx, topic, payload).Err()
}

// NoopPublisher drops every event. Used when Redis is unavailable so the
// write path keeps its shape without a live pub/sub transport.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }
