package notifier

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var errNoClient = errors.New("redis client not configured")

// RedisPublisher broadcasts events over Redis pub/sub channels.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps a Redis client as a publisher.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends the payload on the given channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if p.client == nil {
		return errNoClient
	}
	return p.client.Publish(ctx, channel, payload).Err()
}

// Ping probes the Redis connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if p.client == nil {
		return errNoClient
	}
	return p.client.Ping(ctx).Err()
}
