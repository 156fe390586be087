package realtime

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher publishes envelopes on Redis pub/sub, one Redis channel per
// realtime channel.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to the Redis server at url
// (redis://[:password@]host:port/db) and verifies it answers.
func NewRedisPublisher(ctx context.Context, url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("realtime.NewRedisPublisher: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("realtime.NewRedisPublisher: ping: %w", err)
	}
	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	b, err := encode(event, payload)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, channel, b).Err(); err != nil {
		return fmt.Errorf("realtime.RedisPublisher.Publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
