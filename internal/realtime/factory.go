package realtime

import (
	"context"
	"fmt"
)

// Backend names accepted by New.
const (
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendAMQP  = "amqp"
)

// Config selects and configures a Publisher.
type Config struct {
	Backend  string
	RedisURL string
	AMQPURL  string
	Exchange string
}

// New builds the Publisher named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NopPublisher{}, nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("realtime.New: REDIS_URL is required for the redis backend")
		}
		return NewRedisPublisher(ctx, cfg.RedisURL)
	case BackendAMQP:
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("realtime.New: AMQP_URL is required for the amqp backend")
		}
		return NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	default:
		return nil, fmt.Errorf("realtime.New: unknown backend %q", cfg.Backend)
	}
}
