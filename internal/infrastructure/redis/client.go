package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialTimeout bounds the initial connection check.
const dialTimeout = 5 * time.Second

// NewClient creates a Redis client from a redis:// URL and verifies it.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Checker reports redis readiness.
type Checker struct {
	client redis.UniversalClient
}

// NewChecker creates a readiness checker for client.
func NewChecker(client redis.UniversalClient) *Checker {
	return &Checker{client: client}
}

// Name identifies the dependency in readiness reports.
func (c *Checker) Name() string {
	return "redis"
}

// Ping returns an error when redis does not answer.
func (c *Checker) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
