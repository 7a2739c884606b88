package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/firmatch/jobmatch-backend/pkg/config"
	"github.com/firmatch/jobmatch-backend/pkg/retry"
)

// Client wraps the go-redis connection behind the preference cache.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection with a short
// backoff. The cache is optional at startup, so the budget is tighter
// than the database one.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := retry.Do(
		context.Background(),
		retry.Config{
			MaxAttempts:     3,
			InitialDelay:    200 * time.Millisecond,
			MaxDelay:        2 * time.Second,
			BackoffFactor:   2.0,
			MaxTotalTimeout: 10 * time.Second,
		},
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err()
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Redis connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
