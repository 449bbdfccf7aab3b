package redis

import (
	"context"
	"fmt"

	"herba-guide/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to the history document store and verifies the
// connection before returning.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
