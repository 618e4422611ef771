package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/config"
)

// NewClient connects to redis and verifies the connection with a bounded ping.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
