package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns nil without error when no address is configured;
// callers treat a nil client as "rate limiting disabled".
func ConnectRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Address == "" {
		logger.Warn("REDIS_ADDRESS not set, issue rate limiting disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("address", cfg.Address))
	return client, nil
}
