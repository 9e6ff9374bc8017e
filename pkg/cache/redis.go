package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"car-rental/pkg/utils"
)

// NewRedisClient connects to Redis. Returns nil when the server is
// unreachable; callers treat a nil client as "cache disabled".
func NewRedisClient(config utils.RedisConfig, logger *zap.Logger) *redis.Client {
	if config.Addr == "" {
		logger.Warn("Redis address not configured, stats cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, stats cache disabled",
			zap.String("addr", config.Addr),
			zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", config.Addr))
	return client
}
