package db

import (
	"github.com/redis/go-redis/v9"

	"paylinks/internal/config"
)

// NewRedis creates a Redis client. Connectivity is checked lazily by the
// repository Ping.
func NewRedis(cfg config.StoreConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
}
