// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"apptdesk/config"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient holds conversation histories when Redis is configured.
var SessionCacheClient *redis.Client

// InitSessionCache connects the Redis client used for conversation sessions.
func InitSessionCache() (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (sessions): %w", err)
	}
	SessionCacheClient = client
	return client, nil
}

// RedisEnabled reports whether a Redis address is configured at all.
func RedisEnabled() bool {
	return config.AppConfig.RedisAddr != ""
}
