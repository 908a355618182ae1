package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"membership_backend/internals/configs"
)

// ConnectRedis returns nil when REDIS_ADDR is empty; callers fall back to in-process state.
func ConnectRedis(cfg *configs.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, rate limits stay in-process")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Println("✅ Redis connected.")
	return rdb, nil
}
