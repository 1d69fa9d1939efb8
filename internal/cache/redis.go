package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

// NewRedisClient connects to redis using REDIS_ADDR and verifies the
// connection with a bounded ping.
func NewRedisClient(log *logger.Logger) (*goredis.Client, error) {
	addr := utils.GetEnv("REDIS_ADDR", "localhost:6379", log)
	password := utils.GetEnv("REDIS_PASSWORD", "", log)

	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisCache is the shared backend for multi-instance deployments. Redis
// errors are logged and treated as misses so AI features degrade to
// uncached calls rather than failing.
type RedisCache struct {
	client *goredis.Client
	log    *logger.Logger
}

func NewRedisCache(client *goredis.Client, baseLog *logger.Logger) *RedisCache {
	return &RedisCache{client: client, log: baseLog.With("cache", "redis")}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("Redis get failed, treating as miss", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("Redis set failed, dropping entry", "key", key, "error", err)
	}
}
