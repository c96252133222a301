package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrMiss is returned by Get when the key is absent or already evicted.
var ErrMiss = errors.New("cache miss")

type RedisClient[T any] struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisClient[T any](client *redis.Client, logger zerolog.Logger) *RedisClient[T] {
	logger = logger.With().Str("component", "RedisClient").Logger()
	return &RedisClient[T]{client: client, logger: logger}
}

// Set stores value under key for expiration. A non-positive expiration is
// a no-op so already stale values never land in Redis.
func (c *RedisClient[T]) Set(
	ctx context.Context,
	key string,
	value T,
	expiration time.Duration,
) error {
	if expiration <= 0 {
		c.logger.Debug().Ctx(ctx).Str("key", key).Msg("skipping set of expired value")
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.logger.Debug().
		Ctx(ctx).
		Str("key", key).
		Dur("ttl", expiration).
		Msg("setting cache value")
	return c.client.Set(ctx, key, data, expiration).Err()
}

//nolint:ireturn
func (c *RedisClient[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrMiss
	}
	if err != nil {
		return zero, err
	}

	result := new(T)
	if err := json.Unmarshal(data, result); err != nil {
		return zero, err
	}
	return *result, nil
}
