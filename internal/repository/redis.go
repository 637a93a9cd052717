package repository

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/config"

	"github.com/redis/go-redis/v9"
)

const quotaKeyPrefix = "showroom:quota:"

// RedisStateStore keeps API quotas and the booking audit feed in Redis so they
// are shared by every server instance.
type RedisStateStore struct {
	client     *redis.Client
	auditKey   string
	auditLimit int64
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStateStore(client *redis.Client, auditKey string, auditLimit int64) *RedisStateStore {
	return &RedisStateStore{
		client:     client,
		auditKey:   auditKey,
		auditLimit: auditLimit,
	}
}

// Allow counts one call for client in the current fixed window.
func (r *RedisStateStore) Allow(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := quotaKeyPrefix + client
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment quota: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set quota window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Append pushes an entry to the head of the audit list and trims it to the limit.
func (r *RedisStateStore) Append(ctx context.Context, entry []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.auditKey, entry)
		if r.auditLimit > 0 {
			pipe.LTrim(ctx, r.auditKey, 0, r.auditLimit-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (r *RedisStateStore) Recent(ctx context.Context, n int64) ([][]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if n <= 0 {
		return nil, nil
	}
	vals, err := r.client.LRange(ctx, r.auditKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
