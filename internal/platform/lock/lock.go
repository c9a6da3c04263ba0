// Package lock provides the distributed locks that serialise supplier imports.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/resale-ops/internal/config"
)

// ErrLocked is returned when another holder owns the key.
var ErrLocked = errors.New("lock is held by another process")

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker obtains exclusive, expiring leases on keys.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return client, nil
}

type RedisLocker struct {
	client *redislock.Client
	logger *slog.Logger
}

func NewRedisLocker(client redislock.RedisClient, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		logger: logger,
	}
}

// Obtain tries once to take the key. Contention maps to ErrLocked.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	held, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLocked
		}
		l.logger.Error("Failed to obtain lock", "key", key, "error", err)
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return held, nil
}

// NopLocker grants every lease. Used when Redis is not configured and by
// single-process tools.
type NopLocker struct{}

func (NopLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	return nopLease{}, nil
}

type nopLease struct{}

func (nopLease) Release(ctx context.Context) error { return nil }

// NewLockerFromConfig returns a Redis backed locker, or a NopLocker when no
// Redis address is configured. The returned func closes the Redis client.
func NewLockerFromConfig(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (Locker, func() error, error) {
	if cfg.Addr == "" {
		logger.Warn("Redis is not configured, supplier import locks are process local")
		return NopLocker{}, func() error { return nil }, nil
	}
	client, err := NewRedisClient(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisLocker(client, logger), client.Close, nil
}
