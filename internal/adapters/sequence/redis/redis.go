package redis

import (
	"context"
	"fmt"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"restaurant-menu/internal/core/sequence"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a redis client from cfg and checks the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type counterAllocator struct {
	client    *redis.Client
	repo      port.EntityRepository
	keyPrefix string
}

// NewCounterAllocator creates an allocator backed by an atomic redis counter
// per kind and prefix. A missing counter is seeded from the latest stored
// code, so concurrent calls never receive the same code.
func NewCounterAllocator(client *redis.Client, repo port.EntityRepository, keyPrefix string) port.CodeAllocator {
	return &counterAllocator{
		client:    client,
		repo:      repo,
		keyPrefix: keyPrefix,
	}
}

// Next increments the counter of prefix and formats the result
func (a *counterAllocator) Next(ctx context.Context, kind domain.EntityKind, prefix string) (string, error) {
	key := a.key(kind, prefix)

	if err := a.seed(ctx, key, kind, prefix); err != nil {
		return "", err
	}

	n, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if n > sequence.MaxNumber {
		return "", fmt.Errorf("%w: %s", domain.ErrCodeSpaceExhausted, prefix)
	}
	return sequence.Format(prefix, int(n))
}

func (a *counterAllocator) seed(ctx context.Context, key string, kind domain.EntityKind, prefix string) error {
	exists, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", key, err)
	}
	if exists > 0 {
		return nil
	}

	last, err := a.repo.FindLatestCode(ctx, kind, prefix)
	if err != nil {
		return fmt.Errorf("failed to read latest %s code: %w", kind, err)
	}
	start := 0
	if last != nil {
		start, err = sequence.Parse(prefix, *last)
		if err != nil {
			return err
		}
	}

	// only the first caller seeds, the others increment the seeded value
	if err := a.client.SetNX(ctx, key, start, 0).Err(); err != nil {
		return fmt.Errorf("failed to seed %s: %w", key, err)
	}
	return nil
}

func (a *counterAllocator) key(kind domain.EntityKind, prefix string) string {
	return a.keyPrefix + string(kind) + ":" + prefix
}
