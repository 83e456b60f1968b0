package token

import (
	"context"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisBlacklist stores revoked hashes as expiring keys shared by every API instance.
type RedisBlacklist struct {
	client  redis.Cmdable
	logger  *slog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisBlacklist wraps an existing client.
func NewRedisBlacklist(client redis.Cmdable, logger *slog.Logger) *RedisBlacklist {
	return &RedisBlacklist{
		client:  client,
		logger:  logger,
		prefix:  "learnhub:blacklist:",
		timeout: 250 * time.Millisecond,
	}
}

// Add sets the key with a TTL matching the token's remaining lifetime.
func (b *RedisBlacklist) Add(ctx context.Context, hash string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.client.Set(ctx, b.prefix+hash, 1, ttl).Err(); err != nil {
		b.logRedisError("set", err)
		return err
	}
	return nil
}

// Contains checks for the key. Errors are returned to the caller, which decides the policy.
func (b *RedisBlacklist) Contains(ctx context.Context, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	n, err := b.client.Exists(ctx, b.prefix+hash).Result()
	if err != nil {
		b.logRedisError("exists", err)
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBlacklist) logRedisError(op string, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Error("redis blacklist error", "op", op, "error", err)
}
