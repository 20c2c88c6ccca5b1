package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const consumedPrefix = "rt:"

// RedisTokenRepo remembers consumed refresh-token ids until the token would
// have expired anyway.
type RedisTokenRepo struct {
	client *redis.Client
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
	}
}

// Consume is a single SET NX, so of two concurrent callers exactly one gets true.
func (r *RedisTokenRepo) Consume(ctx context.Context, jti string, exp time.Time) (bool, error) {
	return r.client.SetNX(ctx, consumedPrefix+jti, 1, safeTTL(exp)).Result()
}

// Ping backs the redis health probe.
func (r *RedisTokenRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func safeTTL(exp time.Time) time.Duration {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// the token is already dead; keep the marker briefly so the key still expires
		return time.Minute
	}
	return ttl
}
