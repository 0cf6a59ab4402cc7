package greeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "greeting:"

// RedisStore backs staged greetings with Redis so multiple instances can
// share pre-call state. TTL enforcement is delegated to Redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("greeting: redis client is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Stage(ctx context.Context, key, text string) error {
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, text, s.ttl).Err(); err != nil {
		return fmt.Errorf("greeting: stage %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Claim(ctx context.Context, key string) (string, bool, error) {
	text, err := s.rdb.GetDel(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("greeting: claim %q: %w", key, err)
	}
	return text, true, nil
}
