package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore keeps per-address timestamps in Redis sorted sets, sharing one
// window across gateway instances. Timestamps are scored in milliseconds.
type RedisStore struct {
	r      redis.Cmdable
	prefix string
}

// NewRedisStore creates a Redis-backed sliding-window store.
func NewRedisStore(r redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{r: r, prefix: prefix}
}

func (s *RedisStore) key(addr string) string {
	return s.prefix + ":ratelimit:" + addr
}

// Admit implements Store.
func (s *RedisStore) Admit(ctx context.Context, addr string, now time.Time, window time.Duration, limit int) (bool, time.Time, error) {
	key := s.key(addr)
	cutoff := now.Add(-window).UnixMilli()

	pipe := s.r.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, time.Time{}, fmt.Errorf("failed to prune rate limit window: %w", err)
	}

	if card.Val() >= int64(limit) {
		oldest, err := s.r.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil {
			return false, time.Time{}, fmt.Errorf("failed to read oldest window entry: %w", err)
		}
		if len(oldest) == 0 {
			// Window emptied between the count and this read; admit below.
			return s.record(ctx, key, now, window)
		}
		return false, time.UnixMilli(int64(oldest[0].Score)), nil
	}

	return s.record(ctx, key, now, window)
}

func (s *RedisStore) record(ctx context.Context, key string, now time.Time, window time.Duration) (bool, time.Time, error) {
	pipe := s.r.TxPipeline()
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, time.Time{}, fmt.Errorf("failed to record request timestamp: %w", err)
	}
	return true, time.Time{}, nil
}
