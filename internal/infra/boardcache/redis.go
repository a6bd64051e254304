package boardcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/runoshun/mdboard/internal/domain"
)

// RedisBackend shares board snapshots between processes as JSON with a TTL.
type RedisBackend struct {
	redis *redis.Client
	ttl   time.Duration
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a backend on client. A zero TTL disables storing.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	if client == nil {
		panic("boardcache.NewRedisBackend: client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisBackend{redis: client, ttl: ttl}
}

// Load returns the stored snapshot. Unreadable entries are evicted and reported as a miss.
func (r *RedisBackend) Load(ctx context.Context, key string) (*domain.Board, bool) {
	data, err := r.redis.Get(ctx, boardCacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			_ = r.redis.Del(ctx, boardCacheKey(key)).Err()
		}
		return nil, false
	}
	var board domain.Board
	if err := json.Unmarshal(data, &board); err != nil {
		_ = r.redis.Del(ctx, boardCacheKey(key)).Err()
		return nil, false
	}
	return &board, true
}

// Store writes the snapshot with the configured TTL.
func (r *RedisBackend) Store(ctx context.Context, key string, board *domain.Board) error {
	if r.ttl == 0 {
		return nil
	}
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, boardCacheKey(key), data, r.ttl).Err()
}

// Evict removes the snapshot.
func (r *RedisBackend) Evict(ctx context.Context, key string) error {
	return r.redis.Del(ctx, boardCacheKey(key)).Err()
}

func boardCacheKey(key string) string {
	return "mdboard:board:" + key
}
