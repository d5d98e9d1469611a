package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultBackgroundTTL bounds how long an orphaned entry can linger. It is a
// safety net, not the invalidation path: snapshots are purged explicitly and
// the stat cache expires on read.
const DefaultBackgroundTTL = 30 * 24 * time.Hour

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultBackgroundTTL
	}
	return &redisStore{rdb: rdb, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, key string) (*Entry, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := &Entry{}
	if err := json.Unmarshal(b, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *redisStore) Set(ctx context.Context, key string, entry *Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
