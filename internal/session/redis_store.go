package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/cubo-visits/internal/datanorm"
)

const keyPrefix = "cubo:session:"

// emptyMarker is stored for a session that exists but has no data yet.
const emptyMarker = "-"

// RedisStore keeps each session's records as one JSON value with a sliding TTL,
// so several server instances can serve the same session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string { return keyPrefix + id }

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := newID()
	if err := s.client.Set(ctx, redisKey(id), emptyMarker, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]datanorm.Record, error) {
	raw, err := s.client.GetEx(ctx, redisKey(id), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if raw == emptyMarker {
		return nil, ErrEmpty
	}

	var records []datanorm.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return records, nil
}

// Replace swaps the whole record set. It fails with ErrNotFound when the
// session expired, so a late upload cannot resurrect it.
func (s *RedisStore) Replace(ctx context.Context, id string, records []datanorm.Record) error {
	if records == nil {
		records = []datanorm.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ok, err := s.client.SetXX(ctx, redisKey(id), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks connectivity, used by the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
