package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps snapshots for ttl after their last write; 0 keeps them
// forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func viewKey(viewID string) string {
	return "orderdesk:view:" + viewID
}

func (r *RedisStore) Load(ctx context.Context, viewID string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, viewKey(viewID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	return &snap, json.Unmarshal(data, &snap)
}

func (r *RedisStore) Save(ctx context.Context, viewID string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, viewKey(viewID), data, r.ttl).Err()
}

func (r *RedisStore) Drop(ctx context.Context, viewID string) error {
	return r.client.Del(ctx, viewKey(viewID)).Err()
}

// Ping reports whether the Redis server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
