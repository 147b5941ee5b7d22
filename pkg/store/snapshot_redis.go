package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearfreight/tariffcore/pkg/engine"
)

var ErrSnapshotNotFound = errors.New("store: context snapshot not found")

// RedisSnapshotStore keeps interim classification contexts in Redis so a
// broker session can resume after a process restart. Snapshots expire: an
// abandoned classification self-cleans instead of lingering forever.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore connects to Redis. ttl <= 0 defaults to 24 hours.
func NewRedisSnapshotStore(addr, password string, db int, ttl time.Duration) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSnapshotStore{client: rdb, ttl: ttl}
}

func snapshotKey(classificationID string) string {
	return fmt.Sprintf("tariffcore:snapshot:%s", classificationID)
}

// Save overwrites the snapshot for the context's classification id and
// refreshes its expiry.
func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot *engine.Context) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snapshot.ClassificationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot, or ErrSnapshotNotFound.
func (s *RedisSnapshotStore) Load(ctx context.Context, classificationID string) (*engine.Context, error) {
	data, err := s.client.Get(ctx, snapshotKey(classificationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}
	var snapshot engine.Context
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Delete removes a snapshot, typically after the classification completes and
// its export is archived. Deleting a missing snapshot is not an error.
func (s *RedisSnapshotStore) Delete(ctx context.Context, classificationID string) error {
	if err := s.client.Del(ctx, snapshotKey(classificationID)).Err(); err != nil {
		return fmt.Errorf("store: delete snapshot: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisSnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
