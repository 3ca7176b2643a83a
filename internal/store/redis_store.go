package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/wes-io-party/internal/domain"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	// SnapshotTTL of zero keeps snapshots forever.
	SnapshotTTL time.Duration
}

// redisStore implements SnapshotStore using Redis.
//
// Redis key pattern:
// {prefix}:room:{room_id}:snapshot   STRING<json>  - persisted room snapshot
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(cfg RedisConfig) (SnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "party"
	}

	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    cfg.SnapshotTTL,
	}, nil
}

func (s *redisStore) snapshotKey(roomID string) string {
	return fmt.Sprintf("%s:room:%s:snapshot", s.prefix, roomID)
}

func (s *redisStore) Load(ctx context.Context, roomID string) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapshotKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

func (s *redisStore) Save(ctx context.Context, roomID string, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.snapshotKey(roomID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}

	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
