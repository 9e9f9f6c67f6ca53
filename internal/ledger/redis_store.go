package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis, one JSON object per scope key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed ledger store
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "slotlock:",
	}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "slotlock:",
	}
}

func (s *RedisStore) key(scopeKey string) string {
	return s.prefix + scopeKey
}

// Get reads the assignment map for a scope. A missing key yields an empty
// map; a corrupt value is logged and also yields an empty map, so a damaged
// ledger entry never blocks a reconciliation pass.
func (s *RedisStore) Get(ctx context.Context, scopeKey string) (map[string]int, error) {
	jsonData, err := s.client.Get(ctx, s.key(scopeKey)).Result()
	if err == redis.Nil {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", scopeKey, err)
	}

	assignments := map[string]int{}
	if err := json.Unmarshal([]byte(jsonData), &assignments); err != nil {
		log.Printf("ledger: corrupt value for scope %s, starting fresh: %v", scopeKey, err)
		return map[string]int{}, nil
	}
	return assignments, nil
}

// Put replaces the stored assignment map for a scope.
func (s *RedisStore) Put(ctx context.Context, scopeKey string, assignments map[string]int) error {
	jsonData, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("marshal ledger %s: %w", scopeKey, err)
	}
	if err := s.client.Set(ctx, s.key(scopeKey), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("write ledger %s: %w", scopeKey, err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
