package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store deduplicates clock-action submissions by idempotency key. A key is
// reserved atomically with SET NX; a second submission inside the TTL window
// finds the key taken and is rejected as a duplicate.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func NewClient(addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// Reserve claims key for the given employee. It returns false when the key is
// already taken, meaning the same submission was processed before.
func (s *Store) Reserve(ctx context.Context, employeeID string, key string) (bool, error) {
	redisKey := fmt.Sprintf("timeclock:idem:%s:%s", employeeID, key)

	ok, err := s.client.SetNX(ctx, redisKey, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release frees a reserved key so a failed action can be retried with the
// same key.
func (s *Store) Release(ctx context.Context, employeeID string, key string) error {
	redisKey := fmt.Sprintf("timeclock:idem:%s:%s", employeeID, key)

	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
