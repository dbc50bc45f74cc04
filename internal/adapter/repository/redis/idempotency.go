package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gowallet/internal/usecase"
)

const pendingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "wallet:idempotency:",
	}
}

// Reserve claims key for the caller. It returns (nil, nil) when the key was
// free, the stored response when a previous request completed, and
// usecase.ErrRequestInFlight while another request holds the key.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) ([]byte, error) {
	fullKey := s.prefix + key

	// The key can expire between SETNX and GET, so try twice.
	for range 2 {
		set, err := s.client.SetNX(ctx, fullKey, pendingMarker, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if set {
			return nil, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read idempotency key: %w", err)
		}
		if string(existing) == pendingMarker {
			return nil, usecase.ErrRequestInFlight
		}
		return existing, nil
	}

	return nil, usecase.ErrRequestInFlight
}

// Complete stores the final response for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release drops a reservation so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
