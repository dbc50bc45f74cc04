package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gowallet/internal/adapter/repository/snapshot"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// DefaultCacheTTL bounds how long a snapshot may be served from the cache.
const DefaultCacheTTL = 5 * time.Minute

// AccountCache implements usecase.AccountCache using Redis. Entries expire
// after ttl.
type AccountCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewAccountCache creates a new AccountCache. A non-positive ttl selects
// DefaultCacheTTL.
func NewAccountCache(client redis.UniversalClient, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &AccountCache{
		client: client,
		prefix: "wallet:account:",
		ttl:    ttl,
	}
}

// Get returns the cached account or usecase.ErrCacheMiss.
func (c *AccountCache) Get(ctx context.Context, id string) (*domain.Account, error) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, err
	}

	account, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("cached account %s: %w", id, err)
	}
	return account, nil
}

// Set stores a snapshot of account.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account) error {
	data, err := snapshot.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", account.ID, err)
	}
	return c.client.Set(ctx, c.prefix+account.ID, data, c.ttl).Err()
}

// Delete evicts the given ids.
func (c *AccountCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.prefix + id
	}
	return c.client.Del(ctx, keys...).Err()
}
