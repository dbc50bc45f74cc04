package redis

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// CachedAccountRepository decorates an AccountRepository with a read-through
// cache. Successful writes refresh the cache; failed writes evict so the next
// read goes to the backing store. Cache errors never fail an operation.
type CachedAccountRepository struct {
	next   usecase.AccountRepository
	cache  usecase.AccountCache
	logger zerolog.Logger
}

// NewCachedAccountRepository creates a new CachedAccountRepository.
func NewCachedAccountRepository(next usecase.AccountRepository, cache usecase.AccountCache, logger zerolog.Logger) *CachedAccountRepository {
	return &CachedAccountRepository{
		next:   next,
		cache:  cache,
		logger: logger.With().Str("component", "account_cache").Logger(),
	}
}

// Create persists a new account and caches it.
func (r *CachedAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.next.Create(ctx, account); err != nil {
		return err
	}
	r.store(ctx, account)
	return nil
}

// GetByID serves from the cache and falls back to the wrapped repository on a miss.
func (r *CachedAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := r.cache.Get(ctx, id)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, usecase.ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("account_id", id).Msg("cache read failed")
	}

	account, err = r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, account)
	return account, nil
}

// Exists reports whether the account is cached or stored.
func (r *CachedAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := r.cache.Get(ctx, id); err == nil {
		return true, nil
	}
	return r.next.Exists(ctx, id)
}

// Save persists a single account.
func (r *CachedAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.SaveAll(ctx, account)
}

// SaveAll persists the accounts and refreshes their cache entries. A failed write evicts them.
func (r *CachedAccountRepository) SaveAll(ctx context.Context, accounts ...*domain.Account) error {
	if err := r.next.SaveAll(ctx, accounts...); err != nil {
		ids := make([]string, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID
		}
		if delErr := r.cache.Delete(ctx, ids...); delErr != nil {
			r.logger.Warn().Err(delErr).Strs("account_ids", ids).Msg("cache eviction failed")
		}
		return err
	}

	for _, a := range accounts {
		r.store(ctx, a)
	}
	return nil
}

func (r *CachedAccountRepository) store(ctx context.Context, account *domain.Account) {
	if err := r.cache.Set(ctx, account); err != nil {
		r.logger.Warn().Err(err).Str("account_id", account.ID).Msg("cache write failed")
	}
}
