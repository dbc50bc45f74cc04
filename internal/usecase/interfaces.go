package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

var (
	// ErrCacheMiss is returned by AccountCache when nothing is stored for an id.
	ErrCacheMiss = errors.New("cache miss")
	// ErrRequestInFlight is returned by IdempotencyStore while another request
	// holds the same key.
	ErrRequestInFlight = errors.New("a request with this idempotency key is in progress")
)

// AccountRepository loads and persists account snapshots by id.
type AccountRepository interface {
	// Create stores a new account; fails with domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) error
	// GetByID fails with domain.ErrAccountNotFound.
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Save persists one account and bumps its Version.
	Save(ctx context.Context, account *domain.Account) error
	// SaveAll persists several accounts as one unit of work.
	SaveAll(ctx context.Context, accounts ...*domain.Account) error
}

// AccountCache holds account snapshots for a bounded time.
type AccountCache interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	Set(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, ids ...string) error
}

// IdempotencyStore remembers responses to mutating requests by client key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) ([]byte, error)
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Recorder receives operation outcomes for metrics.
type Recorder interface {
	RecordOperation(operation string, amount decimal.Decimal)
	RecordFailure(operation string, err error)
	RecordFreeze(accountID string)
	RecordInterest(days int, interest decimal.Decimal)
}

// SystemClock is a Clock backed by time.Now in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, decimal.Decimal) {}
func (nopRecorder) RecordFailure(string, error)             {}
func (nopRecorder) RecordFreeze(string)                     {}
func (nopRecorder) RecordInterest(int, decimal.Decimal)     {}
