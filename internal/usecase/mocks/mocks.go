package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// InMemoryAccountRepository is a map-backed AccountRepository. Stored
// accounts are cloned on the way in and out. Any *Func field overrides the
// matching method.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc  func(ctx context.Context, account *domain.Account) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Account, error)
	ExistsFunc  func(ctx context.Context, id string) (bool, error)
	SaveFunc    func(ctx context.Context, account *domain.Account) error
	SaveAllFunc func(ctx context.Context, accounts ...*domain.Account) error

	SaveCalls    int
	SaveAllCalls int
}

func NewInMemoryAccountRepository(accounts ...*domain.Account) *InMemoryAccountRepository {
	m := &InMemoryAccountRepository{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		m.accounts[a.ID] = a.Clone()
	}
	return m
}

func (m *InMemoryAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	account.Version = 1
	m.accounts[account.ID] = account.Clone()
	return nil
}

func (m *InMemoryAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Clone(), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *InMemoryAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[id]
	return ok, nil
}

func (m *InMemoryAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(account)
}

func (m *InMemoryAccountRepository) SaveAll(ctx context.Context, accounts ...*domain.Account) error {
	m.mu.Lock()
	m.SaveAllCalls++
	m.mu.Unlock()
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(ctx, accounts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		if err := m.saveLocked(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *InMemoryAccountRepository) saveLocked(account *domain.Account) error {
	stored, ok := m.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return fmt.Errorf("%w: account %s", domain.ErrVersionConflict, account.ID)
	}
	account.Version++
	m.accounts[account.ID] = account.Clone()
	return nil
}

// Stored returns the persisted copy of an account, or nil.
func (m *InMemoryAccountRepository) Stored(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Clone()
	}
	return nil
}

// StubIDGenerator returns sequential ids unless GenerateFunc is set.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (m *StubIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("tx-%d", m.counter)
}

// StubClock is a settable Clock.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(now time.Time) *StubClock {
	return &StubClock{now: now}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SpyRecorder counts Recorder calls.
type SpyRecorder struct {
	mu         sync.Mutex
	Operations map[string]int
	Failures   map[string]int
	Freezes    []string
	Interest   []decimal.Decimal
}

func NewSpyRecorder() *SpyRecorder {
	return &SpyRecorder{
		Operations: make(map[string]int),
		Failures:   make(map[string]int),
	}
}

func (r *SpyRecorder) RecordOperation(operation string, _ decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Operations[operation]++
}

func (r *SpyRecorder) RecordFailure(operation string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[operation]++
}

func (r *SpyRecorder) RecordFreeze(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Freezes = append(r.Freezes, accountID)
}

func (r *SpyRecorder) RecordInterest(_ int, interest decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Interest = append(r.Interest, interest)
}
