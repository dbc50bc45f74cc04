package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/repository/snapshot"
	"github.com/iho/gowallet/internal/domain"
)

const (
	insertAccountSQL = `INSERT INTO wallet_accounts (id, version, data, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO NOTHING`

	selectAccountSQL = `SELECT version, data FROM wallet_accounts WHERE id = $1`

	existsAccountSQL = `SELECT EXISTS (SELECT 1 FROM wallet_accounts WHERE id = $1)`

	updateAccountSQL = `UPDATE wallet_accounts
SET version = $2, data = $3, updated_at = now()
WHERE id = $1 AND version = $4`
)

// AccountRepository implements usecase.AccountRepository with one JSONB row
// per account. Saves are guarded by the row version.
type AccountRepository struct {
	tx      *TxManager
	pool    pgxPool
	retrier *Retrier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool pgxPool, logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		tx:      newTxManagerWithPool(pool),
		pool:    pool,
		retrier: NewRetrier(logger),
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	next := account.Clone()
	next.Version = 1

	data, err := snapshot.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", account.ID, err)
	}

	tag, err := r.pool.Exec(ctx, insertAccountSQL, next.ID, next.Version, data)
	if err != nil {
		return fmt.Errorf("insert account %s: %w", account.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountExists
	}

	account.Version = next.Version
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var (
		version int64
		data    []byte
	)
	err := r.pool.QueryRow(ctx, selectAccountSQL, id).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("select account %s: %w", id, err)
	}

	account, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}
	account.ID = id
	account.Version = version

	return account, nil
}

// Exists reports whether a row exists for id.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, existsAccountSQL, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account %s: %w", id, err)
	}
	return exists, nil
}

// Save persists one account.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.SaveAll(ctx, account)
}

// SaveAll updates every account in one database transaction. A row whose
// version moved since it was loaded fails the whole batch with
// domain.ErrVersionConflict.
func (r *AccountRepository) SaveAll(ctx context.Context, accounts ...*domain.Account) error {
	payloads := make([][]byte, len(accounts))
	for i, a := range accounts {
		next := a.Clone()
		next.Version++

		data, err := snapshot.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode account %s: %w", a.ID, err)
		}
		payloads[i] = data
	}

	err := r.retrier.Retry(ctx, func() error {
		return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
			for i, a := range accounts {
				tag, err := tx.Exec(ctx, updateAccountSQL, a.ID, a.Version+1, payloads[i], a.Version)
				if err != nil {
					return fmt.Errorf("update account %s: %w", a.ID, err)
				}
				if tag.RowsAffected() == 0 {
					return r.missingRow(ctx, tx, a)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, a := range accounts {
		a.Version++
	}
	return nil
}

func (r *AccountRepository) missingRow(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	var exists bool
	if err := tx.QueryRow(ctx, existsAccountSQL, a.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check account %s: %w", a.ID, err)
	}
	if !exists {
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("%w: account %s at version %d", domain.ErrVersionConflict, a.ID, a.Version)
}
