package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// WalletUseCase runs ledger operations against persisted accounts. Every
// mutating call locks the accounts it touches, loads them, applies the
// domain rule and persists the result.
type WalletUseCase struct {
	repo     AccountRepository
	ledger   *domain.Ledger
	clock    Clock
	locks    *accountLocks
	logger   zerolog.Logger
	recorder Recorder
}

// Config holds WalletUseCase dependencies.
type Config struct {
	Repo     AccountRepository
	Ledger   *domain.Ledger
	Clock    Clock           // defaults to SystemClock in local time
	Logger   *zerolog.Logger // defaults to a disabled logger
	Recorder Recorder        // defaults to a no-op recorder
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(cfg Config) *WalletUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &WalletUseCase{
		repo:     cfg.Repo,
		ledger:   cfg.Ledger,
		clock:    cfg.Clock,
		locks:    newAccountLocks(),
		logger:   logger.With().Str("component", "wallet").Logger(),
		recorder: cfg.Recorder,
	}
}

// Policy returns the limits enforced by the underlying ledger.
func (uc *WalletUseCase) Policy() domain.Policy {
	return uc.ledger.Policy()
}

// AmountInput names an account and an amount.
type AmountInput struct {
	AccountID string
	Amount    decimal.Decimal
}

// OperationResult is the outcome of a single-account balance change.
type OperationResult struct {
	Account     *domain.Account
	Transaction domain.Transaction
}

// Deposit credits an account.
func (uc *WalletUseCase) Deposit(ctx context.Context, input AmountInput) (*OperationResult, error) {
	return uc.applySingle(ctx, OpDeposit, input, uc.ledger.Deposit)
}

// Withdraw debits an account.
func (uc *WalletUseCase) Withdraw(ctx context.Context, input AmountInput) (*OperationResult, error) {
	return uc.applySingle(ctx, OpWithdraw, input, uc.ledger.Withdraw)
}

type singleOp func(a *domain.Account, amount decimal.Decimal, now time.Time) (domain.Transaction, error)

func (uc *WalletUseCase) applySingle(ctx context.Context, op string, input AmountInput, apply singleOp) (*OperationResult, error) {
	unlock := uc.locks.lock(input.AccountID)
	defer unlock()

	account, err := uc.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, uc.fail(op, input.AccountID, err)
	}

	tx, err := apply(account, input.Amount, uc.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimitExceeded) {
			err = uc.persistFreeze(ctx, account, err)
		}
		return nil, uc.fail(op, input.AccountID, err)
	}

	if err := uc.repo.Save(ctx, account); err != nil {
		return nil, uc.fail(op, input.AccountID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	uc.committed(op, account, tx.Amount)
	return &OperationResult{Account: account, Transaction: tx}, nil
}

// TransferInput represents input for a transfer. Confirm is consulted for
// amounts above the confirmation threshold; nil declines them.
type TransferInput struct {
	Confirm       domain.ConfirmFunc
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// TransferOutput is the outcome of a transfer that did not fail.
type TransferOutput struct {
	From      *domain.Account
	To        *domain.Account
	Out       domain.Transaction
	In        domain.Transaction
	Cancelled bool
}

// Transfer moves money between two accounts and persists both in one unit
// of work.
func (uc *WalletUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferOutput, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, uc.fail(OpTransfer, input.FromAccountID, domain.ErrSameAccount)
	}

	unlock := uc.locks.lock(input.FromAccountID, input.ToAccountID)
	defer unlock()

	from, err := uc.repo.GetByID(ctx, input.FromAccountID)
	if err != nil {
		return nil, uc.fail(OpTransfer, input.FromAccountID, err)
	}

	to, err := uc.repo.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, uc.fail(OpTransfer, input.FromAccountID, fmt.Errorf("recipient %s: %w", input.ToAccountID, err))
	}

	res, err := uc.ledger.Transfer(from, to, input.Amount, input.Confirm, uc.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimitExceeded) {
			err = uc.persistFreeze(ctx, from, err)
		}
		return nil, uc.fail(OpTransfer, input.FromAccountID, err)
	}

	if res.Cancelled {
		uc.logger.Info().
			Str("operation", OpTransfer).
			Str("account_id", from.ID).
			Str("to_account_id", to.ID).
			Str("amount", input.Amount.StringFixed(domain.MoneyPlaces)).
			Msg("transfer cancelled by caller")
		return &TransferOutput{From: from, To: to, Cancelled: true}, nil
	}

	if err := uc.repo.SaveAll(ctx, from, to); err != nil {
		return nil, uc.fail(OpTransfer, from.ID, fmt.Errorf("save transfer %s -> %s: %w", from.ID, to.ID, err))
	}

	uc.committed(OpTransfer, from, input.Amount)
	return &TransferOutput{From: from, To: to, Out: res.Out, In: res.In}, nil
}

// LoanOptions reports the loan actions available to an account.
func (uc *WalletUseCase) LoanOptions(ctx context.Context, accountID string) (domain.LoanOptions, error) {
	account, err := uc.repo.GetByID(ctx, accountID)
	if err != nil {
		return domain.LoanOptions{}, err
	}
	return uc.ledger.LoanOptions(account), nil
}

// LoanInput selects a loan tier by zero-based index.
type LoanInput struct {
	AccountID string
	Tier      int
}

// LoanOutput is the outcome of a loan issue.
type LoanOutput struct {
	Account     *domain.Account
	Tier        domain.LoanTier
	Transaction domain.Transaction
}

// IssueLoan grants the selected loan tier.
func (uc *WalletUseCase) IssueLoan(ctx context.Context, input LoanInput) (*LoanOutput, error) {
	unlock := uc.locks.lock(input.AccountID)
	defer unlock()

	account, err := uc.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, uc.fail(OpLoan, input.AccountID, err)
	}

	tx, tier, err := uc.ledger.IssueLoan(account, input.Tier, uc.clock.Now())
	if err != nil {
		return nil, uc.fail(OpLoan, input.AccountID, err)
	}

	if err := uc.repo.Save(ctx, account); err != nil {
		return nil, uc.fail(OpLoan, input.AccountID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	uc.committed(OpLoan, account, tx.Amount)
	return &LoanOutput{Account: account, Tier: tier, Transaction: tx}, nil
}

// RepayOutput is the outcome of a repayment. Skipped is set when a zero
// amount was supplied and nothing changed.
type RepayOutput struct {
	Account     *domain.Account
	Transaction domain.Transaction
	Skipped     bool
}

// RepayLoan pays down the outstanding loan.
func (uc *WalletUseCase) RepayLoan(ctx context.Context, input AmountInput) (*RepayOutput, error) {
	unlock := uc.locks.lock(input.AccountID)
	defer unlock()

	account, err := uc.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, uc.fail(OpRepay, input.AccountID, err)
	}

	tx, ok, err := uc.ledger.RepayLoan(account, input.Amount, uc.clock.Now())
	if err != nil {
		return nil, uc.fail(OpRepay, input.AccountID, err)
	}
	if !ok {
		return &RepayOutput{Account: account, Skipped: true}, nil
	}

	if err := uc.repo.Save(ctx, account); err != nil {
		return nil, uc.fail(OpRepay, input.AccountID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	uc.committed(OpRepay, account, tx.Amount)
	return &RepayOutput{Account: account, Transaction: tx}, nil
}

// InterestOutput is the outcome of an accrual run.
type InterestOutput struct {
	Account *domain.Account
	Result  domain.InterestResult
}

// AddDailyInterest accrues interest for the days elapsed since the last run.
func (uc *WalletUseCase) AddDailyInterest(ctx context.Context, accountID string) (*InterestOutput, error) {
	unlock := uc.locks.lock(accountID)
	defer unlock()

	account, err := uc.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, uc.fail(OpInterest, accountID, err)
	}

	res, err := uc.accrueInterest(ctx, account)
	if err != nil {
		return nil, err
	}

	return &InterestOutput{Account: account, Result: res}, nil
}

// accrueInterest runs accrual on an already locked and loaded account.
func (uc *WalletUseCase) accrueInterest(ctx context.Context, account *domain.Account) (domain.InterestResult, error) {
	res := uc.ledger.AddDailyInterest(account, uc.clock.Now())
	if !res.Changed() {
		return res, nil
	}

	if err := uc.repo.Save(ctx, account); err != nil {
		return res, uc.fail(OpInterest, account.ID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	if res.Days > 0 {
		uc.recorder.RecordInterest(res.Days, res.Interest)
		uc.logger.Info().
			Str("operation", OpInterest).
			Str("account_id", account.ID).
			Int("days", res.Days).
			Str("interest", res.Interest.StringFixed(domain.MoneyPlaces)).
			Str("balance", account.Balance.StringFixed(domain.MoneyPlaces)).
			Msg("interest applied")
	}

	return res, nil
}

// History returns the account's records in the order they were appended.
func (uc *WalletUseCase) History(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	account, err := uc.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return uc.ledger.History(account), nil
}

// GetAccount retrieves an account by ID.
func (uc *WalletUseCase) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return uc.repo.GetByID(ctx, accountID)
}

// persistFreeze saves an account the daily limit just froze, so the freeze
// outlives the failed operation.
func (uc *WalletUseCase) persistFreeze(ctx context.Context, account *domain.Account, cause error) error {
	uc.recorder.RecordFreeze(account.ID)
	uc.logger.Warn().
		Str("account_id", account.ID).
		Str("daily_accumulated", account.DailyAccumulated.StringFixed(domain.MoneyPlaces)).
		Str("daily_limit", account.DailyLimit.StringFixed(domain.MoneyPlaces)).
		Msg("daily limit exceeded, account frozen")

	if err := uc.repo.Save(ctx, account); err != nil {
		return errors.Join(cause, fmt.Errorf("persist frozen account %s: %w", account.ID, err))
	}
	return cause
}

func (uc *WalletUseCase) committed(op string, account *domain.Account, amount decimal.Decimal) {
	uc.recorder.RecordOperation(op, amount)
	uc.logger.Info().
		Str("operation", op).
		Str("account_id", account.ID).
		Str("amount", amount.StringFixed(domain.MoneyPlaces)).
		Str("balance", account.Balance.StringFixed(domain.MoneyPlaces)).
		Msg("operation committed")
}

func (uc *WalletUseCase) fail(op, accountID string, err error) error {
	uc.recorder.RecordFailure(op, err)

	event := uc.logger.Info()
	if !isDomainError(err) {
		event = uc.logger.Error()
	}
	event.Err(err).Str("operation", op).Str("account_id", accountID).Msg("operation failed")

	return err
}

var domainErrors = []error{
	domain.ErrAccountNotFound,
	domain.ErrAccountExists,
	domain.ErrAccountFrozen,
	domain.ErrAuthFailure,
	domain.ErrInvalidAmount,
	domain.ErrLimitExceeded,
	domain.ErrInsufficientFunds,
	domain.ErrDailyLimitExceeded,
	domain.ErrSameAccount,
	domain.ErrIneligibleForLoan,
	domain.ErrLoanOutstanding,
	domain.ErrNoOutstandingLoan,
	domain.ErrInvalidLoanTier,
	domain.ErrInvalidAccountID,
	domain.ErrInvalidName,
	domain.ErrInvalidEmail,
	domain.ErrInvalidPhone,
	domain.ErrInvalidPassword,
	domain.ErrInvalidField,
}

// isDomainError reports whether err is an expected business-rule rejection
// rather than an infrastructure failure.
func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
