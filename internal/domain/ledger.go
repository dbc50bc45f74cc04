package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IDSource issues unique identifiers for history records.
type IDSource interface {
	Generate() string
}

// Ledger applies the balance rules to accounts held in memory. It never
// touches storage; callers persist the accounts after each operation.
type Ledger struct {
	policy Policy
	ids    IDSource
}

// NewLedger creates a new Ledger.
func NewLedger(policy Policy, ids IDSource) *Ledger {
	return &Ledger{policy: policy, ids: ids}
}

// Policy returns the limits the ledger enforces.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// ConfirmFunc asks the caller whether a large transfer should proceed.
type ConfirmFunc func(amount decimal.Decimal) bool

// Confirmed returns a ConfirmFunc with a fixed answer.
func Confirmed(ok bool) ConfirmFunc {
	return func(decimal.Decimal) bool { return ok }
}

// TransferResult describes the outcome of a transfer that did not fail.
type TransferResult struct {
	Out       Transaction
	In        Transaction
	Cancelled bool // large transfer the caller declined to confirm
}

// Deposit credits amount to the account.
func (l *Ledger) Deposit(a *Account, amount decimal.Decimal, now time.Time) (Transaction, error) {
	if err := l.validateSingle(a, amount); err != nil {
		return Transaction{}, err
	}

	if err := a.chargeDailyLimit(amount, now); err != nil {
		return Transaction{}, err
	}

	a.Balance = a.Balance.Add(amount)
	a.TotalDeposits = a.TotalDeposits.Add(amount)

	tx := l.newTransaction(TransactionDeposit, amount, "", now)
	a.appendTransaction(tx)
	return tx, nil
}

// Withdraw debits amount from the account.
func (l *Ledger) Withdraw(a *Account, amount decimal.Decimal, now time.Time) (Transaction, error) {
	if err := l.validateSingle(a, amount); err != nil {
		return Transaction{}, err
	}

	if err := a.ValidateDebit(amount); err != nil {
		return Transaction{}, err
	}

	if err := a.chargeDailyLimit(amount, now); err != nil {
		return Transaction{}, err
	}

	a.Balance = a.Balance.Sub(amount)

	tx := l.newTransaction(TransactionWithdrawal, amount, "", now)
	a.appendTransaction(tx)
	return tx, nil
}

// Transfer moves amount from one account to another. Only the sender is
// validated and charged against its daily limit. Transfers above the
// confirmation threshold are abandoned without change unless confirm approves
// them; confirm is only consulted after the sender passed validation and may
// be nil.
func (l *Ledger) Transfer(from, to *Account, amount decimal.Decimal, confirm ConfirmFunc, now time.Time) (TransferResult, error) {
	if from.ID == to.ID {
		return TransferResult{}, ErrSameAccount
	}

	if from.Frozen {
		return TransferResult{}, ErrAccountFrozen
	}

	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}

	if err := checkCents(amount); err != nil {
		return TransferResult{}, err
	}

	if err := from.ValidateDebit(amount); err != nil {
		return TransferResult{}, err
	}

	if l.policy.NeedsConfirmation(amount) && (confirm == nil || !confirm(amount)) {
		return TransferResult{Cancelled: true}, nil
	}

	if err := from.chargeDailyLimit(amount, now); err != nil {
		return TransferResult{}, err
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	out := l.newTransaction(TransactionTransferOut, amount, to.ID, now)
	in := l.newTransaction(TransactionTransferIn, amount, from.ID, now)
	from.appendTransaction(out)
	to.appendTransaction(in)

	return TransferResult{Out: out, In: in}, nil
}

// History returns a copy of the account's records in insertion order.
func (l *Ledger) History(a *Account) []Transaction {
	out := make([]Transaction, len(a.History))
	copy(out, a.History)
	return out
}

func (l *Ledger) validateSingle(a *Account, amount decimal.Decimal) error {
	if a.Frozen {
		return ErrAccountFrozen
	}

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(l.policy.MaxSingleAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrLimitExceeded, l.policy.MaxSingleAmount.StringFixed(MoneyPlaces))
	}

	return checkCents(amount)
}

func (l *Ledger) newTransaction(typ TransactionType, amount decimal.Decimal, counterparty string, now time.Time) Transaction {
	return Transaction{
		ID:             l.ids.Generate(),
		Type:           typ,
		Amount:         amount,
		Timestamp:      now,
		CounterpartyID: counterparty,
	}
}

// checkCents rejects amounts with a fraction of a cent.
func checkCents(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	return nil
}
