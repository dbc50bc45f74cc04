package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places balances are kept at.
const MoneyPlaces = 2

// Profile holds the free-form contact details of an account holder.
type Profile struct {
	Name  string
	Email string
	Phone string
}

// Account is one wallet: its balance, limits, loan and history.
type Account struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastTransactionDate time.Time // calendar day, zero before the first transaction
	LastInterestDate    time.Time // calendar day, zero before the first accrual
	Profile             Profile
	ID                  string
	Password            string
	Balance             decimal.Decimal
	TotalDeposits       decimal.Decimal
	DailyLimit          decimal.Decimal
	DailyAccumulated    decimal.Decimal
	LoanOutstanding     decimal.Decimal
	History             []Transaction
	Version             int64
	Frozen              bool
}

// NewAccount creates a zero-balance account with default counters.
func NewAccount(id string, profile Profile, password string, dailyLimit decimal.Decimal, now time.Time) *Account {
	return &Account{
		ID:               id,
		Profile:          profile,
		Password:         password,
		Balance:          decimal.Zero,
		TotalDeposits:    decimal.Zero,
		DailyLimit:       dailyLimit,
		DailyAccumulated: decimal.Zero,
		LoanOutstanding:  decimal.Zero,
		History:          []Transaction{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CheckPassword compares the stored credential with password.
func (a *Account) CheckPassword(password string) bool {
	return a.Password == password
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// HasLoan reports whether any loan principal is unpaid.
func (a *Account) HasLoan() bool {
	return a.LoanOutstanding.IsPositive()
}

// Clone returns a deep copy whose history can be mutated independently.
func (a *Account) Clone() *Account {
	cp := *a
	cp.History = make([]Transaction, len(a.History))
	copy(cp.History, a.History)
	return &cp
}

// chargeDailyLimit adds amount to today's running volume, resetting it when
// the calendar day has changed. Crossing the limit freezes the account; the
// freeze and the charged amount stay in place even though an error is returned.
func (a *Account) chargeDailyLimit(amount decimal.Decimal, now time.Time) error {
	today := CalendarDay(now)
	if !a.LastTransactionDate.Equal(today) {
		a.LastTransactionDate = today
		a.DailyAccumulated = decimal.Zero
	}

	a.DailyAccumulated = a.DailyAccumulated.Add(amount)
	if a.DailyAccumulated.GreaterThan(a.DailyLimit) {
		a.Frozen = true
		return ErrDailyLimitExceeded
	}
	return nil
}

func (a *Account) appendTransaction(tx Transaction) {
	a.History = append(a.History, tx)
	a.UpdatedAt = tx.Timestamp
}

// CalendarDay returns the calendar date of t (in t's location) as UTC midnight,
// so two days can be compared and subtracted without DST drift.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDay(b).Sub(CalendarDay(a)) / (24 * time.Hour))
}

// RoundMoney rounds an amount to cents using banker's rounding.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}
