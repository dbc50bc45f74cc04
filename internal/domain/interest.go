package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestResult reports what an accrual run did.
type InterestResult struct {
	Interest    decimal.Decimal
	Days        int
	Initialized bool // first run only recorded today's date
}

// Changed reports whether the account needs to be persisted.
func (r InterestResult) Changed() bool {
	return r.Initialized || r.Days > 0
}

// AddDailyInterest compounds the daily rate once per calendar day elapsed
// since the last accrual, rounding to cents after every step. The first call
// only records today as the baseline. Frozen accounts earn nothing but the
// date still advances so no interest is paid retroactively.
func (l *Ledger) AddDailyInterest(a *Account, now time.Time) InterestResult {
	today := CalendarDay(now)

	if a.LastInterestDate.IsZero() {
		a.LastInterestDate = today
		return InterestResult{Interest: decimal.Zero, Initialized: true}
	}

	days := DaysBetween(a.LastInterestDate, today)
	if days <= 0 {
		return InterestResult{Interest: decimal.Zero}
	}

	before := a.Balance
	if !a.Frozen {
		factor := decimal.NewFromInt(1).Add(l.policy.DailyInterestRate)
		for range days {
			a.Balance = RoundMoney(a.Balance.Mul(factor))
		}
	}
	a.LastInterestDate = today
	a.UpdatedAt = now

	return InterestResult{Interest: a.Balance.Sub(before), Days: days}
}
