package domain

import "github.com/shopspring/decimal"

// LoanTier is one fixed (principal, advertised annual rate) loan choice.
// The rate is informational; nothing accrues interest on a loan.
type LoanTier struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // percent, e.g. 4.5
}

// Policy holds the limits and rates a Ledger enforces.
type Policy struct {
	MaxSingleAmount         decimal.Decimal
	ConfirmThreshold        decimal.Decimal
	DefaultDailyLimit       decimal.Decimal
	LoanEligibilityDeposits decimal.Decimal
	DailyInterestRate       decimal.Decimal
	LoanTiers               []LoanTier
}

// DefaultPolicy returns the stock wallet limits.
func DefaultPolicy() Policy {
	return Policy{
		MaxSingleAmount:         decimal.NewFromInt(10000),
		ConfirmThreshold:        decimal.NewFromInt(5000),
		DefaultDailyLimit:       decimal.NewFromInt(20000),
		LoanEligibilityDeposits: decimal.NewFromInt(10000),
		DailyInterestRate:       decimal.RequireFromString("0.0005"),
		LoanTiers: []LoanTier{
			{Principal: decimal.NewFromInt(1000), AnnualRate: decimal.NewFromInt(5)},
			{Principal: decimal.NewFromInt(5000), AnnualRate: decimal.RequireFromString("4.5")},
			{Principal: decimal.NewFromInt(10000), AnnualRate: decimal.NewFromInt(4)},
			{Principal: decimal.NewFromInt(20000), AnnualRate: decimal.RequireFromString("3.5")},
		},
	}
}

// NeedsConfirmation reports whether a transfer of amount must be confirmed
// by the caller before it is executed.
func (p Policy) NeedsConfirmation(amount decimal.Decimal) bool {
	return amount.GreaterThan(p.ConfirmThreshold)
}
