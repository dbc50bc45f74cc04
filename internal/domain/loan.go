package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanOptions describes what the loan menu offers an account right now.
type LoanOptions struct {
	Outstanding decimal.Decimal
	Tiers       []LoanTier // empty unless a new loan can be issued
	Eligible    bool       // lifetime deposits reached the threshold
	CanRepay    bool
	CanBorrow   bool
}

// LoanOptions reports whether the account may repay or take out a loan.
// Repayment is offered whenever a loan is outstanding, regardless of
// eligibility; new loans only when eligible and nothing is outstanding.
func (l *Ledger) LoanOptions(a *Account) LoanOptions {
	opts := LoanOptions{
		Outstanding: a.LoanOutstanding,
		Eligible:    !a.TotalDeposits.LessThan(l.policy.LoanEligibilityDeposits),
		CanRepay:    a.HasLoan(),
	}

	if opts.Eligible && !opts.CanRepay {
		opts.CanBorrow = true
		opts.Tiers = append([]LoanTier(nil), l.policy.LoanTiers...)
	}

	return opts
}

// IssueLoan credits the principal of the selected tier (zero-based) and
// records it as outstanding.
func (l *Ledger) IssueLoan(a *Account, tier int, now time.Time) (Transaction, LoanTier, error) {
	if a.Frozen {
		return Transaction{}, LoanTier{}, ErrAccountFrozen
	}

	if a.TotalDeposits.LessThan(l.policy.LoanEligibilityDeposits) {
		return Transaction{}, LoanTier{}, ErrIneligibleForLoan
	}

	if a.HasLoan() {
		return Transaction{}, LoanTier{}, ErrLoanOutstanding
	}

	if tier < 0 || tier >= len(l.policy.LoanTiers) {
		return Transaction{}, LoanTier{}, ErrInvalidLoanTier
	}

	chosen := l.policy.LoanTiers[tier]
	a.LoanOutstanding = a.LoanOutstanding.Add(chosen.Principal)
	a.Balance = a.Balance.Add(chosen.Principal)

	tx := l.newTransaction(TransactionLoan, chosen.Principal, "", now)
	a.appendTransaction(tx)
	return tx, chosen, nil
}

// RepayLoan pays down the outstanding loan. A zero amount skips repayment and
// reports ok=false; amounts above the outstanding loan are clamped to it.
func (l *Ledger) RepayLoan(a *Account, amount decimal.Decimal, now time.Time) (tx Transaction, ok bool, err error) {
	if !a.HasLoan() {
		return Transaction{}, false, ErrNoOutstandingLoan
	}

	if amount.IsZero() {
		return Transaction{}, false, nil
	}

	if !amount.IsPositive() {
		return Transaction{}, false, ErrInvalidAmount
	}

	if err := checkCents(amount); err != nil {
		return Transaction{}, false, err
	}

	if a.Frozen {
		return Transaction{}, false, ErrAccountFrozen
	}

	repay := decimal.Min(amount, a.LoanOutstanding)
	if err := a.ValidateDebit(repay); err != nil {
		return Transaction{}, false, err
	}

	a.LoanOutstanding = a.LoanOutstanding.Sub(repay)
	a.Balance = a.Balance.Sub(repay)

	tx = l.newTransaction(TransactionRepayment, repay, "", now)
	a.appendTransaction(tx)
	return tx, true, nil
}
