package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountFrozen   = errors.New("account is frozen; please contact the bank for assistance")
	ErrAuthFailure     = errors.New("incorrect password")
	ErrVersionConflict = errors.New("account was modified concurrently")

	// Amount errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrLimitExceeded      = errors.New("amount exceeds the single transaction limit")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrDailyLimitExceeded = errors.New("daily transaction limit exceeded; the account is frozen")

	// Transfer errors
	ErrSameAccount = errors.New("cannot transfer to same account")

	// Loan errors
	ErrIneligibleForLoan = errors.New("total deposits must reach the loan threshold to apply for a loan")
	ErrLoanOutstanding   = errors.New("an outstanding loan must be repaid before taking a new one")
	ErrNoOutstandingLoan = errors.New("no outstanding loan to repay")
	ErrInvalidLoanTier   = errors.New("invalid loan option")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
