package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// AccountResponse represents a wallet in API responses. The password is
// never included.
type AccountResponse struct {
	WalletID         string          `json:"wallet_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Balance          decimal.Decimal `json:"balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	DailyLimit       decimal.Decimal `json:"daily_limit"`
	DailyAccumulated decimal.Decimal `json:"daily_accumulated"`
	LoanOutstanding  decimal.Decimal `json:"loan_outstanding"`
	LastInterestDate string          `json:"last_interest_date,omitempty"`
	Frozen           bool            `json:"frozen"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	resp := &AccountResponse{
		WalletID:         a.ID,
		Name:             a.Profile.Name,
		Email:            a.Profile.Email,
		Phone:            a.Profile.Phone,
		Balance:          a.Balance,
		TotalDeposits:    a.TotalDeposits,
		DailyLimit:       a.DailyLimit,
		DailyAccumulated: a.DailyAccumulated,
		LoanOutstanding:  a.LoanOutstanding,
		Frozen:           a.Frozen,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if !a.LastInterestDate.IsZero() {
		resp.LastInterestDate = a.LastInterestDate.Format(time.DateOnly)
	}
	return resp
}

// TransactionResponse represents one history record.
type TransactionResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
	CounterpartyID string          `json:"counterparty_id,omitempty"`
}

// TransactionFromDomain converts a history record to response.
func TransactionFromDomain(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Timestamp:      t.Timestamp,
		CounterpartyID: t.CounterpartyID,
	}
}

// TransactionsFromDomain converts history records to responses.
func TransactionsFromDomain(txs []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// OperationResponse is returned by balance-changing endpoints.
type OperationResponse struct {
	Account     *AccountResponse     `json:"account"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// NewOperationResponse builds an OperationResponse for a committed record.
func NewOperationResponse(a *domain.Account, t domain.Transaction) *OperationResponse {
	tx := TransactionFromDomain(t)
	return &OperationResponse{Account: AccountFromDomain(a), Transaction: &tx}
}

// HistoryResponse lists an account's records in insertion order.
type HistoryResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token        string           `json:"token"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Account      *AccountResponse `json:"account"`
	InterestDays int              `json:"interest_days"`
	Interest     decimal.Decimal  `json:"interest"`
}

// LoanOptionResponse is one selectable loan.
type LoanOptionResponse struct {
	Option     int             `json:"option"`
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
}

// LoanOptionsResponse describes the loan actions available to a wallet.
type LoanOptionsResponse struct {
	Outstanding decimal.Decimal      `json:"outstanding"`
	Eligible    bool                 `json:"eligible"`
	CanRepay    bool                 `json:"can_repay"`
	CanBorrow   bool                 `json:"can_borrow"`
	Options     []LoanOptionResponse `json:"options"`
}

// LoanOptionsFromDomain converts loan options to response. Options are
// numbered from 1.
func LoanOptionsFromDomain(o domain.LoanOptions) *LoanOptionsResponse {
	resp := &LoanOptionsResponse{
		Outstanding: o.Outstanding,
		Eligible:    o.Eligible,
		CanRepay:    o.CanRepay,
		CanBorrow:   o.CanBorrow,
		Options:     make([]LoanOptionResponse, len(o.Tiers)),
	}
	for i, t := range o.Tiers {
		resp.Options[i] = LoanOptionResponse{Option: i + 1, Principal: t.Principal, AnnualRate: t.AnnualRate}
	}
	return resp
}

// LoanResponse is returned after a loan is issued.
type LoanResponse struct {
	OperationResponse
	AnnualRate decimal.Decimal `json:"annual_rate"`
}

// RepayResponse is returned after a repayment. Skipped is set when a zero
// amount was submitted.
type RepayResponse struct {
	OperationResponse
	Skipped bool `json:"skipped"`
}

// InterestResponse is returned by the interest endpoint.
type InterestResponse struct {
	Account  *AccountResponse `json:"account"`
	Days     int              `json:"days"`
	Interest decimal.Decimal  `json:"interest"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
