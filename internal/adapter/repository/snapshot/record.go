// Package snapshot defines the persisted JSON form of an account shared by
// every storage backend and the cache.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

const (
	// DateLayout is the calendar-day format of interest and activity dates.
	DateLayout = "2006-01-02"

	// legacyTimestampLayout is the local-time format older wallet files used
	// for transaction timestamps.
	legacyTimestampLayout = "2006-01-02 15:04:05"
)

// Record is one account as stored on disk, in Postgres and in the cache.
type Record struct {
	WalletID            string              `json:"wallet_id"`
	Balance             decimal.Decimal     `json:"balance"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Phone               string              `json:"phone"`
	Password            string              `json:"password"`
	TransactionHistory  []TransactionRecord `json:"transaction_history"`
	TotalDeposits       decimal.Decimal     `json:"total_deposits"`
	DailyLimit          decimal.Decimal     `json:"daily_limit"`
	LoanTotal           decimal.Decimal     `json:"loan_total"`
	LastInterestDate    *string             `json:"last_interest_date"`
	Frozen              bool                `json:"frozen"`
	DailyAccumulated    decimal.Decimal     `json:"daily_accumulated"`
	LastTransactionDate *string             `json:"last_transaction_date"`
	Version             int64               `json:"version"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
}

// TransactionRecord is one history entry.
type TransactionRecord struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   string          `json:"timestamp"`
	RecipientID *string         `json:"recipient_id"`
}

// FromAccount converts a domain account into its persisted form.
func FromAccount(a *domain.Account) Record {
	history := make([]TransactionRecord, len(a.History))
	for i, tx := range a.History {
		history[i] = TransactionRecord{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Timestamp:   tx.Timestamp.Format(time.RFC3339Nano),
			RecipientID: optionalString(tx.CounterpartyID),
		}
	}

	return Record{
		WalletID:            a.ID,
		Balance:             a.Balance,
		Name:                a.Profile.Name,
		Email:               a.Profile.Email,
		Phone:               a.Profile.Phone,
		Password:            a.Password,
		TransactionHistory:  history,
		TotalDeposits:       a.TotalDeposits,
		DailyLimit:          a.DailyLimit,
		LoanTotal:           a.LoanOutstanding,
		LastInterestDate:    formatDate(a.LastInterestDate),
		Frozen:              a.Frozen,
		DailyAccumulated:    a.DailyAccumulated,
		LastTransactionDate: formatDate(a.LastTransactionDate),
		Version:             a.Version,
		CreatedAt:           optionalTime(a.CreatedAt),
		UpdatedAt:           optionalTime(a.UpdatedAt),
	}
}

// ToAccount converts a persisted record back into a domain account. Records
// written before freeze state was persisted load as active accounts with a
// fresh daily counter.
func (r Record) ToAccount() (*domain.Account, error) {
	lastInterest, err := parseDate(r.LastInterestDate)
	if err != nil {
		return nil, fmt.Errorf("last_interest_date: %w", err)
	}

	lastTx, err := parseDate(r.LastTransactionDate)
	if err != nil {
		return nil, fmt.Errorf("last_transaction_date: %w", err)
	}

	history := make([]domain.Transaction, len(r.TransactionHistory))
	for i, tx := range r.TransactionHistory {
		typ := domain.TransactionType(tx.Type)
		if !typ.IsValid() {
			return nil, fmt.Errorf("transaction %d: unknown type %q", i, tx.Type)
		}

		ts, err := parseTimestamp(tx.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		history[i] = domain.Transaction{
			ID:        tx.ID,
			Type:      typ,
			Amount:    tx.Amount,
			Timestamp: ts,
		}
		if tx.RecipientID != nil {
			history[i].CounterpartyID = *tx.RecipientID
		}
	}

	a := &domain.Account{
		ID:                  r.WalletID,
		Profile:             domain.Profile{Name: r.Name, Email: r.Email, Phone: r.Phone},
		Password:            r.Password,
		Balance:             domain.RoundMoney(r.Balance),
		TotalDeposits:       r.TotalDeposits,
		DailyLimit:          r.DailyLimit,
		DailyAccumulated:    r.DailyAccumulated,
		LoanOutstanding:     r.LoanTotal,
		LastInterestDate:    lastInterest,
		LastTransactionDate: lastTx,
		History:             history,
		Frozen:              r.Frozen,
		Version:             r.Version,
	}
	if r.CreatedAt != nil {
		a.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		a.UpdatedAt = *r.UpdatedAt
	}

	return a, nil
}

// Marshal encodes an account as indented JSON.
func Marshal(a *domain.Account) ([]byte, error) {
	return json.MarshalIndent(FromAccount(a), "", "  ")
}

// Unmarshal decodes an account from JSON.
func Unmarshal(data []byte) (*domain.Account, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode account record: %w", err)
	}
	return r.ToAccount()
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func parseDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, *s)
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(legacyTimestampLayout, s, time.Local)
}
