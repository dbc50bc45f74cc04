package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	account := domain.NewAccount("1001", domain.Profile{Name: "Alice", Email: "a@b.io", Phone: "555"}, "secret1", decimal.NewFromInt(20000), now)
	account.Balance = decimal.RequireFromString("123.45")
	account.LastInterestDate = domain.CalendarDay(now)
	account.Version = 2

	resp := AccountFromDomain(account)
	if resp.WalletID != "1001" || !resp.Balance.Equal(account.Balance) || resp.Version != 2 {
		t.Fatalf("unexpected account response: %+v", resp)
	}
	if resp.LastInterestDate != "2024-03-10" {
		t.Fatalf("expected interest date, got %q", resp.LastInterestDate)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), "secret1") {
		t.Fatalf("password leaked into response: %s", body)
	}
	if !strings.Contains(string(body), `"balance":"123.45"`) {
		t.Fatalf("expected balance as decimal string, got %s", body)
	}
}

func TestTransactionsFromDomain(t *testing.T) {
	now := time.Now()
	txs := []domain.Transaction{
		{ID: "tx-1", Type: domain.TransactionDeposit, Amount: decimal.NewFromInt(10), Timestamp: now},
		{ID: "tx-2", Type: domain.TransactionTransferOut, Amount: decimal.NewFromInt(5), Timestamp: now, CounterpartyID: "2002"},
	}

	resp := TransactionsFromDomain(txs)
	if len(resp) != 2 || resp[0].Type != "Deposit" || resp[1].CounterpartyID != "2002" {
		t.Fatalf("unexpected transactions: %+v", resp)
	}
}

func TestLoanOptionsFromDomain(t *testing.T) {
	opts := domain.LoanOptions{
		Outstanding: decimal.Zero,
		Eligible:    true,
		CanBorrow:   true,
		Tiers:       domain.DefaultPolicy().LoanTiers,
	}

	resp := LoanOptionsFromDomain(opts)
	if len(resp.Options) != 4 || resp.Options[0].Option != 1 || !resp.Options[1].Principal.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected loan options: %+v", resp)
	}
}
