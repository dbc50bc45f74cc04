package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
)

func TestUnmarshal_LegacyRecord(t *testing.T) {
	legacy := `{
		"wallet_id": "1234",
		"balance": 1500.5,
		"name": "Bob",
		"email": "bob@example.com",
		"phone": "555",
		"password": "abc",
		"transaction_history": [
			{"type": "Deposit", "amount": 2000, "timestamp": "2024-01-02 10:11:12", "recipient_id": null},
			{"type": "Transfer Out", "amount": 499.5, "timestamp": "2024-01-03 08:00:00", "recipient_id": "5678"}
		],
		"total_deposits": 2000,
		"daily_limit": 20000,
		"loan_total": 0,
		"last_interest_date": "2024-01-03"
	}`

	a, err := Unmarshal([]byte(legacy))
	require.NoError(t, err)

	assert.Equal(t, "1234", a.ID)
	assert.True(t, a.Balance.Equal(decimal.RequireFromString("1500.50")))
	assert.False(t, a.Frozen)
	assert.True(t, a.DailyAccumulated.IsZero())
	assert.True(t, a.LastTransactionDate.IsZero())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), a.LastInterestDate)

	require.Len(t, a.History, 2)
	assert.Equal(t, domain.TransactionDeposit, a.History[0].Type)
	assert.Empty(t, a.History[0].CounterpartyID)
	assert.Equal(t, "5678", a.History[1].CounterpartyID)
	assert.Equal(t, 2024, a.History[0].Timestamp.Year())
}

func TestMarshal_PersistsFreezeAndCounters(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	a := domain.NewAccount("1001", domain.Profile{Name: "Ann", Email: "a@b.co", Phone: "1"}, "pw1", decimal.NewFromInt(20000), now)
	a.Balance = decimal.RequireFromString("12.34")
	a.Frozen = true
	a.DailyAccumulated = decimal.NewFromInt(24000)
	a.LastTransactionDate = domain.CalendarDay(now)
	a.Version = 7
	a.History = append(a.History, domain.Transaction{
		ID:             "01HX",
		Type:           domain.TransactionTransferIn,
		Amount:         decimal.RequireFromString("0.10"),
		Timestamp:      now,
		CounterpartyID: "2002",
	})

	data, err := Marshal(a)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "12.34", raw["balance"], "amounts are decimal strings")
	assert.Equal(t, true, raw["frozen"])
	assert.Equal(t, "2024-05-06", raw["last_transaction_date"])
	assert.Nil(t, raw["last_interest_date"])

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, back.Frozen)
	assert.True(t, back.DailyAccumulated.Equal(a.DailyAccumulated))
	assert.Equal(t, a.LastTransactionDate, back.LastTransactionDate)
	assert.Equal(t, int64(7), back.Version)
	assert.Equal(t, "2002", back.History[0].CounterpartyID)
	assert.True(t, back.History[0].Timestamp.Equal(now))
}

func TestUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "bad date", data: `{"wallet_id":"1","last_interest_date":"03/01/2024"}`},
		{name: "unknown type", data: `{"wallet_id":"1","transaction_history":[{"type":"Bonus","amount":1,"timestamp":"2024-01-02 10:11:12"}]}`},
		{name: "bad timestamp", data: `{"wallet_id":"1","transaction_history":[{"type":"Deposit","amount":1,"timestamp":"yesterday"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
