package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType names the kind of balance change a history record describes.
type TransactionType string

const (
	TransactionDeposit     TransactionType = "Deposit"
	TransactionWithdrawal  TransactionType = "Withdrawal"
	TransactionTransferOut TransactionType = "Transfer Out"
	TransactionTransferIn  TransactionType = "Transfer In"
	TransactionLoan        TransactionType = "Loan"
	TransactionRepayment   TransactionType = "Repayment"
)

var validTransactionTypes = map[TransactionType]bool{
	TransactionDeposit:     true,
	TransactionWithdrawal:  true,
	TransactionTransferOut: true,
	TransactionTransferIn:  true,
	TransactionLoan:        true,
	TransactionRepayment:   true,
}

// IsValid checks if the type is one of the known record types.
func (t TransactionType) IsValid() bool {
	return validTransactionTypes[t]
}

// Transaction is one immutable entry in an account's history.
type Transaction struct {
	Timestamp      time.Time
	ID             string
	Type           TransactionType
	CounterpartyID string // set for transfers only
	Amount         decimal.Decimal
}

// IsTransfer reports whether the record is one side of a transfer.
func (t Transaction) IsTransfer() bool {
	return t.Type == TransactionTransferOut || t.Type == TransactionTransferIn
}
