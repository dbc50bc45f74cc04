package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T, seed ...*domain.Account) (*services, *mocks.InMemoryAccountRepository) {
	t.Helper()

	repo := mocks.NewInMemoryAccountRepository(seed...)
	wallet := usecase.NewWalletUseCase(usecase.Config{
		Repo:   repo,
		Ledger: domain.NewLedger(domain.DefaultPolicy(), mocks.NewStubIDGenerator()),
		Clock:  mocks.NewStubClock(testNow),
	})
	return &services{wallet: wallet, accounts: usecase.NewAccountUseCase(wallet)}, repo
}

func seeded(id, balance string) *domain.Account {
	acc := domain.NewAccount(id, domain.Profile{Name: "Alice", Email: "alice@example.com", Phone: "5551234"}, "pass1", decimal.NewFromInt(20000), testNow)
	acc.Balance = decimal.RequireFromString(balance)
	acc.LastInterestDate = domain.CalendarDay(testNow)
	return acc
}

func runSession(t *testing.T, svc *services, input ...string) string {
	t.Helper()

	var out bytes.Buffer
	s := NewSession(strings.NewReader(strings.Join(input, "\n")+"\n"), &out, svc)
	require.NoError(t, s.Welcome(context.Background()))
	return out.String()
}

func TestSession_RegisterThenLogin(t *testing.T) {
	svc, repo := newTestServices(t)

	out := runSession(t, svc,
		"2", "1001", "Bob", "bob@example.com", "5550000", "pw123",
		"1", "1001", "pw123",
		"7",
	)

	assert.Contains(t, out, "Registration successful! Please log in.")
	assert.Contains(t, out, "Login successful. Welcome, Bob!")
	assert.Contains(t, out, "Interest start date set to today.")
	assert.Contains(t, out, "Current Balance: $0.00")
	assert.Contains(t, out, "Fixed Daily Interest Rate: 0.05%")
	assert.Contains(t, out, "Exiting the wallet system.")

	stored := repo.Stored("1001")
	require.NotNil(t, stored)
	assert.Equal(t, domain.CalendarDay(testNow), stored.LastInterestDate)
}

func TestSession_RegisterRejectsInvalidField(t *testing.T) {
	svc, repo := newTestServices(t)

	out := runSession(t, svc, "2", "1001", "Bob1", "3")

	assert.Contains(t, out, domain.ErrInvalidName.Error())
	assert.Nil(t, repo.Stored("1001"))
}

func TestSession_RegisterRejectsExistingID(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc, "2", "1001", "3")

	assert.Contains(t, out, "Wallet ID already exists.")
}

func TestSession_LoginFailures(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc,
		"1", "9999", "x",
		"1", "1001", "wrong",
		"3",
	)

	assert.Contains(t, out, "Wallet ID does not exist.")
	assert.Contains(t, out, "Incorrect password, please try again.")
	assert.Contains(t, out, "Goodbye.")
}

func TestSession_DepositWithdrawAndHistory(t *testing.T) {
	svc, repo := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"1", "$250.50",
		"2", "50",
		"2", "abc",
		"6",
		"7",
	)

	assert.Contains(t, out, "Deposited $250.50. Current balance: $250.50")
	assert.Contains(t, out, "Withdrew $50.00. Current balance: $200.50")
	assert.Contains(t, out, "Input error:")
	assert.Contains(t, out, "Deposit $250.50")
	assert.Contains(t, out, "Withdrawal $50.00")
	assert.True(t, repo.Stored("1001").Balance.Equal(decimal.RequireFromString("200.5")))
}

func TestSession_OperationErrorKeepsLooping(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "10"))

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"2", "100",
		"1", "10000.01",
		"7",
	)

	assert.Contains(t, out, "Operation failed: "+domain.ErrInsufficientFunds.Error())
	assert.Contains(t, out, "Operation failed: "+domain.ErrLimitExceeded.Error())
	assert.Contains(t, out, "Exiting the wallet system.")
}

func TestSession_TransferConfirmation(t *testing.T) {
	svc, repo := newTestServices(t, seeded("1001", "9000"), seeded("2002", "0"))

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"3", "3003",
		"3", "2002", "6000", "no",
		"3", "2002", "6000", "yes",
		"7",
	)

	assert.Contains(t, out, "Invalid Wallet ID.")
	assert.Contains(t, out, "The transfer amount is $6000.00. Continue? (yes/no): ")
	assert.Contains(t, out, "Transfer canceled.")
	assert.Contains(t, out, "Transferred $6000.00 to wallet 2002. Current balance: $3000.00")
	assert.True(t, repo.Stored("2002").Balance.Equal(decimal.NewFromInt(6000)))
}

func TestSession_LoanAndRepay(t *testing.T) {
	acc := seeded("1001", "0")
	acc.TotalDeposits = decimal.NewFromInt(10000)
	svc, repo := newTestServices(t, acc)

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"4", "2",
		"4", "0",
		"4", "6000",
		"7",
	)

	assert.Contains(t, out, "2. Loan Amount: $5000.00, Annual Interest Rate: 4.5%")
	assert.Contains(t, out, "You have taken a loan of $5000.00 with an annual interest rate of 4.5%.")
	assert.Contains(t, out, "Outstanding loan amount: $5000.00.")
	assert.Contains(t, out, "Repayment skipped.")
	assert.Contains(t, out, "Repaid $5000.00. Remaining loan balance: $0.00")

	stored := repo.Stored("1001")
	assert.True(t, stored.LoanOutstanding.IsZero())
	assert.True(t, stored.Balance.IsZero())
}

func TestSession_LoanIneligible(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc, "1", "1001", "pass1", "4", "7")

	assert.Contains(t, out, "Total deposits must reach $10000.00 to apply for a loan.")
}

func TestSession_UpdatePersonalInformation(t *testing.T) {
	svc, repo := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"5",
		"2", "new@example.com",
		"3", "12ab",
		"4", "pass1", "pass2",
		"5",
		"7",
	)

	assert.Contains(t, out, "Email updated!")
	assert.Contains(t, out, domain.ErrInvalidPhone.Error())
	assert.Contains(t, out, "Password updated!")

	stored := repo.Stored("1001")
	assert.Equal(t, "new@example.com", stored.Profile.Email)
	assert.Equal(t, "5551234", stored.Profile.Phone)
	assert.True(t, stored.CheckPassword("pass2"))
}

func TestSession_EndOfInputEndsQuietly(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc, "1", "1001", "pass1", "1")

	assert.Contains(t, out, "Enter deposit amount: ")
}

func TestSession_EmptyHistory(t *testing.T) {
	svc, _ := newTestServices(t, seeded("1001", "0"))

	out := runSession(t, svc, "1", "1001", "pass1", "6", "7")

	assert.Contains(t, out, "No transaction history available.")
}

func TestSession_SmallTransferSkipsConfirmation(t *testing.T) {
	svc, repo := newTestServices(t, seeded("1001", "100"), seeded("2002", "0"))

	out := runSession(t, svc,
		"1", "1001", "pass1",
		"3", "2002", "40",
		"7",
	)

	assert.NotContains(t, out, "Continue? (yes/no)")
	assert.Contains(t, out, "Transferred $40.00 to wallet 2002. Current balance: $60.00")
	assert.True(t, repo.Stored("2002").Balance.Equal(decimal.NewFromInt(40)))
}

func TestSession_ClosedInputAtConfirmationTransfersNothing(t *testing.T) {
	svc, repo := newTestServices(t, seeded("1001", "9000"), seeded("2002", "0"))

	out := runSession(t, svc, "1", "1001", "pass1", "3", "2002", "6000")

	assert.Contains(t, out, "The transfer amount is $6000.00. Continue? (yes/no): ")
	assert.NotContains(t, out, "Transferred")
	assert.True(t, repo.Stored("1001").Balance.Equal(decimal.NewFromInt(9000)))
	assert.True(t, repo.Stored("2002").Balance.IsZero())
	assert.Empty(t, repo.Stored("1001").History)
}
