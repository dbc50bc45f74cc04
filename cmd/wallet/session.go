package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

var errInputClosed = errors.New("input closed")

// services are the use cases a session drives.
type services struct {
	wallet   *usecase.WalletUseCase
	accounts *usecase.AccountUseCase
}

// Session is an interactive, line-oriented wallet menu.
type Session struct {
	in  *bufio.Scanner
	out io.Writer
	svc *services
}

// NewSession creates a Session reading answers from in.
func NewSession(in io.Reader, out io.Writer, svc *services) *Session {
	return &Session{
		in:  bufio.NewScanner(in),
		out: out,
		svc: svc,
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) prompt(label string) (string, error) {
	s.printf("%s", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) promptAmount(label string) (decimal.Decimal, error) {
	raw, err := s.prompt(label)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.ParseAmount(raw)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(domain.MoneyPlaces)
}

// Welcome offers login and registration until a login succeeds, then runs
// the wallet menu. End of input ends the session without error.
func (s *Session) Welcome(ctx context.Context) error {
	s.printf("========== Welcome to the Digital Wallet System ==========\n")
	for {
		s.printf("1. Login\n2. Register a New Account\n3. Exit\n")
		choice, err := s.prompt("Select an option (enter number): ")
		if err != nil {
			return ignoreClosed(err)
		}

		switch choice {
		case "1":
			id, err := s.prompt("Enter Wallet ID: ")
			if err != nil {
				return ignoreClosed(err)
			}
			err = s.LoginAndRun(ctx, id)
			switch {
			case err == nil, errors.Is(err, errInputClosed):
				return nil
			case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrAuthFailure):
				// already reported
			default:
				s.reportError(err)
			}
		case "2":
			if err := s.Register(ctx); err != nil {
				return ignoreClosed(err)
			}
		case "3":
			s.printf("Goodbye.\n")
			return nil
		default:
			s.printf("Invalid option, please try again.\n")
		}
	}
}

// Register collects and validates registration details one field at a
// time. A rejected field returns to the caller with a message, not an error.
func (s *Session) Register(ctx context.Context) error {
	id, err := s.prompt("Enter a Wallet ID: ")
	if err != nil {
		return err
	}
	if err := domain.ValidateAccountID(id); err != nil {
		s.printf("%s\n", err)
		return nil
	}
	if _, err := s.svc.wallet.GetAccount(ctx, id); err == nil {
		s.printf("Wallet ID already exists. Please choose a different ID.\n")
		return nil
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		s.printf("Operation failed: %s\n", err)
		return nil
	}

	values := make(map[domain.ProfileField]string, 3)
	for _, f := range []struct {
		field domain.ProfileField
		label string
	}{
		{domain.FieldName, "Enter your name: "},
		{domain.FieldEmail, "Enter your email: "},
		{domain.FieldPhone, "Enter your phone number: "},
	} {
		v, err := s.prompt(f.label)
		if err != nil {
			return err
		}
		if err := domain.ValidateProfileField(f.field, v); err != nil {
			s.printf("%s\n", err)
			return nil
		}
		values[f.field] = v
	}

	password, err := s.prompt("Set a password: ")
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(password); err != nil {
		s.printf("%s\n", err)
		return nil
	}

	_, err = s.svc.accounts.Register(ctx, usecase.RegisterInput{
		AccountID: id,
		Name:      values[domain.FieldName],
		Email:     values[domain.FieldEmail],
		Phone:     values[domain.FieldPhone],
		Password:  password,
	})
	if err != nil {
		s.printf("Registration failed: %s\n", err)
		return nil
	}

	s.printf("Registration successful! Please log in.\n")
	return nil
}

// Login asks for the password of accountID and reports interest accrued
// since the last visit. Unknown wallets and wrong passwords are returned as
// domain errors after a message is printed.
func (s *Session) Login(ctx context.Context, accountID string) (*domain.Account, error) {
	password, err := s.prompt("Enter Password: ")
	if err != nil {
		return nil, err
	}

	out, err := s.svc.accounts.Login(ctx, usecase.LoginInput{AccountID: accountID, Password: password})
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		s.printf("Wallet ID does not exist. Please check or register a new account.\n")
		return nil, err
	case errors.Is(err, domain.ErrAuthFailure):
		s.printf("Incorrect password, please try again.\n")
		return nil, err
	case err != nil:
		return nil, err
	}

	s.printf("Login successful. Welcome, %s!\n", out.Account.Profile.Name)
	s.reportInterest(out.Account, out.Interest)
	return out.Account, nil
}

// LoginAndRun logs in and then runs the wallet menu.
func (s *Session) LoginAndRun(ctx context.Context, accountID string) error {
	if _, err := s.Login(ctx, accountID); err != nil {
		return err
	}
	return ignoreClosed(s.Menu(ctx, accountID))
}

func (s *Session) reportInterest(account *domain.Account, res domain.InterestResult) {
	switch {
	case res.Initialized:
		s.printf("Interest start date set to today.\n")
	case res.Days > 0:
		s.printf("Applied %d days of interest (%s). New balance: %s\n", res.Days, money(res.Interest), money(account.Balance))
	default:
		s.printf("No interest applied. Last interest date is already up to date.\n")
	}
}

// Menu runs the main wallet menu for a logged-in account until Exit.
func (s *Session) Menu(ctx context.Context, accountID string) error {
	policy := s.svc.wallet.Policy()

	for {
		account, err := s.svc.wallet.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		s.printf("\n========== Wallet System Menu ==========\n")
		s.printf("Current Balance: %s\n", money(account.Balance))
		s.printf("Fixed Daily Interest Rate: %s%%\n", policy.DailyInterestRate.Shift(2).StringFixed(2))
		if account.Frozen {
			s.printf("Account status: FROZEN\n")
		}
		s.printf("1. Deposit\n2. Withdraw\n3. Transfer\n4. Loan/Repay\n")
		s.printf("5. View/Update Personal Information\n6. View Transaction History\n7. Exit\n")

		choice, err := s.prompt("Select an option (enter number): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = s.deposit(ctx, accountID)
		case "2":
			err = s.withdraw(ctx, accountID)
		case "3":
			err = s.transfer(ctx, accountID)
		case "4":
			err = s.loanOrRepay(ctx, accountID)
		case "5":
			err = s.personalInfo(ctx, accountID)
		case "6":
			err = s.history(ctx, accountID)
		case "7":
			s.printf("Exiting the wallet system.\n")
			return nil
		default:
			s.printf("Invalid option, please try again.\n")
		}

		if err != nil {
			if errors.Is(err, errInputClosed) {
				return err
			}
			s.reportError(err)
		}
	}
}

func (s *Session) reportError(err error) {
	if errors.Is(err, domain.ErrInvalidAmount) {
		s.printf("Input error: %s\n", err)
		return
	}
	s.printf("Operation failed: %s\n", err)
}

func (s *Session) deposit(ctx context.Context, accountID string) error {
	amount, err := s.promptAmount("Enter deposit amount: ")
	if err != nil {
		return err
	}

	res, err := s.svc.wallet.Deposit(ctx, usecase.AmountInput{AccountID: accountID, Amount: amount})
	if err != nil {
		return err
	}

	s.printf("Deposited %s. Current balance: %s\n", money(amount), money(res.Account.Balance))
	return nil
}

func (s *Session) withdraw(ctx context.Context, accountID string) error {
	amount, err := s.promptAmount("Enter withdrawal amount: ")
	if err != nil {
		return err
	}

	res, err := s.svc.wallet.Withdraw(ctx, usecase.AmountInput{AccountID: accountID, Amount: amount})
	if err != nil {
		return err
	}

	s.printf("Withdrew %s. Current balance: %s\n", money(amount), money(res.Account.Balance))
	return nil
}

func (s *Session) transfer(ctx context.Context, accountID string) error {
	recipient, err := s.prompt("Enter recipient Wallet ID: ")
	if err != nil {
		return err
	}
	if _, err := s.svc.wallet.GetAccount(ctx, recipient); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.printf("Invalid Wallet ID.\n")
			return nil
		}
		return err
	}

	amount, err := s.promptAmount("Enter transfer amount: ")
	if err != nil {
		return err
	}

	// Ask before the use case takes its locks.
	confirmed := false
	if s.svc.wallet.Policy().NeedsConfirmation(amount) {
		answer, err := s.prompt(fmt.Sprintf("The transfer amount is %s. Continue? (yes/no): ", money(amount)))
		if err != nil {
			return err
		}
		confirmed = strings.EqualFold(answer, "yes")
	}

	out, err := s.svc.wallet.Transfer(ctx, usecase.TransferInput{
		FromAccountID: accountID,
		ToAccountID:   recipient,
		Amount:        amount,
		Confirm:       domain.Confirmed(confirmed),
	})
	if err != nil {
		return err
	}
	if out.Cancelled {
		s.printf("Transfer canceled.\n")
		return nil
	}

	s.printf("Transferred %s to wallet %s. Current balance: %s\n", money(amount), recipient, money(out.From.Balance))
	return nil
}

func (s *Session) loanOrRepay(ctx context.Context, accountID string) error {
	opts, err := s.svc.wallet.LoanOptions(ctx, accountID)
	if err != nil {
		return err
	}

	switch {
	case opts.CanRepay:
		s.printf("Outstanding loan amount: %s.\n", money(opts.Outstanding))
		amount, err := s.promptAmount("Enter repayment amount (or 0 to skip): ")
		if err != nil {
			return err
		}
		res, err := s.svc.wallet.RepayLoan(ctx, usecase.AmountInput{AccountID: accountID, Amount: amount})
		if err != nil {
			return err
		}
		if res.Skipped {
			s.printf("Repayment skipped.\n")
			return nil
		}
		s.printf("Repaid %s. Remaining loan balance: %s\n", money(res.Transaction.Amount), money(res.Account.LoanOutstanding))
		return nil

	case opts.CanBorrow:
		s.printf("Available loan amounts and interest rates:\n")
		for i, tier := range opts.Tiers {
			s.printf("%d. Loan Amount: %s, Annual Interest Rate: %s%%\n", i+1, money(tier.Principal), tier.AnnualRate.String())
		}
		raw, err := s.prompt("Select a loan option (enter number): ")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(opts.Tiers) {
			s.printf("Invalid option.\n")
			return nil
		}
		res, err := s.svc.wallet.IssueLoan(ctx, usecase.LoanInput{AccountID: accountID, Tier: n - 1})
		if err != nil {
			return err
		}
		s.printf("You have taken a loan of %s with an annual interest rate of %s%%.\n", money(res.Tier.Principal), res.Tier.AnnualRate.String())
		return nil

	default:
		s.printf("Total deposits must reach %s to apply for a loan.\n", money(s.svc.wallet.Policy().LoanEligibilityDeposits))
		return nil
	}
}

func (s *Session) personalInfo(ctx context.Context, accountID string) error {
	for {
		account, err := s.svc.wallet.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		s.printf("\n====== Personal Information ======\n")
		s.printf("Name: %s\nEmail: %s\nPhone: %s\n", account.Profile.Name, account.Profile.Email, account.Profile.Phone)
		s.printf("1. Update Name\n2. Update Email\n3. Update Phone\n4. Change Password\n5. Back to Menu\n")

		choice, err := s.prompt("Please select an option (enter number): ")
		if err != nil {
			return err
		}

		var field domain.ProfileField
		switch choice {
		case "1":
			field = domain.FieldName
		case "2":
			field = domain.FieldEmail
		case "3":
			field = domain.FieldPhone
		case "4":
			if err := s.changePassword(ctx, accountID); err != nil {
				return err
			}
			continue
		case "5":
			s.printf("Returning to the main menu.\n")
			return nil
		default:
			s.printf("Invalid option, please try again.\n")
			continue
		}

		value, err := s.prompt(fmt.Sprintf("Enter new %s: ", field))
		if err != nil {
			return err
		}
		_, err = s.svc.accounts.UpdateProfile(ctx, usecase.UpdateProfileInput{AccountID: accountID, Field: field, Value: value})
		if err != nil {
			s.printf("%s\n", err)
			continue
		}
		s.printf("%s updated!\n", strings.ToUpper(string(field[:1]))+string(field[1:]))
	}
}

func (s *Session) changePassword(ctx context.Context, accountID string) error {
	current, err := s.prompt("Enter current password: ")
	if err != nil {
		return err
	}
	next, err := s.prompt("Enter new password: ")
	if err != nil {
		return err
	}

	err = s.svc.accounts.ChangePassword(ctx, usecase.ChangePasswordInput{
		AccountID:       accountID,
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		s.printf("%s\n", err)
		return nil
	}

	s.printf("Password updated!\n")
	return nil
}

func (s *Session) history(ctx context.Context, accountID string) error {
	txs, err := s.svc.wallet.History(ctx, accountID)
	if err != nil {
		return err
	}
	s.printHistory(txs)
	return nil
}

func (s *Session) printHistory(txs []domain.Transaction) {
	if len(txs) == 0 {
		s.printf("No transaction history available.\n")
		return
	}

	for _, tx := range txs {
		line := fmt.Sprintf("%s: %s %s", tx.Timestamp.Format("2006-01-02 15:04:05"), tx.Type, money(tx.Amount))
		switch tx.Type {
		case domain.TransactionTransferOut:
			line += " to " + tx.CounterpartyID
		case domain.TransactionTransferIn:
			line += " from " + tx.CounterpartyID
		}
		s.printf("%s\n", line)
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}
