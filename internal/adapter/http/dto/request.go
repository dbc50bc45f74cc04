package dto

import (
	"fmt"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// RegisterRequest represents a request to open a wallet.
type RegisterRequest struct {
	WalletID string `json:"wallet_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		AccountID: r.WalletID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	WalletID string `json:"wallet_id"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.LoginInput {
	return usecase.LoginInput{
		AccountID: r.WalletID,
		Password:  r.Password,
	}
}

// AmountRequest carries a decimal amount as a string, e.g. "12.34".
type AmountRequest struct {
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *AmountRequest) ToUseCaseInput(accountID string) (usecase.AmountInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.AmountInput{}, err
	}
	return usecase.AmountInput{AccountID: accountID, Amount: amount}, nil
}

// TransferRequest represents a request to send money to another wallet.
// Amounts above the confirmation threshold are only executed with
// Confirm set.
type TransferRequest struct {
	ToWalletID string `json:"to_wallet_id"`
	Amount     string `json:"amount"`
	Confirm    bool   `json:"confirm"`
}

// ToUseCaseInput converts to use case input for the sending account.
func (r *TransferRequest) ToUseCaseInput(fromAccountID string) (usecase.TransferInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.TransferInput{}, err
	}
	return usecase.TransferInput{
		Confirm:       domain.Confirmed(r.Confirm),
		FromAccountID: fromAccountID,
		ToAccountID:   r.ToWalletID,
		Amount:        amount,
	}, nil
}

// LoanRequest selects a loan by its 1-based position in the loan options.
type LoanRequest struct {
	Option int `json:"option"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *LoanRequest) ToUseCaseInput(accountID string) (usecase.LoanInput, error) {
	if r.Option < 1 {
		return usecase.LoanInput{}, fmt.Errorf("%w: option %d", domain.ErrInvalidLoanTier, r.Option)
	}
	return usecase.LoanInput{AccountID: accountID, Tier: r.Option - 1}, nil
}

// UpdateProfileRequest changes one profile field.
type UpdateProfileRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *UpdateProfileRequest) ToUseCaseInput(accountID string) usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		AccountID: accountID,
		Field:     domain.ProfileField(r.Field),
		Value:     r.Value,
	}
}

// ChangePasswordRequest replaces the wallet password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ToUseCaseInput converts to use case input for accountID.
func (r *ChangePasswordRequest) ToUseCaseInput(accountID string) usecase.ChangePasswordInput {
	return usecase.ChangePasswordInput{
		AccountID:       accountID,
		CurrentPassword: r.CurrentPassword,
		NewPassword:     r.NewPassword,
	}
}
