package usecase

import (
	"context"
	"fmt"

	"github.com/iho/gowallet/internal/domain"
)

// AccountUseCase handles registration, authentication and profile changes.
// It shares the wallet's repository and account locks so a login never
// races a balance change on the same account.
type AccountUseCase struct {
	wallet *WalletUseCase
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(wallet *WalletUseCase) *AccountUseCase {
	return &AccountUseCase{wallet: wallet}
}

// RegisterInput represents input for opening an account.
type RegisterInput struct {
	AccountID string
	Name      string
	Email     string
	Phone     string
	Password  string
}

// Register opens a new account with a zero balance.
func (uc *AccountUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	w := uc.wallet

	profile := domain.Profile{Name: input.Name, Email: input.Email, Phone: input.Phone}
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return nil, w.fail(OpRegister, input.AccountID, err)
	}
	if err := domain.ValidateProfile(profile); err != nil {
		return nil, w.fail(OpRegister, input.AccountID, err)
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, w.fail(OpRegister, input.AccountID, err)
	}

	unlock := w.locks.lock(input.AccountID)
	defer unlock()

	exists, err := w.repo.Exists(ctx, input.AccountID)
	if err != nil {
		return nil, w.fail(OpRegister, input.AccountID, fmt.Errorf("check account %s: %w", input.AccountID, err))
	}
	if exists {
		return nil, w.fail(OpRegister, input.AccountID, domain.ErrAccountExists)
	}

	account := domain.NewAccount(input.AccountID, profile, input.Password, w.Policy().DefaultDailyLimit, w.clock.Now())
	if err := w.repo.Create(ctx, account); err != nil {
		return nil, w.fail(OpRegister, input.AccountID, err)
	}

	w.logger.Info().Str("operation", OpRegister).Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// LoginInput represents login credentials.
type LoginInput struct {
	AccountID string
	Password  string
}

// LoginOutput carries the authenticated account and the interest accrued
// on login.
type LoginOutput struct {
	Account  *domain.Account
	Interest domain.InterestResult
}

// Login authenticates an account and brings its interest up to date.
func (uc *AccountUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	w := uc.wallet

	unlock := w.locks.lock(input.AccountID)
	defer unlock()

	account, err := w.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, w.fail(OpLogin, input.AccountID, err)
	}
	if !account.CheckPassword(input.Password) {
		return nil, w.fail(OpLogin, input.AccountID, domain.ErrAuthFailure)
	}

	res, err := w.accrueInterest(ctx, account)
	if err != nil {
		return nil, err
	}

	w.logger.Info().Str("operation", OpLogin).Str("account_id", account.ID).Msg("login succeeded")
	return &LoginOutput{Account: account, Interest: res}, nil
}

// UpdateProfileInput names one profile field and its new value.
type UpdateProfileInput struct {
	AccountID string
	Field     domain.ProfileField
	Value     string
}

// UpdateProfile validates and stores a single profile field.
func (uc *AccountUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.Account, error) {
	w := uc.wallet

	if err := domain.ValidateProfileField(input.Field, input.Value); err != nil {
		return nil, w.fail(OpUpdateProfile, input.AccountID, err)
	}

	unlock := w.locks.lock(input.AccountID)
	defer unlock()

	account, err := w.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, w.fail(OpUpdateProfile, input.AccountID, err)
	}

	if err := account.Profile.Set(input.Field, input.Value); err != nil {
		return nil, w.fail(OpUpdateProfile, input.AccountID, err)
	}
	account.UpdatedAt = w.clock.Now()

	if err := w.repo.Save(ctx, account); err != nil {
		return nil, w.fail(OpUpdateProfile, input.AccountID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	w.logger.Info().
		Str("operation", OpUpdateProfile).
		Str("account_id", account.ID).
		Str("field", string(input.Field)).
		Msg("profile updated")
	return account, nil
}

// ChangePasswordInput represents a password change request.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the password after checking the current one.
func (uc *AccountUseCase) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	w := uc.wallet

	if err := domain.ValidatePassword(input.NewPassword); err != nil {
		return w.fail(OpChangePassword, input.AccountID, err)
	}

	unlock := w.locks.lock(input.AccountID)
	defer unlock()

	account, err := w.repo.GetByID(ctx, input.AccountID)
	if err != nil {
		return w.fail(OpChangePassword, input.AccountID, err)
	}
	if !account.CheckPassword(input.CurrentPassword) {
		return w.fail(OpChangePassword, input.AccountID, domain.ErrAuthFailure)
	}

	account.Password = input.NewPassword
	account.UpdatedAt = w.clock.Now()

	if err := w.repo.Save(ctx, account); err != nil {
		return w.fail(OpChangePassword, input.AccountID, fmt.Errorf("save account %s: %w", account.ID, err))
	}

	w.logger.Info().Str("operation", OpChangePassword).Str("account_id", account.ID).Msg("password changed")
	return nil
}
