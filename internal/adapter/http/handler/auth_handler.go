package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AccountService defines the account lifecycle operations used by the HTTP
// handlers.
type AccountService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error)
	UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) error
}

// TokenIssuer signs session tokens for authenticated wallets.
type TokenIssuer interface {
	Generate(accountID string) (string, time.Time, error)
}

// AuthObserver is told about every login attempt.
type AuthObserver interface {
	RecordAuthAttempt(success bool)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	accounts AccountService
	tokens   TokenIssuer
	observer AuthObserver
}

// NewAuthHandler creates a new auth handler. observer may be nil.
func NewAuthHandler(accounts AccountService, tokens TokenIssuer, observer AuthObserver) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		observer: observer,
	}
}

// Register opens a new wallet.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to register wallet", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Login checks the wallet password, applies pending interest and returns
// a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.accounts.Login(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailure) || errors.Is(err, domain.ErrAccountNotFound) {
			h.observe(false)
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		writeDomainError(w, "login failed", err)
		return
	}
	h.observe(true)

	token, expiresAt, err := h.tokens.Generate(out.Account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:        token,
		ExpiresAt:    expiresAt,
		Account:      dto.AccountFromDomain(out.Account),
		InterestDays: out.Interest.Days,
		Interest:     out.Interest.Interest,
	})
}

func (h *AuthHandler) observe(success bool) {
	if h.observer != nil {
		h.observer.RecordAuthAttempt(success)
	}
}
