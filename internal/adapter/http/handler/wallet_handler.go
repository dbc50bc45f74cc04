package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	Deposit(ctx context.Context, input usecase.AmountInput) (*usecase.OperationResult, error)
	Withdraw(ctx context.Context, input usecase.AmountInput) (*usecase.OperationResult, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferOutput, error)
	LoanOptions(ctx context.Context, accountID string) (domain.LoanOptions, error)
	IssueLoan(ctx context.Context, input usecase.LoanInput) (*usecase.LoanOutput, error)
	RepayLoan(ctx context.Context, input usecase.AmountInput) (*usecase.RepayOutput, error)
	AddDailyInterest(ctx context.Context, accountID string) (*usecase.InterestOutput, error)
	History(ctx context.Context, accountID string) ([]domain.Transaction, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	Policy() domain.Policy
}

// WalletHandler serves the authenticated wallet's own resources.
type WalletHandler struct {
	wallet   WalletService
	accounts AccountService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet WalletService, accounts AccountService) *WalletHandler {
	return &WalletHandler{wallet: wallet, accounts: accounts}
}

// Get returns the wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	account, err := h.wallet.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// History returns the full record sequence, oldest first. Query parameters are ignored.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	txs, err := h.wallet.History(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Total:        len(txs),
	})
}

// Deposit credits the wallet.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.amountOperation(w, r, "deposit failed", h.wallet.Deposit)
}

// Withdraw debits the wallet.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.amountOperation(w, r, "withdrawal failed", h.wallet.Withdraw)
}

func (h *WalletHandler) amountOperation(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	op func(context.Context, usecase.AmountInput) (*usecase.OperationResult, error),
) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	res, err := op(r.Context(), input)
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewOperationResponse(res.Account, res.Transaction))
}

// Transfer sends money to another wallet. Transfers above the confirmation
// threshold answer 428 unless the request sets confirm.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, "transfer failed", err)
		return
	}

	out, err := h.wallet.Transfer(r.Context(), input)
	if err != nil {
		writeDomainError(w, "transfer failed", err)
		return
	}

	if out.Cancelled {
		writeError(w, http.StatusPreconditionRequired, "confirmation required",
			fmt.Sprintf("transfers above %s must be sent with confirm=true",
				h.wallet.Policy().ConfirmThreshold.StringFixed(domain.MoneyPlaces)))
		return
	}

	writeJSON(w, http.StatusOK, dto.NewOperationResponse(out.From, out.Out))
}

// LoanOptions describes the loan actions available to the wallet.
func (h *WalletHandler) LoanOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	opts, err := h.wallet.LoanOptions(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get loan options", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanOptionsFromDomain(opts))
}

// Loan issues one of the advertised loans.
func (h *WalletHandler) Loan(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.LoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, "loan failed", err)
		return
	}

	out, err := h.wallet.IssueLoan(r.Context(), input)
	if err != nil {
		writeDomainError(w, "loan failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanResponse{
		OperationResponse: *dto.NewOperationResponse(out.Account, out.Transaction),
		AnnualRate:        out.Tier.AnnualRate,
	})
}

// Repay pays down the outstanding loan. An amount of 0 changes nothing.
func (h *WalletHandler) Repay(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, "repayment failed", err)
		return
	}

	out, err := h.wallet.RepayLoan(r.Context(), input)
	if err != nil {
		writeDomainError(w, "repayment failed", err)
		return
	}

	resp := dto.RepayResponse{Skipped: out.Skipped}
	if out.Skipped {
		resp.Account = dto.AccountFromDomain(out.Account)
	} else {
		resp.OperationResponse = *dto.NewOperationResponse(out.Account, out.Transaction)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Interest applies daily interest for the days elapsed since the last run.
func (h *WalletHandler) Interest(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	out, err := h.wallet.AddDailyInterest(r.Context(), id)
	if err != nil {
		writeDomainError(w, "interest failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InterestResponse{
		Account:  dto.AccountFromDomain(out.Account),
		Days:     out.Result.Days,
		Interest: out.Result.Interest,
	})
}

// UpdateProfile changes one profile field.
func (h *WalletHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, "failed to update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ChangePassword replaces the wallet password.
func (h *WalletHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), req.ToUseCaseInput(id)); err != nil {
		writeDomainError(w, "failed to change password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
