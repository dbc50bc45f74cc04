package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapDomainError picks for it.
// Details of unexpected errors are not exposed.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, message, "internal error")
		return
	}
	writeError(w, status, message, err.Error())
}

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrAccountExists, http.StatusConflict},
	{domain.ErrVersionConflict, http.StatusConflict},
	{usecase.ErrRequestInFlight, http.StatusConflict},
	{domain.ErrAuthFailure, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrExpiredToken, http.StatusUnauthorized},
	{domain.ErrAccountFrozen, http.StatusForbidden},
	// Checked before the amount errors: a freeze can be joined with a
	// persistence failure.
	{domain.ErrDailyLimitExceeded, http.StatusForbidden},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{domain.ErrIneligibleForLoan, http.StatusUnprocessableEntity},
	{domain.ErrLoanOutstanding, http.StatusUnprocessableEntity},
	{domain.ErrNoOutstandingLoan, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrLimitExceeded, http.StatusBadRequest},
	{domain.ErrSameAccount, http.StatusBadRequest},
	{domain.ErrInvalidLoanTier, http.StatusBadRequest},
	{domain.ErrInvalidAccountID, http.StatusBadRequest},
	{domain.ErrInvalidName, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrInvalidPhone, http.StatusBadRequest},
	{domain.ErrInvalidPassword, http.StatusBadRequest},
	{domain.ErrInvalidField, http.StatusBadRequest},
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// accountID returns the authenticated wallet id, writing a 401 when absent.
func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
	}
	return id, ok
}
