package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	repo     *mocks.InMemoryAccountRepository
	clock    *mocks.StubClock
	wallet   *usecase.WalletUseCase
	accounts *usecase.AccountUseCase
}

func newTestEnv(t *testing.T, seed ...*domain.Account) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:  mocks.NewInMemoryAccountRepository(seed...),
		clock: mocks.NewStubClock(testNow),
	}
	env.wallet = usecase.NewWalletUseCase(usecase.Config{
		Repo:   env.repo,
		Ledger: domain.NewLedger(domain.DefaultPolicy(), mocks.NewStubIDGenerator()),
		Clock:  env.clock,
	})
	env.accounts = usecase.NewAccountUseCase(env.wallet)
	return env
}

func seededAccount(id, balance string) *domain.Account {
	acc := domain.NewAccount(id, domain.Profile{Name: "Alice", Email: "alice@example.com", Phone: "5551234"}, "pass1", decimal.NewFromInt(20000), testNow)
	acc.Balance = decimal.RequireFromString(balance)
	return acc
}

// jsonRequest builds a request authenticated as accountID (when non-empty).
func jsonRequest(t *testing.T, method, path, accountID string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req = req.WithContext(middleware.WithAccountID(req.Context(), accountID))
	}
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}
