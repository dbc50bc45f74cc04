package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/handler"
	apimiddleware "github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router, _ := newTestRouter(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	})

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_WalletRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := newStubIdempotencyStore()
	router, tokens := newTestRouter(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyTTL = time.Hour
	})

	token, _, err := tokens.Generate("1001")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	deposit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposit", strings.NewReader(`{"amount":"25.00"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := deposit()
	if first.Code != http.StatusOK {
		t.Fatalf("expected deposit to succeed, got %d: %s", first.Code, first.Body.String())
	}
	if _, ok := store.completed["1001:key-123"]; !ok {
		t.Fatalf("expected response stored under account-scoped key, got %v", store.completed)
	}

	second := deposit()
	if second.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replayed response")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("expected identical replay body")
	}
}

func TestNewRouter_LoginThenFetchWallet(t *testing.T) {
	router, _ := newTestRouter()

	login := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"wallet_id":"1001","password":"pass1"}`))
	login.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	start := strings.Index(body, `"token":"`) + len(`"token":"`)
	end := strings.Index(body[start:], `"`)
	token := body[start : start+end]

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"wallet_id":"1001"`) {
		t.Fatalf("expected wallet response, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router, _ := newTestRouter(func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.NotFoundHandler()
	})

	chiRoutes, ok := router.(chi.Routes)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	expected := map[string]bool{
		"GET /health":                     false,
		"GET /ready":                      false,
		"GET /metrics":                    false,
		"POST /api/v1/register":           false,
		"POST /api/v1/login":              false,
		"GET /api/v1/wallet/":             false,
		"GET /api/v1/wallet/history":      false,
		"GET /api/v1/wallet/loan-options": false,
		"POST /api/v1/wallet/deposit":     false,
		"POST /api/v1/wallet/withdraw":    false,
		"POST /api/v1/wallet/transfer":    false,
		"POST /api/v1/wallet/loan":        false,
		"POST /api/v1/wallet/repay":       false,
		"POST /api/v1/wallet/interest":    false,
		"PATCH /api/v1/wallet/profile":    false,
		"PUT /api/v1/wallet/password":     false,
	}

	err := chi.Walk(chiRoutes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		key := method + " " + route
		if _, ok := expected[key]; ok {
			expected[key] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}

	for route, seen := range expected {
		if !seen {
			t.Errorf("route %s not registered", route)
		}
	}
}

func newTestRouter(opts ...func(*RouterConfig)) (http.Handler, *auth.JWTManager) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	acc := domain.NewAccount("1001", domain.Profile{Name: "Alice", Email: "alice@example.com", Phone: "5551234"}, "pass1", decimal.NewFromInt(20000), now)
	acc.Balance = decimal.NewFromInt(100)

	wallet := usecase.NewWalletUseCase(usecase.Config{
		Repo:   mocks.NewInMemoryAccountRepository(acc),
		Ledger: domain.NewLedger(domain.DefaultPolicy(), mocks.NewStubIDGenerator()),
		Clock:  mocks.NewStubClock(now),
	})
	accounts := usecase.NewAccountUseCase(wallet)
	tokens := auth.NewJWTManager("router-secret", time.Hour)

	cfg := RouterConfig{
		AuthHandler:   handler.NewAuthHandler(accounts, tokens, nil),
		WalletHandler: handler.NewWalletHandler(wallet, accounts),
		HealthHandler: handler.NewHealthHandler(nil),
		Tokens:        tokens,
		Logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewRouter(cfg), tokens
}

type stubIdempotencyStore struct {
	mu        sync.Mutex
	completed map[string][]byte
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{completed: make(map[string][]byte)}
}

func (s *stubIdempotencyStore) Reserve(_ context.Context, key string, _ time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[key], nil
}

func (s *stubIdempotencyStore) Complete(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[key] = response
	return nil
}

func (s *stubIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.completed, key)
	return nil
}
