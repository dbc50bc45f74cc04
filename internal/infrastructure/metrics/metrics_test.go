package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry)

	m.RecordOperation("deposit", decimal.NewFromInt(10))
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorder(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordOperation("deposit", decimal.NewFromInt(100))
	m.RecordOperation("deposit", decimal.NewFromInt(50))
	m.RecordFailure("withdraw", domain.ErrInsufficientFunds)
	m.RecordFailure("withdraw", fmt.Errorf("%w: maximum is 10000.00", domain.ErrLimitExceeded))
	m.RecordFailure("withdraw", errors.New("disk on fire"))
	m.RecordFreeze("1001")
	m.RecordInterest(3, decimal.RequireFromString("1.50"))

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("deposit")); got != 2 {
		t.Errorf("expected 2 deposits, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationErrors.WithLabelValues("withdraw", "insufficient_funds")); got != 1 {
		t.Errorf("expected 1 insufficient_funds, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationErrors.WithLabelValues("withdraw", "limit_exceeded")); got != 1 {
		t.Errorf("expected wrapped error to be classified, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationErrors.WithLabelValues("withdraw", "internal")); got != 1 {
		t.Errorf("expected 1 internal, got %v", got)
	}
	if got := testutil.ToFloat64(m.AccountsFrozen); got != 1 {
		t.Errorf("expected 1 freeze, got %v", got)
	}
	if got := testutil.ToFloat64(m.InterestDaysPaid); got != 3 {
		t.Errorf("expected 3 interest days, got %v", got)
	}
	if got := testutil.ToFloat64(m.InterestApplied); got != 1.5 {
		t.Errorf("expected 1.5 interest, got %v", got)
	}
}

func TestRecordAuthAndRateLimit(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordAuthAttempt(true)
	m.RecordAuthAttempt(false)
	m.RecordAuthAttempt(false)
	m.RecordRateLimited()

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")); got != 2 {
		t.Errorf("expected 2 failed attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Errorf("expected 1 rate limit hit, got %v", got)
	}
}
