package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Metrics holds all Prometheus metrics. It implements usecase.Recorder.
type Metrics struct {
	// Wallet metrics
	Operations       *prometheus.CounterVec
	OperationAmount  *prometheus.HistogramVec
	OperationErrors  *prometheus.CounterVec
	AccountsFrozen   prometheus.Counter
	InterestApplied  prometheus.Counter
	InterestDaysPaid prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_operations_total",
				Help: "Total committed wallet operations by type",
			},
			[]string{"operation"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_operation_amount",
				Help:    "Amounts moved by committed wallet operations",
				Buckets: []float64{1, 10, 100, 1000, 5000, 10000, 20000},
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_operation_errors_total",
				Help: "Total rejected or failed wallet operations by reason",
			},
			[]string{"operation", "reason"},
		),
		AccountsFrozen: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_accounts_frozen_total",
			Help: "Total accounts frozen for exceeding the daily limit",
		}),
		InterestApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_interest_applied_total",
			Help: "Total interest credited to balances",
		}),
		InterestDaysPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_interest_days_total",
			Help: "Total account-days of interest compounded",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gowallet_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// RecordOperation counts a committed operation.
func (m *Metrics) RecordOperation(operation string, amount decimal.Decimal) {
	m.Operations.WithLabelValues(operation).Inc()
	if amount.IsPositive() {
		m.OperationAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
	}
}

// RecordFailure counts a failed operation under a bounded reason label.
func (m *Metrics) RecordFailure(operation string, err error) {
	m.OperationErrors.WithLabelValues(operation, Reason(err)).Inc()
}

// RecordFreeze counts an account freeze.
func (m *Metrics) RecordFreeze(string) {
	m.AccountsFrozen.Inc()
}

// RecordInterest adds an accrual run.
func (m *Metrics) RecordInterest(days int, interest decimal.Decimal) {
	m.InterestDaysPaid.Add(float64(days))
	if interest.IsPositive() {
		m.InterestApplied.Add(interest.InexactFloat64())
	}
}

// RecordAuthAttempt counts a login attempt.
func (m *Metrics) RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() {
	m.RateLimitHits.Inc()
}

var reasons = []struct {
	err    error
	reason string
}{
	{domain.ErrAccountNotFound, "account_not_found"},
	{domain.ErrAccountExists, "account_exists"},
	{domain.ErrAccountFrozen, "account_frozen"},
	{domain.ErrAuthFailure, "auth_failure"},
	{domain.ErrVersionConflict, "version_conflict"},
	{domain.ErrInvalidAmount, "invalid_amount"},
	{domain.ErrLimitExceeded, "limit_exceeded"},
	{domain.ErrInsufficientFunds, "insufficient_funds"},
	{domain.ErrDailyLimitExceeded, "daily_limit_exceeded"},
	{domain.ErrSameAccount, "same_account"},
	{domain.ErrIneligibleForLoan, "ineligible_for_loan"},
	{domain.ErrLoanOutstanding, "loan_outstanding"},
	{domain.ErrNoOutstandingLoan, "no_outstanding_loan"},
	{domain.ErrInvalidLoanTier, "invalid_loan_tier"},
	{domain.ErrInvalidAccountID, "validation"},
	{domain.ErrInvalidName, "validation"},
	{domain.ErrInvalidEmail, "validation"},
	{domain.ErrInvalidPhone, "validation"},
	{domain.ErrInvalidPassword, "validation"},
	{domain.ErrInvalidField, "validation"},
}

// Reason maps an error to a metric label.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}
