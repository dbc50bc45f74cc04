package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

func cacheAccount(id string) *domain.Account {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	a := domain.NewAccount(id, domain.Profile{Name: "Kim", Email: "k@m.io", Phone: "9"}, "pw1", decimal.NewFromInt(20000), now)
	a.Balance = decimal.RequireFromString("10.50")
	return a
}

func TestAccountCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client, time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, cacheAccount("1001")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !mr.Exists("wallet:account:1001") {
		t.Fatalf("expected key wallet:account:1001")
	}

	got, err := cache.Get(ctx, "1001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("expected balance 10.50, got %s", got.Balance)
	}
}

func TestAccountCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client, time.Minute)
	if _, err := cache.Get(context.Background(), "nope"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestAccountCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client, 30*time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, cacheAccount("1001")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, err := cache.Get(ctx, "1001"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected entry to expire, got %v", err)
	}
}

func TestAccountCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"1001", "2002"} {
		if err := cache.Set(ctx, cacheAccount(id)); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := cache.Delete(ctx, "1001", "2002"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if mr.Exists("wallet:account:1001") || mr.Exists("wallet:account:2002") {
		t.Fatalf("expected keys to be deleted")
	}

	if err := cache.Delete(ctx); err != nil {
		t.Fatalf("empty delete failed: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
