package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/gowallet/internal/usecase"
)

func TestIdempotencyStore_ReserveReturnsCompletedResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	resp, err := store.Reserve(ctx, "key", time.Minute)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	if string(resp) != "cached" {
		t.Fatalf("expected cached response, got %q", resp)
	}
}

func TestIdempotencyStore_ReserveLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	resp, err := store.Reserve(ctx, "pending", time.Minute)
	if err != nil || resp != nil {
		t.Fatalf("unexpected result: resp=%v err=%v", resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	if err != nil || val != pendingMarker {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}

	if ttl := mr.TTL(store.prefix + "pending"); ttl != time.Minute {
		t.Fatalf("expected ttl to be set, got %s", ttl)
	}

	if _, err := store.Reserve(ctx, "pending", time.Minute); !errors.Is(err, usecase.ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight for second reservation, got %v", err)
	}
}

func TestIdempotencyStore_CompleteAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := store.Complete(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}

	if _, err := store.Reserve(ctx, "failed", time.Minute); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := store.Release(ctx, "failed"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if mr.Exists(store.prefix + "failed") {
		t.Fatalf("expected released key to be removed")
	}
}

func TestIdempotencyStore_ReserveFailsWhenRedisDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	store := NewIdempotencyStore(client)
	if _, err := store.Reserve(context.Background(), "key", time.Minute); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
