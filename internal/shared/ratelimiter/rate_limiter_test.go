package ratelimiter

import (
	"context"
	"testing"
	"time"
)

// TestRateLimiter_Burst は上限回数までは待機せずに通過することを検証します。
func TestRateLimiter_Burst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected burst to pass immediately, took %v", elapsed)
	}
}

// TestRateLimiter_DeadlineExceeded は期限内に枠が空かない場合にエラーを返すことを検証します。
func TestRateLimiter_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected error when the limit is exhausted, got nil")
	}
}

// TestRateLimiter_WaitsForRefill は枠が回復するまで待機してから通過することを検証します。
func TestRateLimiter_WaitsForRefill(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 200*time.Millisecond)
	for i := 0; i < 2; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected to wait for a token, took %v", elapsed)
	}
}

// TestRateLimiter_CanceledContext はキャンセル済みのコンテキストでエラーを返すことを検証します。
func TestRateLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	_ = rl.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}
