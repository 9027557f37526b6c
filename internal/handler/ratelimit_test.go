package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/smokemoha/mortgage-calc-api/internal/handler"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := handler.NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if !rl.Allow("10.0.0.1") {
		t.Fatal("second request should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request should be limited")
	}

	// Other clients have their own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("different IP should not be limited")
	}
}

func TestRateLimiter_NonPositiveWindow(t *testing.T) {
	// A zero or negative window must not panic the sweep ticker.
	for _, window := range []time.Duration{0, -time.Second} {
		rl := handler.NewRateLimiter(2, window)
		if !rl.Allow("10.0.0.1") {
			t.Errorf("window %v: first request should pass", window)
		}
		rl.Stop()
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := handler.NewRateLimiter(1, 50*time.Millisecond)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request should be limited")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Error("request after window should pass")
	}
}

func TestCalculate_RateLimited(t *testing.T) {
	limiter := handler.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	router := newTestRouter(limiter)

	body := `{"principal": 300000, "annualRate": 6.5, "years": 30}`

	first := postCalculate(t, router, body, "application/json")
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := postCalculate(t, router, body, "application/json")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	resp := decodeJSON[errorBody](t, second)
	if resp.Error != "Too many requests" {
		t.Errorf("unexpected error: %q", resp.Error)
	}
}
