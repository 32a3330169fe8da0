package ratelimit

import (
	"testing"
	"time"

	"github.com/patrickwarner/opentripserve/internal/observability"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := NewTokenBucket(5, 1) // 5 tokens, refill 1 per second

	// Should allow 5 requests initially
	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 6th request should be blocked
	if bucket.Allow() {
		t.Error("Expected 6th request to be blocked")
	}

	// Check stats
	hits, total := bucket.Stats()
	if hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
	if total != 6 {
		t.Errorf("Expected 6 total requests, got %d", total)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(2, 10) // 2 tokens, refill 10 per second

	// Exhaust tokens
	bucket.Allow()
	bucket.Allow()

	// Should be blocked
	if bucket.Allow() {
		t.Error("Expected request to be blocked")
	}

	// Wait and try again (tokens should refill)
	time.Sleep(200 * time.Millisecond) // 200ms = 0.2 seconds * 10 tokens/sec = 2 tokens

	if !bucket.Allow() {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestVendorLimiter_Allow(t *testing.T) {
	limiter := NewVendorLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true}, observability.NewNoOpRegistry())

	// Each vendor gets its own bucket
	if !limiter.Allow("1") || !limiter.Allow("1") {
		t.Error("Expected first two requests for vendor 1 to be allowed")
	}
	if limiter.Allow("1") {
		t.Error("Expected third request for vendor 1 to be blocked")
	}
	if !limiter.Allow("2") {
		t.Error("Expected request for vendor 2 to be allowed")
	}

	stats := limiter.GetStats()
	if stats["1"].Hits != 1 {
		t.Errorf("Expected 1 hit for vendor 1, got %d", stats["1"].Hits)
	}
	if stats["2"].Hits != 0 {
		t.Errorf("Expected 0 hits for vendor 2, got %d", stats["2"].Hits)
	}
}

func TestVendorLimiter_Disabled(t *testing.T) {
	limiter := NewVendorLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: false}, observability.NewNoOpRegistry())

	for i := 0; i < 10; i++ {
		if !limiter.Allow("1") {
			t.Error("Expected all requests to be allowed when disabled")
		}
	}
}
