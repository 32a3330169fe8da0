package ratelimit

import (
	"fmt"
	"sync"

	"github.com/patrickwarner/opentripserve/internal/observability"
)

// VendorLimiter manages rate limiting for multiple vendors.
//
// Each vendor gets its own token bucket, created lazily on first access.
// The limiter integrates with an injected metrics registry to track rate limiting activity.
//
// Example usage:
//
//	config := Config{Capacity: 100, RefillRate: 10, Enabled: true}
//	metrics := observability.NewPrometheusRegistry()
//	limiter := NewVendorLimiter(config, metrics)
//
//	if limiter.Allow("42") {
//	    // Serve quote for vendor 42
//	} else {
//	    // Vendor 42 is rate limited
//	}
type VendorLimiter struct {
	buckets map[string]*TokenBucket       // Map of vendor ID to token bucket
	mu      sync.RWMutex                  // Protects the buckets map
	config  Config                        // Rate limiting configuration
	metrics observability.MetricsRegistry // Metrics registry for tracking rate limiting activity
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewVendorLimiter creates a new vendor rate limiter with the given configuration.
func NewVendorLimiter(config Config, metrics observability.MetricsRegistry) *VendorLimiter {
	return &VendorLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow checks if a request for the given vendor should be allowed.
//
// Returns true if the request should be allowed (token available) and false
// if the request should be rate limited (no tokens available).
//
// If rate limiting is disabled via config, this method always returns true.
// The method automatically creates token buckets for new vendors and
// updates metrics via the injected registry for monitoring.
func (vl *VendorLimiter) Allow(vendorID string) bool {
	if !vl.config.Enabled {
		return true
	}

	// Update metrics for monitoring
	vl.metrics.IncrementRateLimitRequests(vendorID)

	// Get or create token bucket for this vendor
	vl.mu.RLock()
	bucket, exists := vl.buckets[vendorID]
	vl.mu.RUnlock()

	if !exists {
		// Double-checked locking pattern to avoid race conditions
		vl.mu.Lock()
		bucket, exists = vl.buckets[vendorID]
		if !exists {
			bucket = NewTokenBucket(vl.config.Capacity, vl.config.RefillRate)
			vl.buckets[vendorID] = bucket
		}
		vl.mu.Unlock()
	}

	// Check if request is allowed
	allowed := bucket.Allow()
	if !allowed {
		vl.metrics.IncrementRateLimitHits(vendorID)
	}

	return allowed
}

// GetStats returns rate limiting statistics for all vendors.
//
// Returns a map where keys are vendor IDs and values contain
// statistics about rate limiting activity for that vendor.
//
// This method is thread-safe and provides a snapshot of current statistics.
func (vl *VendorLimiter) GetStats() map[string]RateLimitStats {
	vl.mu.RLock()
	defer vl.mu.RUnlock()

	stats := make(map[string]RateLimitStats)
	for vendorID, bucket := range vl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[vendorID] = RateLimitStats{
			VendorID: vendorID,
			Hits:     hits,
			Total:    total,
			HitRate:  hitRate,
		}
	}

	return stats
}

// RateLimitStats contains statistics about rate limiting for a single vendor.
type RateLimitStats struct {
	VendorID string  `json:"VendorID"` // Vendor identifier
	Hits     int64   `json:"Hits"`     // Number of rate limited requests
	Total    int64   `json:"Total"`    // Total number of requests processed
	HitRate  float64 `json:"HitRate"`  // Percentage of requests rate limited (0.0-1.0)
}

// String returns a human-readable representation of the rate limit statistics.
func (rls RateLimitStats) String() string {
	return fmt.Sprintf("Vendor %s: %d/%d hits (%.2f%%)",
		rls.VendorID, rls.Hits, rls.Total, rls.HitRate*100)
}
