package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore wraps a redis client and context for operations.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// IncrementBooking increments the daily booking counter for a vendor.
// Sets a TTL of `window` on first set. Returns the current count.
func (r *RedisStore) IncrementBooking(vendorID int, window time.Duration) (int64, error) {
	key := bookingKey(vendorID, time.Now())
	val, err := r.Client.Incr(r.Ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		r.Client.Expire(r.Ctx, key, window)
	}
	return val, nil
}

// GetBookingCount returns today's booking count for a vendor. A missing key
// counts as zero.
func (r *RedisStore) GetBookingCount(vendorID int) (int64, error) {
	val, err := r.Client.Get(r.Ctx, bookingKey(vendorID, time.Now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// GetCachedQuote returns a previously cached quote payload for the key, or
// ok=false on a cache miss.
func (r *RedisStore) GetCachedQuote(key string) ([]byte, bool, error) {
	val, err := r.Client.Get(r.Ctx, "quote:"+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// SetCachedQuote stores a quote payload under the key with the given TTL.
func (r *RedisStore) SetCachedQuote(key string, payload []byte, ttl time.Duration) error {
	return r.Client.Set(r.Ctx, "quote:"+key, payload, ttl).Err()
}

// bookingKey builds the daily counter key for a vendor.
func bookingKey(vendorID int, day time.Time) string {
	return fmt.Sprintf("bookings:vendor:%d:%s", vendorID, day.Format("2006-01-02"))
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
