package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickwarner/opentripserve/internal/config"
	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	server          string
	vendorCount     int
	totalReq        int
	conc            int
	duration        time.Duration
	rate            float64
	bookingRate     float64
	horizonDays     int
	stats           bool
	flush           bool
	redisAddr       string
	debug           bool
	label           string
	surgeInterval   time.Duration
	surgeDuration   time.Duration
	surgeMultiplier float64
	jitter          float64
)

var logger *zap.Logger

// HTTP client with proper resource limits
var httpClient *http.Client

var (
	budgets    = []string{"", "low", "medium", "high"}
	userAgents = []string{
		// Mobile
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 12; Pixel 6 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.5735.196 Mobile Safari/537.36",
		"Mozilla/5.0 (iPad; CPU OS 15_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.2 Mobile/15E148 Safari/604.1",

		// Desktop
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_3_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
		"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:111.0) Gecko/20100101 Firefox/111.0",
	}
	userIPs = []string{
		"192.0.2.1",
		"198.51.100.1",
		"203.0.113.1",
	}
)

const statsInterval = 5 * time.Second

var (
	countSent        uint64
	countSuccess     uint64
	countRateLimited uint64
	countErrors      uint64
	countBookings    uint64
)

func main() {
	flag.StringVar(&server, "server", "http://localhost:8787", "trip server base URL")
	flag.IntVar(&vendorCount, "vendors", 10, "number of vendor IDs to quote (1..N)")
	flag.IntVar(&totalReq, "requests", 1000, "total requests to send")
	flag.IntVar(&conc, "concurrency", 20, "concurrent requests")
	flag.DurationVar(&duration, "duration", 0, "how long to run traffic (0 to disable)")
	flag.Float64Var(&rate, "rate", 0, "requests per second (0 for unlimited)")
	flag.Float64Var(&bookingRate, "booking-rate", 0.05, "probability of a booking per quote")
	flag.IntVar(&horizonDays, "horizon", 120, "max days ahead for random travel dates")
	flag.BoolVar(&stats, "stats", false, "print aggregated stats periodically")
	flag.BoolVar(&flush, "flush", false, "flush redis before sending traffic")
	flag.StringVar(&redisAddr, "redis", "", "redis address (defaults to REDIS_ADDR)")
	flag.BoolVar(&debug, "debug", false, "enable verbose debug logs")
	flag.StringVar(&label, "label", "", "label to identify this run")
	flag.DurationVar(&surgeInterval, "surge-interval", 0, "interval between traffic surges (0 to disable)")
	flag.DurationVar(&surgeDuration, "surge-duration", 0, "duration of each surge window")
	flag.Float64Var(&surgeMultiplier, "surge-multiplier", 2.0, "requests multiplier during surge period")
	flag.Float64Var(&jitter, "jitter", 0.0, "random jitter factor for request spacing")
	flag.Parse()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	var err error
	logger, err = observability.InitLoggerWithLevel(level, "traffic-simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize HTTP client with proper resource limits
	httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).Dial,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			MaxConnsPerHost:       50, // Limit connections per host
			IdleConnTimeout:       90 * time.Second,
			DisableKeepAlives:     false, // Enable connection reuse
		},
	}

	if label == "" {
		label = time.Now().Format(time.RFC3339)
	}

	if flush {
		cfg := config.Load()
		addr := redisAddr
		if addr == "" {
			addr = cfg.RedisAddr
		}
		store, err := db.InitRedis(addr)
		if err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}

		// Selectively flush operational data only, preserve catalog data
		patterns := []string{
			"bookings:*", // daily booking counters
			"quote:*",    // cached quotes
		}

		flushedCount := 0
		for _, pattern := range patterns {
			keys, err := store.Client.Keys(store.Ctx, pattern).Result()
			if err != nil {
				logger.Error("failed to get keys for pattern", zap.String("pattern", pattern), zap.Error(err))
				continue
			}
			if len(keys) > 0 {
				if err := store.Client.Del(store.Ctx, keys...).Err(); err != nil {
					logger.Error("failed to delete keys", zap.String("pattern", pattern), zap.Error(err))
					continue
				}
				flushedCount += len(keys)
			}
		}

		store.Close()
		logger.Info("redis operational data flushed",
			zap.String("addr", addr),
			zap.Int("keys_deleted", flushedCount),
			zap.String("note", "catalog data preserved"))
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	var wg sync.WaitGroup
	sem := make(chan struct{}, conc)
	done := make(chan struct{})

	var baseInterval time.Duration
	if rate > 0 {
		baseInterval = time.Duration(float64(time.Second) / rate)
	} else if duration > 0 && totalReq > 0 {
		baseInterval = duration / time.Duration(totalReq)
	}

	start := time.Now()
	next := start

	if stats {
		go func() {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					printStats()
				case <-done:
					printStats()
					return
				}
			}
		}()
	}
	for i := 0; ; i++ {
		if totalReq > 0 && i >= totalReq {
			break
		}
		if duration > 0 && time.Since(start) >= duration {
			break
		}
		if baseInterval > 0 {
			effective := baseInterval
			if surgeInterval > 0 && surgeDuration > 0 && surgeMultiplier > 0 {
				elapsed := time.Since(start)
				if elapsed%surgeInterval < surgeDuration {
					effective = time.Duration(float64(effective) / surgeMultiplier)
				}
			}
			if jitter > 0 {
				jf := 1 + (r.Float64()*2-1)*jitter
				if jf < 0.1 {
					jf = 0.1
				}
				effective = time.Duration(float64(effective) * jf)
			}
			now := time.Now()
			if now.Before(next) {
				time.Sleep(next.Sub(now))
			}
			next = next.Add(effective)
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			atomic.AddUint64(&countSent, 1)

			vendorID := r.Intn(vendorCount) + 1
			travelDate := time.Now().AddDate(0, 0, r.Intn(horizonDays)+1).Format("2006-01-02")
			budget := budgets[r.Intn(len(budgets))]
			ua := userAgents[r.Intn(len(userAgents))]
			ip := userIPs[r.Intn(len(userIPs))]

			quoteURL := fmt.Sprintf("%s/vendors/%d/price?date=%s", strings.TrimRight(server, "/"), vendorID, travelDate)
			if budget != "" {
				quoteURL += "&budget=" + budget
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, "GET", quoteURL, nil)
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("request build error", zap.Error(err))
				return
			}
			req.Header.Set("User-Agent", ua)
			req.Header.Set("X-Forwarded-For", ip)

			resp, err := httpClient.Do(req)
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("quote request error", zap.Error(err))
				return
			}
			bodyBytes, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("read body error", zap.Error(err))
				return
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				atomic.AddUint64(&countRateLimited, 1)
				logger.Debug("rate limited", zap.Int("vendor_id", vendorID))
				return
			}
			if resp.StatusCode != http.StatusOK {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("unexpected status", zap.Int("status", resp.StatusCode), zap.String("body", strings.TrimSpace(string(bodyBytes))))
				return
			}
			var quote struct {
				VendorID int `json:"vendor_id"`
				Pricing  struct {
					FinalPrice float64 `json:"final_price"`
					Discount   int     `json:"discount"`
				} `json:"pricing"`
			}
			if err := json.Unmarshal(bodyBytes, &quote); err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("decode error", zap.Error(err), zap.String("body", strings.TrimSpace(string(bodyBytes))))
				return
			}

			if r.Float64() < bookingRate {
				bookingURL := fmt.Sprintf("%s/vendors/%d/bookings", strings.TrimRight(server, "/"), vendorID)
				payload, _ := json.Marshal(map[string]float64{"price": quote.Pricing.FinalPrice})
				bkCtx, bkCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer bkCancel()
				bkReq, err := http.NewRequestWithContext(bkCtx, "POST", bookingURL, bytes.NewReader(payload))
				if err != nil {
					atomic.AddUint64(&countErrors, 1)
					logger.Error("booking request build error", zap.Error(err))
					return
				}
				bkReq.Header.Set("Content-Type", "application/json")
				bkReq.Header.Set("User-Agent", ua)
				bkReq.Header.Set("X-Forwarded-For", ip)
				bkResp, err := httpClient.Do(bkReq)
				if err != nil {
					atomic.AddUint64(&countErrors, 1)
					logger.Error("booking request error", zap.Error(err))
					return
				}
				_ = bkResp.Body.Close()
				if bkResp.StatusCode != http.StatusCreated {
					atomic.AddUint64(&countErrors, 1)
					logger.Error("booking unexpected status", zap.Int("status", bkResp.StatusCode))
					return
				}
				atomic.AddUint64(&countBookings, 1)
			}
			atomic.AddUint64(&countSuccess, 1)
			logger.Debug("quote", zap.Int("vendor_id", vendorID), zap.String("date", travelDate), zap.String("budget", budget), zap.Float64("final_price", quote.Pricing.FinalPrice))
		}(i)
	}
	wg.Wait()
	close(done)
	if !stats {
		printStats()
	}
}

func printStats() {
	sent := atomic.LoadUint64(&countSent)
	succ := atomic.LoadUint64(&countSuccess)
	rl := atomic.LoadUint64(&countRateLimited)
	errs := atomic.LoadUint64(&countErrors)
	bk := atomic.LoadUint64(&countBookings)
	var conv float64
	if succ > 0 {
		conv = float64(bk) / float64(succ)
	}
	logger.Info("stats", zap.String("run", label), zap.Uint64("sent", sent), zap.Uint64("success", succ), zap.Uint64("rate_limited", rl), zap.Uint64("errors", errs), zap.Uint64("bookings", bk), zap.Float64("conversion", conv))
}
