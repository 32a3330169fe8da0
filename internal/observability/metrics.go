package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserver_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripserver_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// price quotes served, labelled by source (computed or cache)
	QuoteCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserver_quotes_total",
			Help: "Total price quotes served",
		},
		[]string{"source"},
	)

	// distribution of quoted discount percentages
	QuoteDiscount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripserver_quote_discount_percent",
			Help:    "Histogram of quoted discount percentages",
			Buckets: prometheus.LinearBuckets(-50, 10, 11),
		},
	)

	// bookings recorded, labelled by status
	BookingCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserver_bookings_total",
			Help: "Total bookings recorded",
		},
		[]string{"status"},
	)

	// itineraries generated
	ItineraryCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripserver_itineraries_total",
			Help: "Total itineraries generated",
		},
	)

	// distribution of predicted satisfaction scores
	SatisfactionScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripserver_satisfaction_score",
			Help:    "Histogram of predicted satisfaction scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// recommendation requests served
	RecommendationCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripserver_recommendations_total",
			Help: "Total recommendation requests served",
		},
	)

	// rate limit hits per vendor
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserver_ratelimit_hits_total",
			Help: "Total rate limit hits per vendor",
		},
		[]string{"vendor_id"},
	)

	// rate limit requests per vendor
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserver_ratelimit_requests_total",
			Help: "Total rate limit requests per vendor",
		},
		[]string{"vendor_id"},
	)

	// number of errors writing analytics events
	AnalyticsErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripserver_analytics_errors_total",
			Help: "Total analytics event write errors",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		QuoteCount,
		QuoteDiscount,
		BookingCount,
		ItineraryCount,
		SatisfactionScore,
		RecommendationCount,
		RateLimitHits,
		RateLimitRequests,
		AnalyticsErrors,
	)
}
