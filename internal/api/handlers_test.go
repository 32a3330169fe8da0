package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/analytics"
	"github.com/patrickwarner/opentripserve/internal/config"
	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
	"github.com/patrickwarner/opentripserve/internal/ratelimit"
)

// setupTestRedis spins up an in-memory Redis and wraps it in a RedisStore.
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *db.RedisStore) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	store := &db.RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: s.Addr()}),
		Ctx:    context.Background(),
	}
	return s, store
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	_, store := setupTestRedis(t)

	catalog := models.NewTestCatalogStore()
	require.NoError(t, catalog.InsertVendor(&models.Vendor{
		Name: "Harborview Hotel", Destination: "Lisbon", Category: "hotel",
		BasePrice: 200, Capacity: 50, HistoricalAverage: 10, Active: true,
	}))
	require.NoError(t, catalog.InsertVendor(&models.Vendor{
		Name: "Old Town Inn", Destination: "Lisbon", Category: "hotel",
		BasePrice: 150, Capacity: 30, HistoricalAverage: 8, Active: true,
	}))
	require.NoError(t, catalog.InsertActivity(&models.StoredActivity{
		Destination: "Lisbon",
		Activity: models.Activity{
			Name: "Castle walk", Type: "sightseeing", Duration: 120, Cost: 20,
			Location: models.LatLng{Lat: 38.7139, Lng: -9.1334}, Priority: 8,
		},
	}))
	require.NoError(t, catalog.InsertActivity(&models.StoredActivity{
		Destination: "Lisbon",
		Activity: models.Activity{
			Name: "Tram food tour", Type: "food", Duration: 90, Cost: 45,
			Location: models.LatLng{Lat: 38.7100, Lng: -9.1400}, Priority: 6,
		},
	}))

	cfg := config.Config{
		QuoteCacheTTL:   time.Minute,
		BookingCountTTL: 48 * time.Hour,
	}

	return &Server{
		Logger:      zap.NewNop(),
		Store:       store,
		Analytics:   analytics.NewMockAnalytics(),
		Catalog:     catalog,
		RateLimiter: ratelimit.NewVendorLimiter(ratelimit.Config{Enabled: false}, observability.NewNoOpRegistry()),
		Metrics:     observability.NewNoOpRegistry(),
		Config:      cfg,
	}
}

func newTestRouter(srv *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/price", srv.PriceHandler).Methods("POST")
	r.HandleFunc("/vendors/{id}/price", srv.VendorQuoteHandler).Methods("GET")
	r.HandleFunc("/vendors/{id}/bookings", srv.BookingHandler).Methods("POST")
	r.HandleFunc("/itinerary", srv.ItineraryHandler).Methods("POST")
	r.HandleFunc("/recommendations", srv.RecommendHandler).Methods("POST")
	r.HandleFunc("/health", srv.HealthHandler).Methods("GET")
	crud := r.PathPrefix("/api").Subrouter()
	crud.HandleFunc("/vendors", srv.ListVendors).Methods("GET")
	crud.HandleFunc("/vendors", srv.CreateVendor).Methods("POST")
	crud.HandleFunc("/vendors/{id}", srv.UpdateVendor).Methods("PUT")
	crud.HandleFunc("/vendors/{id}", srv.DeleteVendor).Methods("DELETE")
	crud.HandleFunc("/activities", srv.ListActivities).Methods("GET")
	crud.HandleFunc("/activities", srv.CreateActivity).Methods("POST")
	crud.HandleFunc("/activities/{id}", srv.UpdateActivity).Methods("PUT")
	crud.HandleFunc("/activities/{id}", srv.DeleteActivity).Methods("DELETE")
	return r
}

func TestPriceHandler_NeutralFactors(t *testing.T) {
	srv := newTestServer(t)

	body := `{"base_price":100,"demand_level":"medium","seasonal_factor":"shoulder","occupancy_rate":0,"days_until_booking":30}`
	req := httptest.NewRequest(http.MethodPost, "/price", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	srv.PriceHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.PricingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	// shoulder season applies 0.9, everything else is neutral
	assert.InDelta(t, 90.0, result.FinalPrice, 0.001)
	assert.Equal(t, 10, result.Discount)
}

func TestPriceHandler_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero base price", `{"base_price":0}`},
		{"negative base price", `{"base_price":-10}`},
		{"occupancy above 100", `{"base_price":100,"occupancy_rate":130}`},
		{"malformed json", `{"base_price":`},
		{"non-positive competitor price", `{"base_price":100,"competitor_prices":[50,0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/price", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			srv.PriceHandler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestVendorQuoteHandler(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/vendors/1/price?date=2027-07-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.VendorID)
	assert.Equal(t, "Lisbon", resp.Destination)
	// July is peak season regardless of booking volume
	assert.Equal(t, models.SeasonPeak, resp.Season)
	assert.Greater(t, resp.Pricing.FinalPrice, 0.0)
	assert.NotEmpty(t, resp.Pricing.Explanation)

	mock := srv.Analytics.(*analytics.MockAnalytics)
	assert.Equal(t, 1, mock.Quotes)
}

func TestVendorQuoteHandler_CacheHit(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/vendors/1/price?date=2027-07-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// The second request is served from the quote cache without touching
	// the analytics pipeline again.
	mock := srv.Analytics.(*analytics.MockAnalytics)
	assert.Equal(t, 1, mock.Quotes)
}

func TestVendorQuoteHandler_NotFound(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/vendors/999/price", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVendorQuoteHandler_RateLimited(t *testing.T) {
	srv := newTestServer(t)
	srv.RateLimiter = ratelimit.NewVendorLimiter(ratelimit.Config{Capacity: 1, RefillRate: 1, Enabled: true}, observability.NewNoOpRegistry())
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/vendors/1/price", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vendors/1/price", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestBookingHandler(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	for want := int64(1); want <= 2; want++ {
		req := httptest.NewRequest(http.MethodPost, "/vendors/1/bookings", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			VendorID      int     `json:"vendor_id"`
			BookingsToday int64   `json:"bookings_today"`
			Price         float64 `json:"price"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.VendorID)
		assert.Equal(t, want, resp.BookingsToday)
		// Price falls back to the vendor base price when the body is empty.
		assert.Equal(t, 200.0, resp.Price)
	}

	mock := srv.Analytics.(*analytics.MockAnalytics)
	assert.Equal(t, 2, mock.Bookings)
}

func TestBookingHandler_UnknownVendor(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/vendors/77/bookings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItineraryHandler_InlineActivities(t *testing.T) {
	srv := newTestServer(t)

	body := ItineraryRequest{
		Activities: []models.Activity{
			{Name: "a", Type: "museum", Cost: 30, Priority: 9, Location: models.LatLng{Lat: 0, Lng: 0}},
			{Name: "b", Type: "food", Cost: 40, Priority: 7, Location: models.LatLng{Lat: 0, Lng: 0.05}},
			{Name: "c", Type: "park", Cost: 10, Priority: 5, Location: models.LatLng{Lat: 0, Lng: 0.1}},
		},
		Preferences: models.TripPreferences{Budget: models.BudgetMedium, Pace: models.PaceModerate},
		Days:        2,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/itinerary", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()
	srv.ItineraryHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ItineraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 2)
	assert.Len(t, resp.Days[0].Activities, 3)
	assert.Empty(t, resp.Days[1].Activities)
	assert.InDelta(t, 80.0, resp.TotalCost, 0.001)
	assert.GreaterOrEqual(t, resp.SatisfactionScore, 0)
	assert.LessOrEqual(t, resp.SatisfactionScore, 100)

	mock := srv.Analytics.(*analytics.MockAnalytics)
	assert.Equal(t, 1, mock.Itineraries)
}

func TestItineraryHandler_CatalogFallback(t *testing.T) {
	srv := newTestServer(t)

	body := ItineraryRequest{
		Destination: "Lisbon",
		Preferences: models.TripPreferences{Budget: models.BudgetMedium, Pace: models.PaceRelaxed},
		Days:        1,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/itinerary", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()
	srv.ItineraryHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ItineraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 1)
	assert.Len(t, resp.Days[0].Activities, 2)
}

func TestItineraryHandler_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero days", `{"days":0,"activities":[{"name":"a"}]}`},
		{"no activities or destination", `{"days":2}`},
		{"unknown destination", `{"days":2,"destination":"Atlantis"}`},
		{"malformed json", `{"days":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/itinerary", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			srv.ItineraryHandler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRecommendHandler(t *testing.T) {
	srv := newTestServer(t)

	body := RecommendRequest{
		History: []models.TravelOption{{Type: "beach", PriceRange: "$$", Rating: 5}},
		Options: []models.TravelOption{
			{Name: "mountain", Type: "mountain", PriceRange: "$", Rating: 3},
			{Name: "island", Type: "beach", PriceRange: "$$", Rating: 5},
		},
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()
	srv.RecommendHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var scored []models.ScoredOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scored))
	require.Len(t, scored, 2)
	assert.Equal(t, "island", scored[0].Name)
}

func TestRecommendHandler_NoOptions(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"history":[]}`))
	rec := httptest.NewRecorder()
	srv.RecommendHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVendorCRUD(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	// Create
	payload := `{"name":"River Lodge","destination":"Porto","category":"hotel","base_price":120,"capacity":20,"active":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/vendors", bytes.NewBufferString(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	// List includes the new vendor
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vendors", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var vendors []models.Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vendors))
	assert.Len(t, vendors, 3)

	// Update
	updated := `{"name":"River Lodge","destination":"Porto","category":"hotel","base_price":140,"capacity":25,"active":true}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/vendors/3", bytes.NewBufferString(updated)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 140.0, srv.Catalog.GetVendor(3).BasePrice, 0.001)

	// Delete
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/vendors/3", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, srv.Catalog.GetVendor(3))

	// Deleting again is a 404
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/vendors/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVendorCRUD_Validation(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/vendors", bytes.NewBufferString(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityCRUD(t *testing.T) {
	srv := newTestServer(t)
	router := newTestRouter(srv)

	payload := `{"destination":"Porto","name":"Cellar tour","type":"food","duration":60,"cost":25,"location":{"lat":41.14,"lng":-8.61},"priority":7}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewBufferString(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.StoredActivity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	// Destination filter
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities?destination=Porto", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var acts []models.StoredActivity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acts))
	require.Len(t, acts, 1)
	assert.Equal(t, "Cellar tour", acts[0].Name)

	// Delete
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/activities/3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.HealthHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
