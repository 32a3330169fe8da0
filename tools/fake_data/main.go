package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/config"
	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
)

var (
	vendorsPerDest   = flag.Int("vendors", 5, "vendors per destination")
	activitiesPer    = flag.Int("activities", 12, "activities per destination")
	historyDays      = flag.Int("history-days", 90, "days of price history per vendor")
	destinationCount = flag.Int("destinations", 0, "number of destinations to seed (0 for all)")
	seed             = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	skipReload       = flag.Bool("skip-reload", false, "skip automatic reload after data insertion")
)

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	r := rand.New(rand.NewSource(*seed))

	dests := destinations
	if *destinationCount > 0 && *destinationCount < len(dests) {
		dests = dests[:*destinationCount]
	}

	for _, dest := range dests {
		for i := 0; i < *vendorsPerDest; i++ {
			v := randomVendor(r, dest)
			if err := pg.InsertVendor(&v); err != nil {
				logger.Fatal("insert vendor", zap.Error(err))
			}
			for _, pt := range randomHistory(r, v.BasePrice, *historyDays) {
				if err := pg.InsertPricePoint(v.ID, pt); err != nil {
					logger.Fatal("insert price point", zap.Error(err))
				}
			}
		}
		for i := 0; i < *activitiesPer; i++ {
			a := randomActivity(r, dest)
			if err := pg.InsertActivity(&a); err != nil {
				logger.Fatal("insert activity", zap.Error(err))
			}
		}
	}

	fmt.Println("fake data inserted")

	if !*skipReload {
		if err := callReloadEndpoint(&cfg); err != nil {
			logger.Error("reload endpoint failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: failed to reload server data: %v\n", err)
		} else {
			fmt.Println("server data reloaded")
		}
	}
}

// seed data

type destination struct {
	Name     string
	Lat, Lng float64
}

var destinations = []destination{
	{"Lisbon", 38.7223, -9.1393},
	{"Barcelona", 41.3874, 2.1686},
	{"Rome", 41.9028, 12.4964},
	{"Prague", 50.0755, 14.4378},
	{"Tokyo", 35.6762, 139.6503},
	{"Bangkok", 13.7563, 100.5018},
	{"Cancun", 21.1619, -86.8515},
	{"Reykjavik", 64.1466, -21.9426},
}

var vendorCategories = []string{"hotel", "tour", "restaurant", "transport"}

var vendorAdjectives = []string{"Grand", "Harborview", "Old Town", "Royal", "Sunset", "Central", "Boutique"}
var vendorNouns = map[string][]string{
	"hotel":      {"Hotel", "Inn", "Suites", "Lodge", "Hostel"},
	"tour":       {"Tours", "Excursions", "Walks", "Adventures"},
	"restaurant": {"Bistro", "Kitchen", "Taverna", "Grill"},
	"transport":  {"Transfers", "Shuttle", "Rides"},
}

var activityTypes = []string{"sightseeing", "museum", "food", "hiking", "beach", "nightlife", "shopping", "culture"}
var activityNames = map[string][]string{
	"sightseeing": {"Castle walk", "Old town stroll", "Viewpoint circuit", "River cruise"},
	"museum":      {"National museum", "Modern art gallery", "History exhibit"},
	"food":        {"Street food crawl", "Tasting menu dinner", "Market tour"},
	"hiking":      {"Coastal trail", "Hill summit hike", "Forest loop"},
	"beach":       {"Beach day", "Snorkeling trip", "Sunset swim"},
	"nightlife":   {"Bar hop", "Live music night", "Rooftop lounge"},
	"shopping":    {"Artisan quarter", "Flea market", "Design district"},
	"culture":     {"Folk show", "Cooking class", "Pottery workshop"},
}
var timeSlots = []string{"morning", "afternoon", "evening", "sunset"}

func randomVendor(r *rand.Rand, dest destination) models.Vendor {
	category := vendorCategories[r.Intn(len(vendorCategories))]
	nouns := vendorNouns[category]
	name := fmt.Sprintf("%s %s", vendorAdjectives[r.Intn(len(vendorAdjectives))], nouns[r.Intn(len(nouns))])
	base := float64(r.Intn(400)+50) + float64(r.Intn(100))/100
	capacity := r.Intn(80) + 20
	return models.Vendor{
		Name:              name,
		Destination:       dest.Name,
		Category:          category,
		BasePrice:         base,
		Capacity:          capacity,
		HistoricalAverage: float64(capacity) * (0.1 + r.Float64()*0.4),
		Active:            true,
	}
}

func randomActivity(r *rand.Rand, dest destination) models.StoredActivity {
	typ := activityTypes[r.Intn(len(activityTypes))]
	names := activityNames[typ]
	return models.StoredActivity{
		Destination: dest.Name,
		Activity: models.Activity{
			Name:     names[r.Intn(len(names))],
			Type:     typ,
			Duration: (r.Intn(6) + 1) * 30,
			Cost:     float64(r.Intn(120) + 5),
			Location: models.LatLng{
				// scatter activities within roughly 5km of the city center
				Lat: dest.Lat + (r.Float64()-0.5)*0.09,
				Lng: dest.Lng + (r.Float64()-0.5)*0.09,
			},
			BestTimeSlot: timeSlots[r.Intn(len(timeSlots))],
			Priority:     r.Intn(10) + 1,
		},
	}
}

func randomHistory(r *rand.Rand, basePrice float64, days int) []models.PricePoint {
	points := make([]models.PricePoint, 0, days)
	for d := days; d > 0; d-- {
		points = append(points, models.PricePoint{
			Date:     time.Now().AddDate(0, 0, -d),
			Bookings: r.Intn(40),
			Price:    basePrice * (0.8 + r.Float64()*0.5),
		})
	}
	return points
}

func callReloadEndpoint(cfg *config.Config) error {
	reloadURL := fmt.Sprintf("http://localhost:%s/reload", cfg.Port)
	req, err := http.NewRequest("POST", reloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
