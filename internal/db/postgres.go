package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq" // registers the postgres driver
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS vendors (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    destination TEXT NOT NULL,
    category TEXT NOT NULL,
    base_price DOUBLE PRECISION NOT NULL,
    capacity INT NOT NULL,
    historical_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS activities (
    id SERIAL PRIMARY KEY,
    destination TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    duration INT NOT NULL,
    cost DOUBLE PRECISION NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lng DOUBLE PRECISION NOT NULL,
    best_time_slot TEXT,
    priority INT NOT NULL DEFAULT 5
);

CREATE TABLE IF NOT EXISTS price_history (
    id SERIAL PRIMARY KEY,
    vendor_id INT REFERENCES vendors(id),
    observed_on DATE NOT NULL,
    bookings INT NOT NULL,
    price DOUBLE PRECISION NOT NULL
);

-- Performance indexes for quote serving
CREATE INDEX IF NOT EXISTS idx_vendors_destination ON vendors (destination) WHERE active = true;
CREATE INDEX IF NOT EXISTS idx_activities_destination ON activities (destination);
CREATE INDEX IF NOT EXISTS idx_price_history_vendor_id ON price_history (vendor_id, observed_on);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.connection_string", dsn),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	// Configure connection pooling for production use
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	ctx := context.Background()
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// LoadVendors retrieves active vendors from the database.
func (p *Postgres) LoadVendors() ([]models.Vendor, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT id, name, destination, category, base_price, capacity, historical_average, active FROM vendors WHERE active`)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var vendors []models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Destination, &v.Category, &v.BasePrice, &v.Capacity, &v.HistoricalAverage, &v.Active); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return vendors, nil
}

// LoadActivities retrieves the activity catalog from the database.
func (p *Postgres) LoadActivities() ([]models.StoredActivity, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT id, destination, name, type, duration, cost, lat, lng, best_time_slot, priority FROM activities`)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var acts []models.StoredActivity
	for rows.Next() {
		var a models.StoredActivity
		var slot sql.NullString
		if err := rows.Scan(&a.ID, &a.Destination, &a.Name, &a.Type, &a.Duration, &a.Cost, &a.Location.Lat, &a.Location.Lng, &slot, &a.Priority); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if slot.Valid {
			a.BestTimeSlot = slot.String
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return acts, nil
}

// LoadPriceHistory retrieves observed price points keyed by vendor ID.
func (p *Postgres) LoadPriceHistory() (map[int][]models.PricePoint, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT vendor_id, observed_on, bookings, price FROM price_history ORDER BY vendor_id, observed_on`)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	history := make(map[int][]models.PricePoint)
	for rows.Next() {
		var vendorID int
		var pt models.PricePoint
		if err := rows.Scan(&vendorID, &pt.Date, &pt.Bookings, &pt.Price); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		history[vendorID] = append(history[vendorID], pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return history, nil
}

// InsertVendor inserts a new vendor record and returns the generated ID.
func (p *Postgres) InsertVendor(v *models.Vendor) error {
	err := p.DB.QueryRowContext(context.Background(), `INSERT INTO vendors (name, destination, category, base_price, capacity, historical_average, active) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		v.Name, v.Destination, v.Category, v.BasePrice, v.Capacity, v.HistoricalAverage, v.Active).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// UpdateVendor updates an existing vendor.
func (p *Postgres) UpdateVendor(v models.Vendor) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE vendors SET name=$1, destination=$2, category=$3, base_price=$4, capacity=$5, historical_average=$6, active=$7 WHERE id=$8`,
		v.Name, v.Destination, v.Category, v.BasePrice, v.Capacity, v.HistoricalAverage, v.Active, v.ID)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	return nil
}

// DeleteVendor removes a vendor by ID, first deleting related price history.
func (p *Postgres) DeleteVendor(id int) error {
	// First delete price points referencing this vendor
	_, err := p.DB.ExecContext(context.Background(), `DELETE FROM price_history WHERE vendor_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete price history for vendor: %w", err)
	}

	_, err = p.DB.ExecContext(context.Background(), `DELETE FROM vendors WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}

// InsertActivity inserts a new activity and returns the generated ID.
func (p *Postgres) InsertActivity(a *models.StoredActivity) error {
	err := p.DB.QueryRowContext(context.Background(), `INSERT INTO activities (destination, name, type, duration, cost, lat, lng, best_time_slot, priority) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		a.Destination, a.Name, a.Type, a.Duration, a.Cost, a.Location.Lat, a.Location.Lng, a.BestTimeSlot, a.Priority).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// UpdateActivity updates an existing activity.
func (p *Postgres) UpdateActivity(a models.StoredActivity) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE activities SET destination=$1, name=$2, type=$3, duration=$4, cost=$5, lat=$6, lng=$7, best_time_slot=$8, priority=$9 WHERE id=$10`,
		a.Destination, a.Name, a.Type, a.Duration, a.Cost, a.Location.Lat, a.Location.Lng, a.BestTimeSlot, a.Priority, a.ID)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// DeleteActivity removes an activity by ID.
func (p *Postgres) DeleteActivity(id int) error {
	_, err := p.DB.ExecContext(context.Background(), `DELETE FROM activities WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// InsertPricePoint records an observed booking/price pair for a vendor.
func (p *Postgres) InsertPricePoint(vendorID int, pt models.PricePoint) error {
	_, err := p.DB.ExecContext(context.Background(), `INSERT INTO price_history (vendor_id, observed_on, bookings, price) VALUES ($1,$2,$3,$4)`,
		vendorID, pt.Date, pt.Bookings, pt.Price)
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// CompetitorPrices returns the base prices of other active vendors in the
// same destination and category.
func (p *Postgres) CompetitorPrices(vendorID int, destination, category string) ([]float64, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT base_price FROM vendors WHERE active AND id != $1 AND destination = $2 AND category = $3`,
		vendorID, destination, category)
	if err != nil {
		return nil, fmt.Errorf("query competitor prices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var prices []float64
	for rows.Next() {
		var price float64
		if err := rows.Scan(&price); err != nil {
			return nil, fmt.Errorf("scan competitor price: %w", err)
		}
		prices = append(prices, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return prices, nil
}
