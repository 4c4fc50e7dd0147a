package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/pricematrix/backend/internal/domain"
)

// Supported SQL drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	listNamesQuery = `SELECT product_name FROM price_matrix ORDER BY product_name`

	lookupQuery = `SELECT product_name, price_amazon, price_flipkart, last_updated
	               FROM price_matrix WHERE product_name = ?`

	listQuery = `SELECT product_name, price_amazon, price_flipkart, last_updated
	             FROM price_matrix ORDER BY product_name`

	upsertQuery = `INSERT INTO price_matrix (product_name, price_amazon, price_flipkart, last_updated)
	               VALUES (?, ?, ?, ?)
	               ON CONFLICT (product_name) DO UPDATE SET
	                   price_amazon = excluded.price_amazon,
	                   price_flipkart = excluded.price_flipkart,
	                   last_updated = excluded.last_updated`
)

// SQLStore persists the price_matrix relation through sqlx.
// Queries are written with '?' and rebound for the driver in use.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore wraps an open database handle. now defaults to time.Now.
func NewSQLStore(db *sqlx.DB, now func() time.Time) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: db, now: now}
}

// Open connects to the database for driver and retries transient startup failures.
// The returned handle has pool settings applied and has been pinged.
func Open(driver, dsn string) (*sqlx.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	const (
		maxAttempts = 5
		baseDelay   = 500 * time.Millisecond
	)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := sqlx.Open(driver, dsn)
		if err != nil {
			lastErr = err
			sleepWithBackoff(attempt, baseDelay)
			continue
		}

		setPool(db.DB, driver)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			return db, nil
		}

		log.Warn().Err(lastErr).Str("component", "store").Int("attempt", attempt).Msg("database ping failed")
		_ = db.Close()
		sleepWithBackoff(attempt, baseDelay)
	}

	return nil, fmt.Errorf("%w: connect after %d attempts: %v", domain.ErrStoreUnavailable, maxAttempts, lastErr)
}

func setPool(db *sql.DB, driver string) {
	if driver == DriverSQLite {
		// one writer keeps sqlite free of SQLITE_BUSY
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// sleepWithBackoff sleeps base * 2^(attempt-1), capped to 5s.
func sleepWithBackoff(attempt int, base time.Duration) {
	d := base << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	time.Sleep(d)
}

// ListNames returns all known product names
func (s *SQLStore) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, listNamesQuery); err != nil {
		return nil, fmt.Errorf("%w: list names: %v", domain.ErrStoreUnavailable, err)
	}
	return names, nil
}

// Lookup returns the record for name or domain.ErrRecordNotFound
func (s *SQLStore) Lookup(ctx context.Context, name string) (*domain.ProductRecord, error) {
	var record domain.ProductRecord
	err := s.db.GetContext(ctx, &record, s.db.Rebind(lookupQuery), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %q: %v", domain.ErrStoreUnavailable, name, err)
	}
	return &record, nil
}

// Upsert inserts or overwrites the record keyed by name in one statement
func (s *SQLStore) Upsert(ctx context.Context, name string, priceAmazon, priceFlipkart float64) (*domain.ProductRecord, error) {
	record := domain.ProductRecord{
		ProductName:   name,
		PriceAmazon:   priceAmazon,
		PriceFlipkart: priceFlipkart,
		// postgres keeps microseconds; Truncate also drops the monotonic reading
		LastUpdated: s.now().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(upsertQuery),
		record.ProductName, record.PriceAmazon, record.PriceFlipkart, record.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert %q: %v", domain.ErrStoreUnavailable, name, err)
	}

	log.Debug().Str("component", "store").Str("product", name).
		Float64("amazon", priceAmazon).Float64("flipkart", priceFlipkart).Msg("record upserted")
	return &record, nil
}

// List returns every record ordered by product name
func (s *SQLStore) List(ctx context.Context) ([]domain.ProductRecord, error) {
	var records []domain.ProductRecord
	if err := s.db.SelectContext(ctx, &records, listQuery); err != nil {
		return nil, fmt.Errorf("%w: list records: %v", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}
