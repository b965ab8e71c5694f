package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carrental-backend/internal/logger"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone_number VARCHAR(20),
		password_hash TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'CUSTOMER',
		created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS cars (
		id SERIAL PRIMARY KEY,
		make VARCHAR(64) NOT NULL,
		model VARCHAR(64) NOT NULL,
		name VARCHAR(128),
		year INTEGER NOT NULL,
		seats INTEGER NOT NULL,
		price_2_4_days NUMERIC(12,2) NOT NULL,
		price_5_15_days NUMERIC(12,2) NOT NULL,
		price_16_30_days NUMERIC(12,2) NOT NULL,
		price_over_30_days NUMERIC(12,2) NOT NULL,
		discount_percentage NUMERIC(5,2),
		status VARCHAR(16) NOT NULL DEFAULT 'available',
		created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS borrow_requests (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id),
		car_id INTEGER NOT NULL REFERENCES cars(id),
		customer_first_name VARCHAR(100) NOT NULL,
		customer_last_name VARCHAR(100) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(20),
		start_date DATE NOT NULL,
		start_time TIME NOT NULL,
		end_date DATE NOT NULL,
		end_time TIME NOT NULL,
		comment VARCHAR(100),
		options JSONB NOT NULL DEFAULT '{}'::jsonb,
		price_per_day NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_borrow_requests_email_requested ON borrow_requests (customer_email, requested_at);`,
	`CREATE INDEX IF NOT EXISTS idx_borrow_requests_status ON borrow_requests (status);`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id SERIAL PRIMARY KEY,
		car_id INTEGER NOT NULL REFERENCES cars(id),
		request_id INTEGER REFERENCES borrow_requests(id),
		start_date DATE NOT NULL,
		start_time TIME NOT NULL,
		end_date DATE NOT NULL,
		end_time TIME NOT NULL,
		customer_name VARCHAR(200),
		customer_phone VARCHAR(20),
		price_per_day NUMERIC(12,2) NOT NULL DEFAULT 0,
		subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
		taxes_fees NUMERIC(12,2) NOT NULL DEFAULT 0,
		additional_taxes NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		rental_status VARCHAR(16) NOT NULL,
		created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date >= start_date)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_rentals_request_id ON rentals (request_id) WHERE request_id IS NOT NULL AND rental_status <> 'CANCELLED';`,
	`CREATE INDEX IF NOT EXISTS idx_rentals_car_status_dates ON rentals (car_id, rental_status, start_date, end_date);`,
}

// Migrate creates the booking tables when they are missing. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrationStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	logger.Info("Database schema is up to date", "statements", len(migrationStatements))
	return nil
}
