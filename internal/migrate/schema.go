// Package migrate creates the listings schema on first run.
package migrate

import (
	"database/sql"

	"rental-atlas/internal/logger"
)

// EnsureSchema is idempotent. Numeric columns are nullable; NULL stands for a
// cell that failed to parse.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
            id TEXT PRIMARY KEY,
            city TEXT NOT NULL,
            real_sum DOUBLE PRECISION,
            room_type TEXT NOT NULL DEFAULT '',
            room_shared BOOLEAN NOT NULL DEFAULT FALSE,
            room_private BOOLEAN NOT NULL DEFAULT FALSE,
            host_is_superhost BOOLEAN NOT NULL DEFAULT FALSE,
            person_capacity DOUBLE PRECISION,
            multi BOOLEAN NOT NULL DEFAULT FALSE,
            biz BOOLEAN NOT NULL DEFAULT FALSE,
            cleanliness_rating DOUBLE PRECISION,
            guest_satisfaction_overall DOUBLE PRECISION,
            bedrooms DOUBLE PRECISION,
            dist DOUBLE PRECISION,
            metro_dist DOUBLE PRECISION,
            attr_index DOUBLE PRECISION,
            rest_index DOUBLE PRECISION,
            attr_index_norm DOUBLE PRECISION,
            rest_index_norm DOUBLE PRECISION,
            lat DOUBLE PRECISION,
            lng DOUBLE PRECISION,
            day_status TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
