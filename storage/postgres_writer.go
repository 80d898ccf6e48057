package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/marioalfredo2411-sys/chivoferton/models"
	"github.com/marioalfredo2411-sys/chivoferton/utils"
)

// PostgresWriter persists listings to PostgreSQL. It is an optional backend;
// the JSON document remains the primary output of a run.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := utils.Retry("postgres-ping", 5, 2*time.Second, logger, db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id             SERIAL PRIMARY KEY,
			external_id    TEXT        NOT NULL DEFAULT '',
			listing_type   VARCHAR(10) NOT NULL,
			title          TEXT        NOT NULL DEFAULT '',
			price          TEXT        NOT NULL DEFAULT '',
			location       TEXT        NOT NULL DEFAULT '',
			published_date TEXT        NOT NULL DEFAULT '',
			url            TEXT        UNIQUE NOT NULL,
			description    TEXT        NOT NULL DEFAULT '',
			specs          JSONB       NOT NULL DEFAULT '{}',
			details        JSONB       NOT NULL DEFAULT '{}',
			images         TEXT[]      NOT NULL DEFAULT '{}',
			scraped_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_type        ON listings(listing_type);
		CREATE INDEX IF NOT EXISTS idx_listings_external_id ON listings(external_id);
		CREATE INDEX IF NOT EXISTS idx_listings_location    ON listings(location);
	`)
	return err
}

// Write batch-inserts all listings; rows whose URL already exists are left
// untouched.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*11)

	for idx, l := range batch {
		specsJSON, err := json.Marshal(l.Specs)
		if err != nil {
			return fmt.Errorf("postgres: marshal specs for %s: %w", l.URL, err)
		}
		detailsJSON, err := json.Marshal(l.Details)
		if err != nil {
			return fmt.Errorf("postgres: marshal details for %s: %w", l.URL, err)
		}

		base := idx * 11
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6,
				base+7, base+8, base+9, base+10, base+11))
		valueArgs = append(valueArgs,
			l.ExternalID, l.ListingType, l.Title, l.Price, l.Location,
			l.PublishedDate, l.URL, l.Description, specsJSON, detailsJSON,
			pq.Array(l.Images))
	}

	query := fmt.Sprintf(`
		INSERT INTO listings
			(external_id, listing_type, title, price, location,
			 published_date, url, description, specs, details, images)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
