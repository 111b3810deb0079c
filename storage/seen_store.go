package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"nyc-apartments/models"
	"nyc-apartments/utils"
)

// PostgresSeenStore records which (provider, id) keys earlier runs have
// seen, enabling --new-only searches.
type PostgresSeenStore struct {
	db *sql.DB
}

// NewPostgresSeenStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store.
func NewPostgresSeenStore(dsn string, logger *utils.Logger) (*PostgresSeenStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("seen store: open: %w", err)
	}

	ping := &utils.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
	if err := ping.Do("seen-store-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("seen store: %w", err)
	}

	store := &PostgresSeenStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("seen store: migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresSeenStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_listings (
			provider      VARCHAR(100) NOT NULL,
			id            TEXT         NOT NULL,
			first_seen_ts TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			PRIMARY KEY (provider, id)
		);
	`)
	return err
}

// MarkSeen records the listings if not already present. Existing rows keep
// their original first_seen_ts.
func (s *PostgresSeenStore) MarkSeen(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := s.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresSeenStore) insertBatch(batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*2)

	for idx, l := range batch {
		base := idx * 2
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d)", base+1, base+2))
		valueArgs = append(valueArgs, l.Provider, l.ID)
	}

	query := fmt.Sprintf(`
		INSERT INTO seen_listings (provider, id)
		VALUES %s
		ON CONFLICT (provider, id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := s.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("seen store: insert: %w", err)
	}
	return nil
}

// FilterNew returns only the listings no previous run has seen, recording
// them in the same pass.
func (s *PostgresSeenStore) FilterNew(listings []*models.Listing) ([]*models.Listing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	var fresh []*models.Listing
	for _, l := range listings {
		var one int
		err := s.db.QueryRow(
			"SELECT 1 FROM seen_listings WHERE provider = $1 AND id = $2",
			l.Provider, l.ID,
		).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			fresh = append(fresh, l)
		case err != nil:
			return nil, fmt.Errorf("seen store: query: %w", err)
		}
	}

	if err := s.MarkSeen(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Close releases the database connection.
func (s *PostgresSeenStore) Close() error {
	return s.db.Close()
}
