package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"price-scout/models"
	"price-scout/utils"
)

// PostgresStore backs the query cache and the interaction log with
// PostgreSQL, for deployments where multiple processes share state and the
// JSON-file last-writer-wins model is no longer acceptable. It satisfies
// the same interfaces as the JSON stores, so the aggregator and agent are
// unchanged.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection, waits for the database to come up,
// runs schema migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do(context.Background(), "postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS query_cache (
			query_key TEXT        PRIMARY KEY,
			results   JSONB       NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS interactions (
			id        SERIAL      PRIMARY KEY,
			user_id   VARCHAR(80) NOT NULL,
			role      VARCHAR(16) NOT NULL,
			text      TEXT        NOT NULL,
			ts        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_interactions_user_ts ON interactions(user_id, ts DESC);
	`)
	return err
}

func (ps *PostgresStore) Get(query string) ([]*models.Listing, bool) {
	var raw []byte
	err := ps.db.QueryRow(
		`SELECT results FROM query_cache WHERE query_key = $1`,
		NormalizeQuery(query),
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		ps.logger.Warn("[cache] Postgres read failed, treating as miss: %v", err)
		return nil, false
	}

	var results []*models.Listing
	if err := json.Unmarshal(raw, &results); err != nil {
		ps.logger.Warn("[cache] Corrupt cache entry, treating as miss: %v", err)
		return nil, false
	}
	return results, true
}

func (ps *PostgresStore) Put(query string, results []*models.Listing) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("postgres: marshal results: %w", err)
	}

	_, err = ps.db.Exec(`
		INSERT INTO query_cache (query_key, results, stored_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (query_key) DO UPDATE
		SET results = EXCLUDED.results, stored_at = EXCLUDED.stored_at
	`, NormalizeQuery(query), raw)
	return err
}

func (ps *PostgresStore) Append(userID, role, text string) error {
	_, err := ps.db.Exec(
		`INSERT INTO interactions (user_id, role, text) VALUES ($1, $2, $3)`,
		userID, role, text,
	)
	return err
}

func (ps *PostgresStore) Recent(userID string, limit int) ([]models.InteractionRecord, error) {
	rows, err := ps.db.Query(`
		SELECT user_id, role, text, ts
		FROM interactions
		WHERE user_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent interactions: %w", err)
	}
	defer rows.Close()

	var records []models.InteractionRecord
	for rows.Next() {
		var r models.InteractionRecord
		if err := rows.Scan(&r.UserID, &r.Role, &r.Text, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
