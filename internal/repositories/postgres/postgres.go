// Package postgres keeps players, collections, identities and the
// leaderboard in PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"card-clicker/internal/models"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id             TEXT PRIMARY KEY,
	display_name   TEXT NOT NULL DEFAULT '',
	click_count    INTEGER NOT NULL DEFAULT 0,
	dust           INTEGER NOT NULL DEFAULT 0 CHECK (dust >= 0),
	total_clicks   BIGINT NOT NULL DEFAULT 0,
	deck_power     INTEGER NOT NULL DEFAULT 0,
	deck_slots     TEXT[] NOT NULL DEFAULT '{}',
	last_save_time TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS player_cards (
	player_id   TEXT NOT NULL,
	instance_id TEXT NOT NULL,
	card_id     TEXT NOT NULL,
	rarity      TEXT NOT NULL,
	level       INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
	acquired_at TIMESTAMPTZ NOT NULL,
	unseen      BOOLEAN NOT NULL DEFAULT TRUE,
	PRIMARY KEY (player_id, instance_id)
);
CREATE TABLE IF NOT EXISTS identities (
	custom_id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS leaderboard (
	player_id    TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	score        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS leaderboard_score_idx ON leaderboard (score DESC);
`

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping", err)
	}
	return db, nil
}

// Migrate creates the tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return unavailable("migrate", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("postgres %s: %w: %w", op, models.ErrCollaboratorUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, op, what string, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return unavailable(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
