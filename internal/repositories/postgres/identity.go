package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Identity struct {
	db *sql.DB
}

func NewIdentity(db *sql.DB) *Identity {
	return &Identity{db: db}
}

func (i *Identity) Login(ctx context.Context, customID string) (string, bool, error) {
	customID = strings.TrimSpace(customID)
	if customID == "" {
		return "", false, errors.New("custom id is required")
	}

	var playerID string
	err := i.db.QueryRowContext(ctx, `
		INSERT INTO identities (custom_id, player_id) VALUES ($1, $2)
		ON CONFLICT (custom_id) DO NOTHING
		RETURNING player_id`, customID, uuid.NewString()).Scan(&playerID)
	if err == nil {
		return playerID, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, unavailable("login", err)
	}

	err = i.db.QueryRowContext(ctx, `SELECT player_id FROM identities WHERE custom_id = $1`, customID).Scan(&playerID)
	if err != nil {
		return "", false, unavailable("login", err)
	}
	return playerID, false, nil
}
