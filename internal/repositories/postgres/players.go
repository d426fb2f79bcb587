package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"card-clicker/internal/models"

	"github.com/lib/pq"
)

type Players struct {
	db *sql.DB
}

func NewPlayers(db *sql.DB) *Players {
	return &Players{db: db}
}

func (p *Players) GetPlayer(ctx context.Context, playerID string) (models.PlayerState, bool, error) {
	var (
		player models.PlayerState
		slots  pq.StringArray
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, display_name, click_count, dust, total_clicks, deck_power, deck_slots, last_save_time
		FROM players WHERE id = $1`, playerID,
	).Scan(&player.ID, &player.DisplayName, &player.ClickCount, &player.Dust,
		&player.TotalClicks, &player.DeckPower, &slots, &player.LastSaveTime)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlayerState{}, false, nil
	}
	if err != nil {
		return models.PlayerState{}, false, unavailable("get player", err)
	}
	player.DeckSlots = []string(slots)
	if player.DeckSlots == nil {
		player.DeckSlots = []string{}
	}
	return player, true, nil
}

func (p *Players) CreatePlayer(ctx context.Context, player models.PlayerState) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO players (id, display_name, click_count, dust, total_clicks, deck_power, deck_slots, last_save_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		player.ID, player.DisplayName, player.ClickCount, player.Dust,
		player.TotalClicks, player.DeckPower, pq.Array(player.DeckSlots), player.LastSaveTime)
	if isUniqueViolation(err) {
		return fmt.Errorf("player %s: %w", player.ID, models.ErrAlreadyExists)
	}
	if err != nil {
		return unavailable("create player", err)
	}
	return nil
}

func (p *Players) UpdatePlayer(ctx context.Context, player models.PlayerState) error {
	return execOne(ctx, p.db, "update player", "player "+player.ID, `
		UPDATE players
		SET display_name = $2, click_count = $3, dust = $4, total_clicks = $5,
		    deck_power = $6, deck_slots = $7, last_save_time = $8
		WHERE id = $1`,
		player.ID, player.DisplayName, player.ClickCount, player.Dust,
		player.TotalClicks, player.DeckPower, pq.Array(player.DeckSlots), player.LastSaveTime)
}
