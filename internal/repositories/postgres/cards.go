package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"card-clicker/internal/models"
)

type Cards struct {
	db *sql.DB
}

func NewCards(db *sql.DB) *Cards {
	return &Cards{db: db}
}

func (c *Cards) GetOwnedCards(ctx context.Context, playerID string) ([]models.OwnedCard, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT instance_id, card_id, rarity, level, acquired_at, unseen
		FROM player_cards WHERE player_id = $1
		ORDER BY acquired_at, instance_id`, playerID)
	if err != nil {
		return nil, unavailable("get cards", err)
	}
	defer rows.Close()

	owned := make([]models.OwnedCard, 0)
	for rows.Next() {
		card := models.OwnedCard{PlayerID: playerID}
		var rarity string
		if err := rows.Scan(&card.InstanceID, &card.CardID, &rarity, &card.Level, &card.AcquiredAt, &card.Unseen); err != nil {
			return nil, unavailable("scan card", err)
		}
		card.Rarity = models.ParseRarity(rarity)
		owned = append(owned, card)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("get cards", err)
	}
	return owned, nil
}

func (c *Cards) AddCard(ctx context.Context, card models.OwnedCard) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO player_cards (player_id, instance_id, card_id, rarity, level, acquired_at, unseen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		card.PlayerID, card.InstanceID, card.CardID, card.Rarity.String(), card.Level, card.AcquiredAt, card.Unseen)
	if isUniqueViolation(err) {
		return fmt.Errorf("card %s: %w", card.InstanceID, models.ErrAlreadyExists)
	}
	if err != nil {
		return unavailable("add card", err)
	}
	return nil
}

func (c *Cards) DeleteCard(ctx context.Context, playerID, instanceID string) error {
	return execOne(ctx, c.db, "delete card", "card "+instanceID,
		`DELETE FROM player_cards WHERE player_id = $1 AND instance_id = $2`, playerID, instanceID)
}

func (c *Cards) SetLevel(ctx context.Context, playerID, instanceID string, level int) error {
	return execOne(ctx, c.db, "set level", "card "+instanceID,
		`UPDATE player_cards SET level = $3 WHERE player_id = $1 AND instance_id = $2`, playerID, instanceID, level)
}

func (c *Cards) SetUnseen(ctx context.Context, playerID, instanceID string, unseen bool) error {
	return execOne(ctx, c.db, "set unseen", "card "+instanceID,
		`UPDATE player_cards SET unseen = $3 WHERE player_id = $1 AND instance_id = $2`, playerID, instanceID, unseen)
}
