package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"card-clicker/internal/models"

	"github.com/redis/go-redis/v9"
)

type Players struct {
	rdb redis.UniversalClient
}

func NewPlayers(rdb redis.UniversalClient) *Players {
	return &Players{rdb: rdb}
}

func (p *Players) GetPlayer(ctx context.Context, playerID string) (models.PlayerState, bool, error) {
	raw, err := p.rdb.Get(ctx, playerKey(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PlayerState{}, false, nil
	}
	if err != nil {
		return models.PlayerState{}, false, unavailable("get player", err)
	}

	var player models.PlayerState
	if err := json.Unmarshal(raw, &player); err != nil {
		return models.PlayerState{}, false, fmt.Errorf("decode player %s: %w", playerID, err)
	}
	return player, true, nil
}

func (p *Players) CreatePlayer(ctx context.Context, player models.PlayerState) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return err
	}
	created, err := p.rdb.SetNX(ctx, playerKey(player.ID), raw, 0).Result()
	if err != nil {
		return unavailable("create player", err)
	}
	if !created {
		return fmt.Errorf("player %s: %w", player.ID, models.ErrAlreadyExists)
	}
	return nil
}

func (p *Players) UpdatePlayer(ctx context.Context, player models.PlayerState) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return err
	}
	updated, err := p.rdb.SetXX(ctx, playerKey(player.ID), raw, 0).Result()
	if err != nil {
		return unavailable("update player", err)
	}
	if !updated {
		return fmt.Errorf("player %s: %w", player.ID, models.ErrNotFound)
	}
	return nil
}
