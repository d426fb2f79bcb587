package players

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"card-clicker/internal/models"
)

type Players struct {
	mu      sync.RWMutex
	players map[string]models.PlayerState
}

func New() *Players {
	return &Players{players: make(map[string]models.PlayerState)}
}

func (p *Players) GetPlayer(ctx context.Context, playerID string) (models.PlayerState, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	player, ok := p.players[playerID]
	if !ok {
		return models.PlayerState{}, false, nil
	}
	return clonePlayer(player), true, nil
}

func (p *Players) CreatePlayer(ctx context.Context, player models.PlayerState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.players[player.ID]; exists {
		return fmt.Errorf("player %s: %w", player.ID, models.ErrAlreadyExists)
	}
	p.players[player.ID] = clonePlayer(player)
	return nil
}

func (p *Players) UpdatePlayer(ctx context.Context, player models.PlayerState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.players[player.ID]; !exists {
		return fmt.Errorf("player %s: %w", player.ID, models.ErrNotFound)
	}
	p.players[player.ID] = clonePlayer(player)
	return nil
}

// Length returns how many players are stored
func (p *Players) Length() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.players)
}

func clonePlayer(player models.PlayerState) models.PlayerState {
	player.DeckSlots = slices.Clone(player.DeckSlots)
	return player
}
