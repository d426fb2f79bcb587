package cards

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"card-clicker/internal/models"
)

// Cards keeps each player's collection in acquisition order.
type Cards struct {
	mu    sync.RWMutex
	cards map[string][]models.OwnedCard
}

func New() *Cards {
	return &Cards{cards: make(map[string][]models.OwnedCard)}
}

func (c *Cards) GetOwnedCards(ctx context.Context, playerID string) ([]models.OwnedCard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	owned := slices.Clone(c.cards[playerID])
	for i := range owned {
		owned[i].Template = models.CardTemplate{}
	}
	return owned, nil
}

func (c *Cards) AddCard(ctx context.Context, card models.OwnedCard) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.ContainsFunc(c.cards[card.PlayerID], byInstance(card.InstanceID)) {
		return fmt.Errorf("card %s: %w", card.InstanceID, models.ErrAlreadyExists)
	}
	card.Template = models.CardTemplate{}
	c.cards[card.PlayerID] = append(c.cards[card.PlayerID], card)
	return nil
}

func (c *Cards) DeleteCard(ctx context.Context, playerID, instanceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.cards[playerID], byInstance(instanceID))
	if idx < 0 {
		return fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}
	c.cards[playerID] = slices.Delete(c.cards[playerID], idx, idx+1)
	return nil
}

func (c *Cards) SetLevel(ctx context.Context, playerID, instanceID string, level int) error {
	return c.update(playerID, instanceID, func(card *models.OwnedCard) { card.Level = level })
}

func (c *Cards) SetUnseen(ctx context.Context, playerID, instanceID string, unseen bool) error {
	return c.update(playerID, instanceID, func(card *models.OwnedCard) { card.Unseen = unseen })
}

func (c *Cards) update(playerID, instanceID string, fn func(*models.OwnedCard)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.cards[playerID], byInstance(instanceID))
	if idx < 0 {
		return fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}
	fn(&c.cards[playerID][idx])
	return nil
}

func byInstance(instanceID string) func(models.OwnedCard) bool {
	return func(c models.OwnedCard) bool { return c.InstanceID == instanceID }
}
