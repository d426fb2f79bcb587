package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
)

// Catalog is the read-only card master data held in memory.
//
// With an id space N, random ids are drawn uniformly from card_0001..card_N
// whether or not each id is loaded; a draw outside the loaded set is a
// catalog miss for the caller. Without an id space only loaded ids are drawn.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]models.CardTemplate
	ids       []string
	idSpace   int
	rand      game.Roller
}

func New(r game.Roller, idSpace int, templates ...models.CardTemplate) *Catalog {
	c := &Catalog{
		templates: make(map[string]models.CardTemplate, len(templates)),
		idSpace:   idSpace,
		rand:      r,
	}
	c.Add(templates...)
	return c
}

// CardID formats the n-th catalog id.
func CardID(n int) string {
	return fmt.Sprintf("card_%04d", n)
}

func (c *Catalog) Add(templates ...models.CardTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range templates {
		if _, exists := c.templates[t.CardID]; !exists {
			c.ids = append(c.ids, t.CardID)
		}
		c.templates[t.CardID] = t
	}
	slices.Sort(c.ids)
}

func (c *Catalog) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

func (c *Catalog) GetRandomCardID(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.idSpace > 0 {
		return CardID(1 + c.rand.Intn(c.idSpace)), nil
	}
	if len(c.ids) == 0 {
		return "", errors.New("catalog is empty")
	}
	return c.ids[c.rand.Intn(len(c.ids))], nil
}

func (c *Catalog) GetTemplate(ctx context.Context, cardID string) (models.CardTemplate, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[cardID]
	return t, ok, nil
}
