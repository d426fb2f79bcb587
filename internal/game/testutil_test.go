package game

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"card-clicker/internal/models"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	templates map[string]models.CardTemplate
	draws     []string
	fallback  string
	drawErr   error
	lookupErr error
}

func newFakeCatalog(tpls ...models.CardTemplate) *fakeCatalog {
	c := &fakeCatalog{templates: map[string]models.CardTemplate{}}
	for _, t := range tpls {
		c.templates[t.CardID] = t
	}
	return c
}

func (c *fakeCatalog) GetRandomCardID(ctx context.Context) (string, error) {
	if c.drawErr != nil {
		return "", c.drawErr
	}
	if len(c.draws) == 0 {
		if c.fallback != "" {
			return c.fallback, nil
		}
		return "", errors.New("no scripted draw left")
	}
	id := c.draws[0]
	c.draws = c.draws[1:]
	return id, nil
}

func (c *fakeCatalog) GetTemplate(ctx context.Context, cardID string) (models.CardTemplate, bool, error) {
	if c.lookupErr != nil {
		return models.CardTemplate{}, false, c.lookupErr
	}
	t, ok := c.templates[cardID]
	return t, ok, nil
}

// scriptedRoller returns its values in order, then repeats the last one.
type scriptedRoller struct {
	values []int
	calls  int
}

func (r *scriptedRoller) Intn(n int) int {
	r.calls++
	if len(r.values) == 0 {
		return n - 1
	}
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}

func newTestEngine(t *testing.T, catalog *fakeCatalog, rolls ...int) *Engine {
	t.Helper()
	e := NewEngine(catalog, &scriptedRoller{values: rolls}, NewFakeClock(t0), DefaultClicksPerCard)
	seq := 0
	e.NewID = func() string {
		seq++
		return fmt.Sprintf("inst-%03d", seq)
	}
	return e
}

func tpl(id string, rarity models.Rarity, ability models.Ability, hp int) models.CardTemplate {
	return models.CardTemplate{CardID: id, Name: id, Rarity: rarity, HP: hp, Ability: ability}
}

func owned(id string, t models.CardTemplate, level int, acquired time.Time) models.OwnedCard {
	return models.OwnedCard{
		InstanceID: id,
		PlayerID:   "p1",
		CardID:     t.CardID,
		Rarity:     t.Rarity,
		Level:      level,
		AcquiredAt: acquired,
		Template:   t,
	}
}

func newSession(cards ...models.OwnedCard) *Session {
	s := &Session{Player: models.NewPlayerState("p1", t0), Cards: cards}
	s.RecalculateDeckPower()
	return s
}
