package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"card-clicker/internal/models"

	"github.com/google/uuid"
)

// Catalog resolves card ids drawn for acquisitions.
type Catalog interface {
	GetRandomCardID(ctx context.Context) (string, error)
	GetTemplate(ctx context.Context, cardID string) (models.CardTemplate, bool, error)
}

// Engine applies player actions to a Session. It never touches storage:
// callers run it on a clone and commit the clone once persistence succeeded.
type Engine struct {
	Catalog       Catalog
	Rand          Roller
	Clock         Clock
	ClicksPerCard int
	NewID         func() string
}

func NewEngine(catalog Catalog, r Roller, clock Clock, clicksPerCard int) *Engine {
	if clicksPerCard <= 0 {
		clicksPerCard = DefaultClicksPerCard
	}
	return &Engine{
		Catalog:       catalog,
		Rand:          r,
		Clock:         clock,
		ClicksPerCard: clicksPerCard,
		NewID:         uuid.NewString,
	}
}

// Click adds n player clicks scaled by the deck's click multiplier and turns
// every full threshold into a card acquisition.
//
// A drawn id missing from the catalog consumes its threshold but grants
// nothing; the remaining acquisitions still run and the returned error wraps
// models.ErrCatalogLookup alongside a valid result. Any other error means the
// session must be discarded.
func (e *Engine) Click(ctx context.Context, s *Session, n int) (models.ClickResult, error) {
	res := models.ClickResult{Threshold: e.ClicksPerCard, Acquired: []models.Acquisition{}}
	if n > 0 {
		res.Added = ClickMultiplier(s.Abilities()) * n
		s.Player.ClickCount += res.Added
		s.Player.TotalClicks += res.Added
	}

	var lookupErr error
	for s.Player.ClickCount >= e.ClicksPerCard {
		s.Player.ClickCount -= e.ClicksPerCard

		acq, err := e.acquire(ctx, s)
		if errors.Is(err, models.ErrCatalogLookup) {
			res.FailedLookups++
			lookupErr = err
			continue
		}
		if err != nil {
			return res, err
		}
		res.Acquired = append(res.Acquired, acq)
	}

	res.ClickCount = s.Player.ClickCount
	res.DeckPower = s.Player.DeckPower
	return res, lookupErr
}

// AutoClick runs one timer tick: AUTO_CLICK stacks clicks at the current multiplier.
func (e *Engine) AutoClick(ctx context.Context, s *Session) (models.ClickResult, error) {
	return e.Click(ctx, s, s.Abilities().Stacks(models.AbilityAutoClick))
}

func (e *Engine) acquire(ctx context.Context, s *Session) (models.Acquisition, error) {
	cardID, err := e.Catalog.GetRandomCardID(ctx)
	if err != nil {
		return models.Acquisition{}, unavailable("random card id", err)
	}
	tpl, ok, err := e.Catalog.GetTemplate(ctx, cardID)
	if err != nil {
		return models.Acquisition{}, unavailable("card template", err)
	}
	if !ok {
		return models.Acquisition{}, fmt.Errorf("%w: %s", models.ErrCatalogLookup, cardID)
	}

	rarity := tpl.Rarity
	promoted := false
	if RollLucky(s.Abilities(), e.Rand) {
		rarity = rarity.Promote()
		promoted = rarity != tpl.Rarity
	}

	card := models.OwnedCard{
		InstanceID: e.NewID(),
		PlayerID:   s.Player.ID,
		CardID:     cardID,
		Rarity:     rarity,
		Level:      1,
		AcquiredAt: e.Clock.Now(),
		Unseen:     true,
		Template:   tpl,
	}
	s.Cards = append(s.Cards, card)
	s.RecalculateDeckPower()

	return models.Acquisition{Card: card, Promoted: promoted}, nil
}

// Upgrade spends the discounted cost of the card's current level and raises it by one.
func (e *Engine) Upgrade(s *Session, instanceID string) (models.UpgradeResult, error) {
	idx, ok := s.Card(instanceID)
	if !ok {
		return models.UpgradeResult{}, fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}

	cost := UpgradeCost(s.Cards[idx].Level, s.Abilities())
	if s.Player.Dust < cost {
		return models.UpgradeResult{}, fmt.Errorf("%w: need %d, have %d", models.ErrInsufficientFunds, cost, s.Player.Dust)
	}

	s.Player.Dust -= cost
	s.Cards[idx].Level++
	s.RecalculateDeckPower()

	return models.UpgradeResult{
		Card:      s.Cards[idx],
		Cost:      cost,
		Dust:      s.Player.Dust,
		DeckPower: s.Player.DeckPower,
	}, nil
}

// Disenchant destroys a card for dust. Cards pinned to an explicit deck slot are refused.
func (e *Engine) Disenchant(s *Session, instanceID string) (models.DisenchantResult, error) {
	idx, ok := s.Card(instanceID)
	if !ok {
		return models.DisenchantResult{}, fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}
	if s.Player.SlotOf(instanceID) >= 0 {
		return models.DisenchantResult{}, fmt.Errorf("card %s: %w", instanceID, models.ErrCardInDeck)
	}

	card := s.Cards[idx]
	gain := DustGain(card.Rarity, s.Abilities())

	s.Player.Dust += gain
	s.Cards = slices.Delete(s.Cards, idx, idx+1)
	s.RecalculateDeckPower()

	return models.DisenchantResult{
		Card:      card,
		DustGain:  gain,
		Dust:      s.Player.Dust,
		DeckPower: s.Player.DeckPower,
	}, nil
}

// ClearUnseen drops the unseen flag on every card and returns the ids it changed.
func (e *Engine) ClearUnseen(s *Session) []string {
	var cleared []string
	for i := range s.Cards {
		if s.Cards[i].Unseen {
			s.Cards[i].Unseen = false
			cleared = append(cleared, s.Cards[i].InstanceID)
		}
	}
	return cleared
}

// SwapDeckSlot pins instanceID to slot. An auto deck is first frozen into
// explicit slots holding its current top cards. A slot past the end of a
// short deck appends the card.
func (e *Engine) SwapDeckSlot(s *Session, slot int, instanceID string) error {
	if slot < 0 || slot >= models.MaxDeckSlots {
		return fmt.Errorf("%w: %d", models.ErrInvalidSlot, slot)
	}
	if _, ok := s.Card(instanceID); !ok {
		return fmt.Errorf("card %s: %w", instanceID, models.ErrNotFound)
	}

	slots := slices.Clone(s.Player.DeckSlots)
	if len(slots) == 0 {
		slots = AutoDeckIDs(s.Cards)
	}
	if slices.Contains(slots, instanceID) {
		return fmt.Errorf("card %s: %w", instanceID, models.ErrAlreadyInDeck)
	}

	if slot < len(slots) {
		slots[slot] = instanceID
	} else {
		slots = append(slots, instanceID)
	}
	s.Player.DeckSlots = slots
	s.RecalculateDeckPower()
	return nil
}

// ResetDeckToAuto drops the explicit slots.
func (e *Engine) ResetDeckToAuto(s *Session) {
	s.Player.DeckSlots = make([]string, 0, models.MaxDeckSlots)
	s.RecalculateDeckPower()
}

func unavailable(op string, err error) error {
	if errors.Is(err, models.ErrCollaboratorUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrCollaboratorUnavailable, err)
}
