package game

import (
	"slices"

	"card-clicker/internal/models"
)

// Session is the in-memory progression state of one player: the persisted
// record plus the collection with templates joined in.
type Session struct {
	Player models.PlayerState
	Cards  []models.OwnedCard
}

// Clone returns a deep copy so a failed action can be discarded.
func (s *Session) Clone() *Session {
	p := s.Player
	p.DeckSlots = slices.Clone(s.Player.DeckSlots)
	return &Session{
		Player: p,
		Cards:  slices.Clone(s.Cards),
	}
}

func (s *Session) Deck() []models.OwnedCard {
	return ResolveDeck(s.Player, s.Cards)
}

func (s *Session) Abilities() Abilities {
	return AggregateAbilities(s.Deck())
}

func (s *Session) Card(instanceID string) (int, bool) {
	idx := slices.IndexFunc(s.Cards, func(c models.OwnedCard) bool {
		return c.InstanceID == instanceID
	})
	return idx, idx >= 0
}

// RecalculateDeckPower refreshes the cached deck power and reports whether it changed.
func (s *Session) RecalculateDeckPower() bool {
	power := DeckPower(s.Deck())
	changed := power != s.Player.DeckPower
	s.Player.DeckPower = power
	return changed
}

// DeckView assembles the resolved deck with its power and active abilities.
func (s *Session) DeckView() models.DeckView {
	deck := s.Deck()
	return models.DeckView{
		Auto:      s.Player.AutoDeck(),
		Cards:     deck,
		DeckPower: DeckPower(deck),
		Abilities: AggregateAbilities(deck).Active(),
	}
}
