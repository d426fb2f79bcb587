package game

import (
	"cmp"
	"slices"

	"card-clicker/internal/models"
)

// SortByPower returns a copy of cards ordered by power descending.
// Ties go to the earliest acquisition, then to the instance id.
func SortByPower(cards []models.OwnedCard) []models.OwnedCard {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b models.OwnedCard) int {
		if c := cmp.Compare(b.Power(), a.Power()); c != 0 {
			return c
		}
		if c := a.AcquiredAt.Compare(b.AcquiredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.InstanceID, b.InstanceID)
	})
	return sorted
}

// ResolveDeck returns the active deck.
//
// With explicit slots each id is looked up in slot order and ids that no longer
// resolve are skipped, so the deck may be shorter than MaxDeckSlots. Without
// slots the strongest MaxDeckSlots cards are used.
func ResolveDeck(player models.PlayerState, cards []models.OwnedCard) []models.OwnedCard {
	if player.AutoDeck() {
		sorted := SortByPower(cards)
		return sorted[:min(len(sorted), models.MaxDeckSlots)]
	}

	byID := make(map[string]models.OwnedCard, len(cards))
	for _, c := range cards {
		byID[c.InstanceID] = c
	}
	deck := make([]models.OwnedCard, 0, len(player.DeckSlots))
	for _, id := range player.DeckSlots {
		if c, ok := byID[id]; ok {
			deck = append(deck, c)
		}
	}
	return deck
}

// DeckPower sums the power of the given deck.
func DeckPower(deck []models.OwnedCard) int {
	total := 0
	for _, c := range deck {
		total += c.Power()
	}
	return total
}

// AutoDeckIDs lists the instance ids the auto mode would pick.
func AutoDeckIDs(cards []models.OwnedCard) []string {
	deck := ResolveDeck(models.PlayerState{}, cards)
	ids := make([]string, len(deck))
	for i, c := range deck {
		ids[i] = c.InstanceID
	}
	return ids
}
