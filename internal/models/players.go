package models

import (
	"time"
)

// MaxDeckSlots is the number of cards that make up a deck.
const MaxDeckSlots = 5

// PlayerState is the persisted progression record of one player.
// DeckSlots is empty while the deck is in auto mode.
type PlayerState struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	ClickCount   int       `json:"clickCount"`
	Dust         int       `json:"dust"`
	TotalClicks  int       `json:"totalClicks"`
	DeckPower    int       `json:"deckPower"`
	DeckSlots    []string  `json:"deckSlots"`
	LastSaveTime time.Time `json:"lastSaveTime"`
}

func NewPlayerState(id string, now time.Time) PlayerState {
	return PlayerState{
		ID:           id,
		DeckSlots:    make([]string, 0, MaxDeckSlots),
		LastSaveTime: now,
	}
}

// AutoDeck reports whether the deck is resolved by power instead of explicit slots.
func (p PlayerState) AutoDeck() bool {
	return len(p.DeckSlots) == 0
}

// SlotOf returns the explicit slot holding instanceID, or -1.
func (p PlayerState) SlotOf(instanceID string) int {
	for i, id := range p.DeckSlots {
		if id == instanceID {
			return i
		}
	}
	return -1
}

// LeaderboardEntry is one ranked row of the deck power leaderboard.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}
