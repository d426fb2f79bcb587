package models

import "time"

type EventType string

const (
	EventCardAcquired     EventType = "card_acquired"
	EventCardUpgraded     EventType = "card_upgraded"
	EventCardDisenchanted EventType = "card_disenchanted"
	EventDeckChanged      EventType = "deck_changed"
	EventAutoClick        EventType = "auto_click"
)

// Event is published after an action on a player has been committed.
type Event struct {
	Type      EventType  `json:"type"`
	PlayerID  string     `json:"playerId"`
	Card      *OwnedCard `json:"card,omitempty"`
	Promoted  bool       `json:"promoted,omitempty"`
	Auto      bool       `json:"auto,omitempty"`
	Clicks    int        `json:"clicks,omitempty"`
	Cost      int        `json:"cost,omitempty"`
	Dust      int        `json:"dust,omitempty"`
	DeckPower int        `json:"deckPower"`
	At        time.Time  `json:"at"`
}
