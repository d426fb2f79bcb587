package models

// Login request
type LoginRequest struct {
	CustomID string `json:"customId" binding:"required"`
}

// Deck slot swap request
type SwapSlotRequest struct {
	InstanceID string `json:"instanceId" binding:"required"`
}

type LoginResponse struct {
	PlayerID string `json:"playerId"`
	Created  bool   `json:"created"`
}

// Acquisition is one card granted by crossing the click threshold.
type Acquisition struct {
	Card     OwnedCard `json:"card"`
	Promoted bool      `json:"promoted"`
}

type ClickResult struct {
	Added         int           `json:"added"`
	ClickCount    int           `json:"clickCount"`
	Threshold     int           `json:"threshold"`
	Acquired      []Acquisition `json:"acquired"`
	FailedLookups int           `json:"failedLookups"`
	DeckPower     int           `json:"deckPower"`
}

func (r ClickResult) CardObtained() bool {
	return len(r.Acquired) > 0
}

type UpgradeResult struct {
	Card      OwnedCard `json:"card"`
	Cost      int       `json:"cost"`
	Dust      int       `json:"dust"`
	DeckPower int       `json:"deckPower"`
}

type DisenchantResult struct {
	Card      OwnedCard `json:"card"`
	DustGain  int       `json:"dustGain"`
	Dust      int       `json:"dust"`
	DeckPower int       `json:"deckPower"`
}

// ActiveAbility describes one stacked deck ability and its effect.
type ActiveAbility struct {
	Ability Ability `json:"ability"`
	Stacks  int     `json:"stacks"`
	Effect  string  `json:"effect"`
}

type DeckView struct {
	Auto      bool            `json:"auto"`
	Cards     []OwnedCard     `json:"cards"`
	DeckPower int             `json:"deckPower"`
	Abilities []ActiveAbility `json:"abilities"`
}

type PlayerView struct {
	Player    PlayerState `json:"player"`
	Threshold int         `json:"threshold"`
	AutoClick bool        `json:"autoClick"`
	Cards     []OwnedCard `json:"cards"`
	Deck      DeckView    `json:"deck"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Sessions int    `json:"sessions"`
}

// Error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Batched click request
type ClickRequest struct {
	Clicks int `json:"clicks" binding:"omitempty,min=1,max=1000"`
}

type AutoClickRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
