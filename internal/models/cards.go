package models

import (
	"strings"
	"time"
)

// Rarity is ordered: a higher value is a rarer card.
type Rarity uint8

const (
	RarityUnknown Rarity = iota
	RarityCommon
	RarityRare
	RarityEpic
	RarityLegendary
)

var rarityNames = [...]string{
	RarityUnknown:   "unknown",
	RarityCommon:    "common",
	RarityRare:      "rare",
	RarityEpic:      "epic",
	RarityLegendary: "legendary",
}

func ParseRarity(s string) Rarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return RarityCommon
	case "rare":
		return RarityRare
	case "epic":
		return RarityEpic
	case "legendary":
		return RarityLegendary
	default:
		return RarityUnknown
	}
}

func (r Rarity) String() string {
	if int(r) < len(rarityNames) {
		return rarityNames[r]
	}
	return rarityNames[RarityUnknown]
}

// Promote moves one step along common -> rare -> epic -> legendary.
// Legendary and unknown rarities are returned unchanged.
func (r Rarity) Promote() Rarity {
	switch r {
	case RarityCommon:
		return RarityRare
	case RarityRare:
		return RarityEpic
	case RarityEpic:
		return RarityLegendary
	default:
		return r
	}
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText never fails: unrecognised names decode to RarityUnknown.
func (r *Rarity) UnmarshalText(b []byte) error {
	*r = ParseRarity(string(b))
	return nil
}

// Ability is the passive effect a card grants while it sits in the deck.
type Ability uint8

const (
	AbilityNone Ability = iota
	AbilityAutoClick
	AbilityClickMultiply
	AbilityDustBonus
	AbilityUpgradeDiscount
	AbilityLucky

	// AbilityCount is the number of ability variants, AbilityNone included.
	AbilityCount
)

var abilityNames = [AbilityCount]string{
	AbilityNone:            "NONE",
	AbilityAutoClick:       "AUTO_CLICK",
	AbilityClickMultiply:   "CLICK_MULTIPLY",
	AbilityDustBonus:       "DUST_BONUS",
	AbilityUpgradeDiscount: "UPGRADE_DISCOUNT",
	AbilityLucky:           "LUCKY",
}

func ParseAbility(s string) Ability {
	name := strings.ToUpper(strings.TrimSpace(s))
	for a, n := range abilityNames {
		if n == name {
			return Ability(a)
		}
	}
	return AbilityNone
}

func (a Ability) String() string {
	if a < AbilityCount {
		return abilityNames[a]
	}
	return abilityNames[AbilityNone]
}

func (a Ability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText never fails: unrecognised tags decode to AbilityNone.
func (a *Ability) UnmarshalText(b []byte) error {
	*a = ParseAbility(string(b))
	return nil
}

// CardTemplate is the immutable catalog entry for a card id.
type CardTemplate struct {
	CardID  string  `json:"cardId" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Rarity  Rarity  `json:"rarity" yaml:"rarity"`
	HP      int     `json:"hp" yaml:"hp"`
	ATK     int     `json:"atk" yaml:"atk"`
	DEF     int     `json:"def" yaml:"def"`
	Ability Ability `json:"ability" yaml:"ability"`
}

// BasePower is HP + 2*ATK + DEF.
func (t CardTemplate) BasePower() int {
	return t.HP + 2*t.ATK + t.DEF
}

// OwnedCard is one instance of a template in a player's collection.
// Rarity starts as the template rarity and may have been promoted at acquisition.
type OwnedCard struct {
	InstanceID string       `json:"instanceId"`
	PlayerID   string       `json:"playerId"`
	CardID     string       `json:"cardId"`
	Rarity     Rarity       `json:"rarity"`
	Level      int          `json:"level"`
	AcquiredAt time.Time    `json:"acquiredAt"`
	Unseen     bool         `json:"unseen"`
	Template   CardTemplate `json:"template"`
}

// Power is floor(base * (1 + 0.1*level)), computed in tenths to stay exact.
func (c OwnedCard) Power() int {
	return c.Template.BasePower() * (10 + c.Level) / 10
}
