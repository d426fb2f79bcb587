package game

import (
	"fmt"

	"card-clicker/internal/models"
)

// MaxStacks caps how many deck cards of one ability count towards its effect.
const MaxStacks = 3

// Abilities holds one stack counter per ability variant.
type Abilities [models.AbilityCount]int

// AggregateAbilities counts the deck's ability tags, capped at MaxStacks each.
// Cards without an ability are ignored.
func AggregateAbilities(deck []models.OwnedCard) Abilities {
	var a Abilities
	for _, card := range deck {
		tag := card.Template.Ability
		if tag == models.AbilityNone || tag >= models.AbilityCount {
			continue
		}
		a[tag]++
	}
	for i := range a {
		a[i] = min(a[i], MaxStacks)
	}
	a[models.AbilityNone] = 0
	return a
}

func (a Abilities) Stacks(tag models.Ability) int {
	if tag >= models.AbilityCount {
		return 0
	}
	return a[tag]
}

// Active lists the stacked abilities in variant order with a short effect label.
func (a Abilities) Active() []models.ActiveAbility {
	active := make([]models.ActiveAbility, 0, len(a))
	for i := models.AbilityAutoClick; i < models.AbilityCount; i++ {
		if a[i] == 0 {
			continue
		}
		active = append(active, models.ActiveAbility{
			Ability: i,
			Stacks:  a[i],
			Effect:  a.effect(i),
		})
	}
	return active
}

func (a Abilities) effect(tag models.Ability) string {
	switch tag {
	case models.AbilityAutoClick:
		return fmt.Sprintf("auto click x%d", a[tag])
	case models.AbilityClickMultiply:
		return fmt.Sprintf("click x%d", ClickMultiplier(a))
	case models.AbilityDustBonus:
		return fmt.Sprintf("disenchant +%d%%", a[tag]*50)
	case models.AbilityUpgradeDiscount:
		return fmt.Sprintf("upgrade -%d%%", 100-upgradeCostTenths(a)*10)
	case models.AbilityLucky:
		return fmt.Sprintf("lucky %d%%", LuckyChance(a))
	case models.AbilityNone, models.AbilityCount:
	}
	return tag.String()
}
