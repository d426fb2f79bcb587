package game

import "card-clicker/internal/models"

// DefaultClicksPerCard is the click threshold that grants one card.
const DefaultClicksPerCard = 100

const (
	upgradeCostPerLevel = 50
	fallbackDust        = 10
)

var dustByRarity = map[models.Rarity]int{
	models.RarityCommon:    10,
	models.RarityRare:      30,
	models.RarityEpic:      100,
	models.RarityLegendary: 300,
}

// ClickMultiplier is 2^stacks of CLICK_MULTIPLY, so one of 1, 2, 4 or 8.
func ClickMultiplier(a Abilities) int {
	return 1 << min(a.Stacks(models.AbilityClickMultiply), MaxStacks)
}

// AutoClickAmount is the number of clicks one auto-click tick adds.
func AutoClickAmount(a Abilities) int {
	return a.Stacks(models.AbilityAutoClick) * ClickMultiplier(a)
}

// BaseDust returns the rarity-indexed disenchant yield.
func BaseDust(r models.Rarity) int {
	if d, ok := dustByRarity[r]; ok {
		return d
	}
	return fallbackDust
}

// DustMultiplier is 1 + 0.5 per DUST_BONUS stack.
func DustMultiplier(a Abilities) float64 {
	return 1 + 0.5*float64(a.Stacks(models.AbilityDustBonus))
}

// DustGain applies DustMultiplier to the base yield, truncated.
func DustGain(r models.Rarity, a Abilities) int {
	// halves: 1 + 0.5*n == (2+n)/2
	return BaseDust(r) * (2 + a.Stacks(models.AbilityDustBonus)) / 2
}

// upgradeCostTenths is max(1, 10 - 3*stacks), the cost multiplier in tenths.
func upgradeCostTenths(a Abilities) int {
	return max(1, 10-3*a.Stacks(models.AbilityUpgradeDiscount))
}

// UpgradeCostMultiplier is max(0.1, 1 - 0.3 per UPGRADE_DISCOUNT stack).
func UpgradeCostMultiplier(a Abilities) float64 {
	return float64(upgradeCostTenths(a)) / 10
}

func BaseUpgradeCost(level int) int {
	return level * upgradeCostPerLevel
}

// UpgradeCost is floor(level*50 * multiplier) for a card at its current level.
func UpgradeCost(level int, a Abilities) int {
	return BaseUpgradeCost(level) * upgradeCostTenths(a) / 10
}

// LuckyChance is the rarity promotion chance in percent, 20 per LUCKY stack.
func LuckyChance(a Abilities) int {
	return 20 * a.Stacks(models.AbilityLucky)
}

// RollLucky draws once against LuckyChance.
func RollLucky(a Abilities, r Roller) bool {
	chance := LuckyChance(a)
	if chance <= 0 {
		return false
	}
	return r.Intn(100) < chance
}
