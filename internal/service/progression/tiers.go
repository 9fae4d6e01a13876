package progression

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

const minVisibleProgressPct = 5.0

// rung is one entry of the ascending tier table. A rung admits a balance that
// is strictly above its floor when exclusive, otherwise at or above it. The
// bottom rung has no floor.
type rung struct {
	tier      models.Tier
	floor     *decimal.Decimal
	exclusive bool
}

func (r rung) admits(netProfit decimal.Decimal) bool {
	switch {
	case r.floor == nil:
		return true
	case r.exclusive:
		return netProfit.GreaterThan(*r.floor)
	default:
		return netProfit.GreaterThanOrEqual(*r.floor)
	}
}

func floorAt(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ladder covers (-inf, 0], (0, 10000), [10000, 50000), [50000, 100000), [100000, +inf).
var ladder = []rung{
	{tier: models.TierStruggling},
	{tier: models.TierBronze, floor: floorAt(0), exclusive: true},
	{tier: models.TierSilver, floor: floorAt(10_000)},
	{tier: models.TierGold, floor: floorAt(50_000)},
	{tier: models.TierPlatinum, floor: floorAt(100_000)},
}

// TierOf maps a balance to its tier and the progress toward the next one.
// Tiers follow the current balance, so expenses can demote a farmer.
func TierOf(netProfit decimal.Decimal) models.TierStatus {
	idx := 0
	for i := len(ladder) - 1; i >= 0; i-- {
		if ladder[i].admits(netProfit) {
			idx = i
			break
		}
	}

	status := models.TierStatus{Tier: ladder[idx].tier, Rank: idx}
	if idx == len(ladder)-1 {
		status.ProgressPct = 100
		return status
	}

	next := ladder[idx+1]
	threshold := *next.floor
	status.NextTier = next.tier
	status.NextThreshold = &threshold
	status.ProgressPct = progressToward(netProfit, threshold)
	return status
}

func progressToward(netProfit, threshold decimal.Decimal) float64 {
	if !netProfit.IsPositive() || !threshold.IsPositive() {
		return 0
	}

	pct := netProfit.Div(threshold).Mul(decimal.NewFromInt(100)).InexactFloat64()
	switch {
	case pct > 100:
		return 100
	case pct < minVisibleProgressPct:
		return minVisibleProgressPct
	default:
		return pct
	}
}
