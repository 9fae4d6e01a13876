package progression

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

func TestTierOf(t *testing.T) {
	tests := []struct {
		net      string
		tier     models.Tier
		next     models.Tier
		progress float64
	}{
		{"-2500", models.TierStruggling, models.TierBronze, 0},
		{"0", models.TierStruggling, models.TierBronze, 0},
		{"0.01", models.TierBronze, models.TierSilver, 5},
		{"100", models.TierBronze, models.TierSilver, 5},
		{"5000", models.TierBronze, models.TierSilver, 50},
		{"9999.99", models.TierBronze, models.TierSilver, 99.9999},
		{"10000", models.TierSilver, models.TierGold, 20},
		{"49999", models.TierSilver, models.TierGold, 99.998},
		{"50000", models.TierGold, models.TierPlatinum, 50},
		{"99999.99", models.TierGold, models.TierPlatinum, 99.99999},
	}

	for _, tc := range tests {
		t.Run(tc.net, func(t *testing.T) {
			got := TierOf(decimal.RequireFromString(tc.net))
			assert.Equal(t, tc.tier, got.Tier)
			assert.Equal(t, tc.next, got.NextTier)
			require.NotNil(t, got.NextThreshold)
			assert.InDelta(t, tc.progress, got.ProgressPct, 1e-6)
		})
	}
}

func TestTierOf_InclusiveLowerBounds(t *testing.T) {
	assert.Equal(t, models.TierStruggling, TierOf(decimal.Zero).Tier)
	assert.Equal(t, models.TierSilver, TierOf(decimal.NewFromInt(10_000)).Tier)
	assert.Equal(t, models.TierBronze, TierOf(decimal.RequireFromString("9999.99")).Tier)
	assert.Equal(t, models.TierGold, TierOf(decimal.NewFromInt(50_000)).Tier)
	assert.Equal(t, models.TierPlatinum, TierOf(decimal.NewFromInt(100_000)).Tier)
}

func TestTierOf_TopTier(t *testing.T) {
	for _, net := range []int64{100_000, 250_000, 10_000_000} {
		got := TierOf(decimal.NewFromInt(net))
		assert.Equal(t, models.TierPlatinum, got.Tier)
		assert.Equal(t, 4, got.Rank)
		assert.Nil(t, got.NextThreshold)
		assert.Empty(t, got.NextTier)
		assert.Equal(t, 100.0, got.ProgressPct)
	}
}

func TestTierOf_NextThresholds(t *testing.T) {
	assert.Equal(t, "0", TierOf(decimal.NewFromInt(-1)).NextThreshold.String())
	assert.Equal(t, "10000", TierOf(decimal.NewFromInt(1)).NextThreshold.String())
	assert.Equal(t, "50000", TierOf(decimal.NewFromInt(10_000)).NextThreshold.String())
	assert.Equal(t, "100000", TierOf(decimal.NewFromInt(50_000)).NextThreshold.String())
}

func TestTierOf_ExactlyOneTierAcrossRange(t *testing.T) {
	prevRank := -1
	for net := int64(-20_000); net <= 150_000; net += 250 {
		got := TierOf(decimal.NewFromInt(net))
		assert.GreaterOrEqual(t, got.Rank, prevRank, "tiers ascend with balance at %d", net)
		assert.GreaterOrEqual(t, got.ProgressPct, 0.0)
		assert.LessOrEqual(t, got.ProgressPct, 100.0)
		prevRank = got.Rank
	}
}

// Tiers are recomputed from the current balance and are not sticky: an
// expense that drops the balance below a floor demotes the farmer. A sticky
// policy would need the highest rank reached to be persisted per farmer.
func TestTierOf_ExpensesDemote(t *testing.T) {
	ledger := []models.Transaction{tx(models.KindIncome, "120000")}
	assert.Equal(t, models.TierPlatinum, TierOf(Summarize(ledger).NetProfit).Tier)

	ledger = append(ledger, tx(models.KindExpense, "80000"))
	assert.Equal(t, models.TierSilver, TierOf(Summarize(ledger).NetProfit).Tier)
}

func TestLedgerToTier_EndToEnd(t *testing.T) {
	summary := Summarize([]models.Transaction{
		tx(models.KindIncome, "120000"),
		tx(models.KindExpense, "20000"),
	})
	assert.Equal(t, "100000", summary.NetProfit.String())

	status := TierOf(summary.NetProfit)
	assert.Equal(t, models.TierPlatinum, status.Tier)
	assert.Equal(t, 100.0, status.ProgressPct)
}
