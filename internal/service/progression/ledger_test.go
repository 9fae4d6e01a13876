package progression

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

func tx(kind models.TransactionKind, amount string) models.Transaction {
	return models.Transaction{Kind: kind, Category: models.CategoryOther, Amount: decimal.RequireFromString(amount)}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.True(t, got.TotalIncome.IsZero())
	assert.True(t, got.TotalExpense.IsZero())
	assert.True(t, got.NetProfit.IsZero())
	assert.Equal(t, 0, got.Entries)
}

func TestSummarize_Totals(t *testing.T) {
	got := Summarize([]models.Transaction{
		tx(models.KindIncome, "120000"),
		tx(models.KindExpense, "20000"),
		tx(models.KindIncome, "0.55"),
		tx(models.KindExpense, "0.05"),
	})

	assert.Equal(t, "120000.55", got.TotalIncome.String())
	assert.Equal(t, "20000.05", got.TotalExpense.String())
	assert.Equal(t, "100000.5", got.NetProfit.String())
	assert.Equal(t, 4, got.Entries)
}

func TestSummarize_NegativeNetProfit(t *testing.T) {
	got := Summarize([]models.Transaction{
		tx(models.KindIncome, "100"),
		tx(models.KindExpense, "350.25"),
	})
	assert.Equal(t, "-250.25", got.NetProfit.String())
}

func TestSummarize_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var ledger []models.Transaction
	for i := 0; i < 200; i++ {
		kind := models.KindIncome
		if rng.Intn(2) == 0 {
			kind = models.KindExpense
		}
		amount := decimal.New(rng.Int63n(1_000_000), -2)
		ledger = append(ledger, models.Transaction{Kind: kind, Category: models.CategoryHarvest, Amount: amount})
	}

	want := Summarize(ledger)
	for i := 0; i < 25; i++ {
		shuffled := append([]models.Transaction(nil), ledger...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Summarize(shuffled)
		assert.True(t, want.NetProfit.Equal(got.NetProfit), "run %d: %s != %s", i, want.NetProfit, got.NetProfit)
		assert.True(t, want.TotalIncome.Equal(got.TotalIncome))
		assert.True(t, want.TotalExpense.Equal(got.TotalExpense))
	}
}

func TestSummarize_MatchesRecomputationAfterRemoval(t *testing.T) {
	ledger := []models.Transaction{
		tx(models.KindIncome, "5000"),
		tx(models.KindExpense, "1200"),
		tx(models.KindIncome, "800"),
	}
	before := Summarize(ledger)
	assert.Equal(t, "4600", before.NetProfit.String())

	after := Summarize(append(ledger[:1:1], ledger[2:]...))
	assert.Equal(t, "5800", after.NetProfit.String())
}
