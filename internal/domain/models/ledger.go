package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the ledger side of a transaction.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Category groups transactions for display.
type Category string

const (
	CategoryHarvest Category = "harvest"
	CategorySeeds   Category = "seeds"
	CategoryStorage Category = "storage"
	CategoryCare    Category = "care"
	CategoryOther   Category = "other"
)

// Transaction is an immutable ledger entry. IDs are UUIDv7 so that sorting by
// ID matches creation order.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	FarmerID  string          `json:"farmer_id"`
	Date      time.Time       `json:"date"`
	Kind      TransactionKind `json:"kind" validate:"oneof=income expense"`
	Category  Category        `json:"category" validate:"oneof=harvest seeds storage care other"`
	Amount    decimal.Decimal `json:"amount"`
	Label     string          `json:"label" validate:"max=200"`
	CreatedAt time.Time       `json:"created_at"`
}

// Validate checks the kind, category and that the amount is non-negative.
func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	return validateStruct(t)
}

// LedgerSummary is recomputed from the full transaction set on every read.
type LedgerSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Entries      int             `json:"entries"`
}

// Tier is one rung of the profit ladder.
type Tier string

const (
	TierStruggling Tier = "struggling"
	TierBronze     Tier = "bronze"
	TierSilver     Tier = "silver"
	TierGold       Tier = "gold"
	TierPlatinum   Tier = "platinum"
)

// TierStatus reports the active tier and progress toward the next one.
// NextThreshold is nil at the top tier.
type TierStatus struct {
	Tier          Tier             `json:"tier"`
	Rank          int              `json:"rank"`
	NextTier      Tier             `json:"next_tier,omitempty"`
	NextThreshold *decimal.Decimal `json:"next_threshold,omitempty"`
	ProgressPct   float64          `json:"progress_pct"`
}
