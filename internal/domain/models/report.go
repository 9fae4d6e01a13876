package models

import "time"

// FarmSnapshot is the daily record persisted for each farmer.
type FarmSnapshot struct {
	FarmerID      string        `bson:"farmer_id" json:"farmer_id"`
	Date          time.Time     `bson:"date" json:"date"`
	TotalIncome   string        `bson:"total_income" json:"total_income"`
	TotalExpense  string        `bson:"total_expense" json:"total_expense"`
	NetProfit     string        `bson:"net_profit" json:"net_profit"`
	Tier          Tier          `bson:"tier" json:"tier"`
	AdvisoryLevel AdvisoryLevel `bson:"advisory_level,omitempty" json:"advisory_level,omitempty"`
	ActiveBatches int           `bson:"active_batches" json:"active_batches"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}
