package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

const (
	LedgerRange  = "Ledger!A:F"
	SummaryRange = "Summary!A:F"

	dateLayout = "2006-01-02"
)

// LedgerMirror copies ledger activity into a spreadsheet the extension
// officers already use. The farm store stays authoritative.
type LedgerMirror struct {
	repo Repository
}

// NewLedgerMirror wraps a row-level repository.
func NewLedgerMirror(repo Repository) *LedgerMirror {
	return &LedgerMirror{repo: repo}
}

// AppendTransaction writes one Ledger row:
// date | farmer | kind | category | amount | label.
func (m *LedgerMirror) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	row := []interface{}{
		tx.Date.Format(dateLayout),
		tx.FarmerID,
		string(tx.Kind),
		string(tx.Category),
		tx.Amount.StringFixed(2),
		tx.Label,
	}
	if err := m.repo.WriteRow(ctx, LedgerRange, row); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
	}
	return nil
}

// AppendSummary writes one Summary row:
// date | farmer | income | expense | net | tier.
func (m *LedgerMirror) AppendSummary(ctx context.Context, farmerID string, at time.Time, summary models.LedgerSummary, tier models.Tier) error {
	row := []interface{}{
		at.Format(dateLayout),
		farmerID,
		summary.TotalIncome.StringFixed(2),
		summary.TotalExpense.StringFixed(2),
		summary.NetProfit.StringFixed(2),
		string(tier),
	}
	if err := m.repo.WriteRow(ctx, SummaryRange, row); err != nil {
		return fmt.Errorf("mirror summary for %s: %w", farmerID, err)
	}
	return nil
}
