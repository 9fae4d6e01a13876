package progression

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

// Summarize folds the full transaction set. Addition is commutative, so the
// result does not depend on the order of transactions.
func Summarize(transactions []models.Transaction) models.LedgerSummary {
	income := decimal.Zero
	expense := decimal.Zero

	for _, tx := range transactions {
		switch tx.Kind {
		case models.KindIncome:
			income = income.Add(tx.Amount)
		case models.KindExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	return models.LedgerSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetProfit:    income.Sub(expense),
		Entries:      len(transactions),
	}
}
