package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

type spendKey struct {
	month      time.Time
	categoryID int64
}

// BudgetStatus joins budgets against category spend. There is one row per
// budget, in the order given; a budget with no matching spend row has
// Spent zero. Spend on categories without a budget does not appear.
func BudgetStatus(budgets []model.Budget, spend []model.CategorySpend, categories []model.Category) []model.BudgetStatus {
	names := categoryNames(categories)

	spent := make(map[spendKey]decimal.Decimal, len(spend))
	for _, row := range spend {
		key := spendKey{month: model.MonthOf(row.Month), categoryID: row.CategoryID}
		spent[key] = spent[key].Add(row.Spend)
	}

	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		actual := spent[spendKey{month: model.MonthOf(b.Month), categoryID: b.CategoryID}].Add(decimal.Zero)
		statuses = append(statuses, model.BudgetStatus{
			CategoryID:   b.CategoryID,
			CategoryName: names[b.CategoryID],
			Budget:       b.Amount,
			Spent:        actual,
			Variance:     actual.Sub(b.Amount),
			OverBudget:   actual.GreaterThan(b.Amount),
		})
	}
	return statuses
}
