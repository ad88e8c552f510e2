package report

import (
	"sort"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// SpendRows is a slice of category spend that sorts largest spend first.
type SpendRows []model.CategorySpend

// Len implements sort.Interface.
func (r SpendRows) Len() int {
	return len(r)
}

// Less implements sort.Interface. Equal spends fall back to name and id so
// output is stable for display; ranks never depend on that fallback.
func (r SpendRows) Less(i, j int) bool {
	if c := r[i].Spend.Cmp(r[j].Spend); c != 0 {
		return c > 0
	}
	if r[i].CategoryName != r[j].CategoryName {
		return r[i].CategoryName < r[j].CategoryName
	}
	return r[i].CategoryID < r[j].CategoryID
}

// Swap implements sort.Interface.
func (r SpendRows) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

// Sort orders the rows by spend, largest first.
func (r SpendRows) Sort() {
	sort.Sort(r)
}

// RankCategorySpend assigns a dense rank over spend, largest first: equal
// spends share a rank and the next distinct spend takes the next integer.
// rows must all come from the same user and month. The input is not
// modified.
func RankCategorySpend(rows []model.CategorySpend) []model.RankedCategorySpend {
	sorted := make(SpendRows, len(rows))
	copy(sorted, rows)
	sorted.Sort()

	ranked := make([]model.RankedCategorySpend, 0, len(sorted))
	rank := 0
	for i, row := range sorted {
		if i == 0 || !row.Spend.Equal(sorted[i-1].Spend) {
			rank++
		}
		ranked = append(ranked, model.RankedCategorySpend{CategorySpend: row, Rank: rank})
	}
	return ranked
}

// RankAllMonths ranks category spend separately inside every month that
// has expenses, most recent month first. Each month restarts at rank 1.
func RankAllMonths(txns []model.Transaction, categories []model.Category) []model.RankedCategorySpend {
	seen := make(map[time.Time]bool)
	var months []time.Time
	for i := range txns {
		if txns[i].Type != model.FlowExpense {
			continue
		}
		month := txns[i].Month()
		if !seen[month] {
			seen[month] = true
			months = append(months, month)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	var ranked []model.RankedCategorySpend
	for _, month := range months {
		ranked = append(ranked, RankCategorySpend(CategorySpend(txns, categories, month))...)
	}
	return ranked
}
