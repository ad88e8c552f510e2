package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Order selects the month ordering of a summary.
type Order int

const (
	// Descending puts the most recent month first.
	Descending Order = iota
	// Ascending puts the oldest month first.
	Ascending
)

// ParseOrder reads "asc" or "desc".
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "asc", "ascending":
		return Ascending, true
	case "", "desc", "descending":
		return Descending, true
	}
	return Descending, false
}

// MonthlySummary rolls txns up into one row per calendar month that has at
// least one transaction. Months without transactions are absent.
func MonthlySummary(txns []model.Transaction, order Order) []model.MonthSummary {
	byMonth := make(map[time.Time]*model.MonthSummary)
	for i := range txns {
		month := txns[i].Month()
		row, ok := byMonth[month]
		if !ok {
			row = &model.MonthSummary{
				Month:        month,
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
			}
			byMonth[month] = row
		}

		switch txns[i].Type {
		case model.FlowIncome:
			row.TotalIncome = row.TotalIncome.Add(txns[i].Amount)
		case model.FlowExpense:
			row.TotalExpense = row.TotalExpense.Add(txns[i].Amount)
		}
	}

	summaries := make([]model.MonthSummary, 0, len(byMonth))
	for _, row := range byMonth {
		row.NetAmount = row.TotalIncome.Sub(row.TotalExpense)
		summaries = append(summaries, *row)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if order == Ascending {
			return summaries[i].Month.Before(summaries[j].Month)
		}
		return summaries[i].Month.After(summaries[j].Month)
	})
	return summaries
}

// CategorySpend sums the expense transactions of month per category,
// largest spend first. Categories with nothing spent are omitted. Names
// are looked up in categories; txns outside month are ignored.
func CategorySpend(txns []model.Transaction, categories []model.Category, month time.Time) []model.CategorySpend {
	month = model.MonthOf(month)
	names := categoryNames(categories)

	sums := make(map[int64]decimal.Decimal)
	for i := range txns {
		if txns[i].Type != model.FlowExpense || !txns[i].Month().Equal(month) {
			continue
		}
		sums[txns[i].CategoryID] = sums[txns[i].CategoryID].Add(txns[i].Amount)
	}

	rows := make(SpendRows, 0, len(sums))
	for id, spend := range sums {
		if !spend.IsPositive() {
			continue
		}
		rows = append(rows, model.CategorySpend{
			Month:        month,
			CategoryID:   id,
			CategoryName: names[id],
			Spend:        spend,
		})
	}
	rows.Sort()
	return rows
}

func categoryNames(categories []model.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
