package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// writeTable prints header and rows as aligned columns. Cells are written
// unstyled; escape codes would throw off the column widths.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeEmpty(w io.Writer, what string) error {
	_, err := fmt.Fprintln(w, SubtleStyle.Render("No "+what+"."))
	return err
}

func amount(d decimal.Decimal) string {
	return model.FormatAmount(d)
}

// RenderTransactions prints a transaction listing. names maps category ids
// to display names; unknown ids print as the bare id.
func RenderTransactions(w io.Writer, txns []model.Transaction, names map[int64]string) error {
	if len(txns) == 0 {
		return writeEmpty(w, "transactions")
	}

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		category, ok := names[txn.CategoryID]
		if !ok {
			category = "#" + strconv.FormatInt(txn.CategoryID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(txn.ID, 10),
			txn.Date.Format(model.DateLayout),
			string(txn.Type),
			amount(txn.Amount),
			category,
			txn.Merchant,
			txn.Note,
		})
	}
	return writeTable(w, []string{"ID", "DATE", "TYPE", "AMOUNT", "CATEGORY", "MERCHANT", "NOTE"}, rows)
}

// RenderBalances prints one line per account followed by the net worth.
func RenderBalances(w io.Writer, balances []model.AccountBalance, netWorth decimal.Decimal) error {
	if len(balances) == 0 {
		return writeEmpty(w, "accounts")
	}

	rows := make([][]string, 0, len(balances)+1)
	for _, b := range balances {
		rows = append(rows, []string{b.Account.Name, string(b.Account.Type), amount(b.Balance)})
	}
	rows = append(rows, []string{"NET WORTH", "", amount(netWorth)})
	return writeTable(w, []string{"ACCOUNT", "TYPE", "BALANCE"}, rows)
}

// RenderMonthly prints monthly income, expense and net totals.
func RenderMonthly(w io.Writer, months []model.MonthSummary) error {
	if len(months) == 0 {
		return writeEmpty(w, "transactions")
	}

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			m.Month.Format(model.MonthLayout),
			amount(m.TotalIncome),
			amount(m.TotalExpense),
			amount(m.NetAmount),
		})
	}
	return writeTable(w, []string{"MONTH", "INCOME", "EXPENSE", "NET"}, rows)
}

// RenderCategorySpend prints expense totals per category.
func RenderCategorySpend(w io.Writer, spend []model.CategorySpend) error {
	if len(spend) == 0 {
		return writeEmpty(w, "spending")
	}

	rows := make([][]string, 0, len(spend))
	for _, s := range spend {
		rows = append(rows, []string{s.Month.Format(model.MonthLayout), s.CategoryName, amount(s.Spend)})
	}
	return writeTable(w, []string{"MONTH", "CATEGORY", "SPEND"}, rows)
}

// RenderRanking prints ranked category spend.
func RenderRanking(w io.Writer, ranked []model.RankedCategorySpend) error {
	if len(ranked) == 0 {
		return writeEmpty(w, "spending")
	}

	rows := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, []string{
			r.Month.Format(model.MonthLayout),
			strconv.Itoa(r.Rank),
			r.CategoryName,
			amount(r.Spend),
		})
	}
	return writeTable(w, []string{"MONTH", "RANK", "CATEGORY", "SPEND"}, rows)
}

// RenderBudgetStatus prints budget against actual spend for each budget.
func RenderBudgetStatus(w io.Writer, statuses []model.BudgetStatus) error {
	if len(statuses) == 0 {
		return writeEmpty(w, "budgets")
	}

	rows := make([][]string, 0, len(statuses))
	over := 0
	for _, s := range statuses {
		flag := ""
		if s.OverBudget {
			flag = "OVER"
			over++
		}
		rows = append(rows, []string{s.CategoryName, amount(s.Budget), amount(s.Spent), amount(s.Variance), flag})
	}
	if err := writeTable(w, []string{"CATEGORY", "BUDGET", "SPENT", "VARIANCE", ""}, rows); err != nil {
		return err
	}

	if over > 0 {
		_, err := fmt.Fprintln(w, FormatWarning(fmt.Sprintf("%d of %d budgets exceeded", over, len(statuses))))
		return err
	}
	_, err := fmt.Fprintln(w, FormatSuccess("All budgets on track"))
	return err
}

// RenderDashboard prints every report of a dashboard under its own heading.
func RenderDashboard(w io.Writer, d *model.Dashboard) error {
	sections := []struct {
		render func() error
		title  string
	}{
		{title: "Balances", render: func() error { return RenderBalances(w, d.Balances, d.NetWorth) }},
		{title: "Monthly Summary", render: func() error { return RenderMonthly(w, d.Months) }},
		{title: "Top Spending " + d.Month.Format(model.MonthLayout), render: func() error { return RenderRanking(w, d.Spend) }},
		{title: "Budgets " + d.Month.Format(model.MonthLayout), render: func() error { return RenderBudgetStatus(w, d.Budgets) }},
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, TitleStyle.UnsetMargins().Render(ChartIcon+" "+s.title)); err != nil {
			return err
		}
		if err := s.render(); err != nil {
			return err
		}
	}
	return nil
}
