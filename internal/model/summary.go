package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthSummary is the income/expense rollup of one calendar month.
type MonthSummary struct {
	Month        time.Time
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetAmount    decimal.Decimal
}

// CategorySpend is the expense total of one category in one month.
type CategorySpend struct {
	Month        time.Time
	Spend        decimal.Decimal
	CategoryName string
	CategoryID   int64
}

// RankedCategorySpend is a CategorySpend with its dense rank inside the
// month. Equal spends share a rank.
type RankedCategorySpend struct {
	CategorySpend
	Rank int
}

// BudgetStatus compares a declared budget with the actual spend.
type BudgetStatus struct {
	Budget       decimal.Decimal
	Spent        decimal.Decimal
	Variance     decimal.Decimal // Spent - Budget; positive means overspend
	CategoryName string
	CategoryID   int64
	OverBudget   bool
}

// AccountBalance is the derived balance of one account.
type AccountBalance struct {
	Balance decimal.Decimal
	Account Account
}

// Dashboard bundles the read-side reports for one user and month.
type Dashboard struct {
	Month    time.Time
	Balances []AccountBalance
	Months   []MonthSummary
	Spend    []RankedCategorySpend
	Budgets  []BudgetStatus
	NetWorth decimal.Decimal
	UserID   int64
}
