// Package ledger is the entry point for recording money movements and
// asking for derived reports. Writes go to the store, which guards them;
// reads take a snapshot and hand its rows to the report package.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/report"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Ledger records transactions and budgets and computes reports on demand.
type Ledger struct {
	store service.Storage
}

// New creates a ledger backed by store.
func New(store service.Storage) *Ledger {
	return &Ledger{store: store}
}

// AddTransaction records txn and returns its id. Any id already set on txn
// is ignored. Rejections come back as the store's typed errors unchanged.
func (l *Ledger) AddTransaction(ctx context.Context, txn model.Transaction) (int64, error) {
	txn.ID = 0
	return l.store.InsertTransaction(ctx, txn)
}

// UpdateTransaction replaces the attributes of an existing transaction.
func (l *Ledger) UpdateTransaction(ctx context.Context, txn model.Transaction) error {
	return l.store.UpdateTransaction(ctx, txn)
}

// SetBudget declares the budget of a category for a month, replacing any
// earlier amount for the same month. month must be the first of a month.
func (l *Ledger) SetBudget(ctx context.Context, userID, categoryID int64, month time.Time, amount decimal.Decimal) (int64, error) {
	return l.store.UpsertBudget(ctx, model.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		Amount:     amount,
	})
}

// read runs fn against a fresh snapshot and always releases it.
func (l *Ledger) read(ctx context.Context, fn func(r service.Reader) error) (err error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := snap.Release(); releaseErr != nil {
			slog.Warn("failed to release snapshot", "error", releaseErr)
			if err == nil {
				err = releaseErr
			}
		}
	}()
	return fn(snap)
}

func requireUser(ctx context.Context, r service.Reader, userID int64) error {
	if _, err := r.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return nil
}

// Balance returns income minus expense over the account's whole history.
func (l *Ledger) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.read(ctx, func(r service.Reader) error {
		account, err := r.GetAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}

		txns, err := r.ListTransactions(ctx, account.UserID, service.TransactionFilter{AccountID: accountID})
		if err != nil {
			return err
		}
		balance = report.Balance(txns)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Balances returns the balance of every account the user holds.
func (l *Ledger) Balances(ctx context.Context, userID int64) ([]model.AccountBalance, error) {
	var balances []model.AccountBalance
	err := l.read(ctx, func(r service.Reader) error {
		var err error
		balances, err = balancesOf(ctx, r, userID)
		return err
	})
	return balances, err
}

func balancesOf(ctx context.Context, r service.Reader, userID int64) ([]model.AccountBalance, error) {
	if err := requireUser(ctx, r, userID); err != nil {
		return nil, err
	}
	accounts, err := r.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := r.ListTransactions(ctx, userID, service.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return report.BalancesByAccount(accounts, txns), nil
}

// MonthlySummary returns income, expense and net per month with activity.
func (l *Ledger) MonthlySummary(ctx context.Context, userID int64, order report.Order) ([]model.MonthSummary, error) {
	var summaries []model.MonthSummary
	err := l.read(ctx, func(r service.Reader) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		txns, err := r.ListTransactions(ctx, userID, service.TransactionFilter{})
		if err != nil {
			return err
		}
		summaries = report.MonthlySummary(txns, order)
		return nil
	})
	return summaries, err
}

// monthData reads the expense transactions of one month and every category
// of the user, inactive ones included so that old spend keeps its name.
func monthData(ctx context.Context, r service.Reader, userID int64, month time.Time) ([]model.Transaction, []model.Category, error) {
	if err := requireUser(ctx, r, userID); err != nil {
		return nil, nil, err
	}

	start := model.MonthOf(month)
	end := start.AddDate(0, 1, -1)
	txns, err := r.ListTransactions(ctx, userID, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
		Type:      model.FlowExpense,
	})
	if err != nil {
		return nil, nil, err
	}

	categories, err := r.ListCategories(ctx, userID, service.CategoryFilter{IncludeInactive: true})
	if err != nil {
		return nil, nil, err
	}
	return txns, categories, nil
}

// CategorySpend returns per-category expense totals for month, largest first.
func (l *Ledger) CategorySpend(ctx context.Context, userID int64, month time.Time) ([]model.CategorySpend, error) {
	var spend []model.CategorySpend
	err := l.read(ctx, func(r service.Reader) error {
		txns, categories, err := monthData(ctx, r, userID, month)
		if err != nil {
			return err
		}
		spend = report.CategorySpend(txns, categories, month)
		return nil
	})
	return spend, err
}

// CategoryRanking dense-ranks category spend for month. A zero month ranks
// every month with expenses, each month on its own.
func (l *Ledger) CategoryRanking(ctx context.Context, userID int64, month time.Time) ([]model.RankedCategorySpend, error) {
	var ranked []model.RankedCategorySpend
	err := l.read(ctx, func(r service.Reader) error {
		var err error
		ranked, err = rankingOf(ctx, r, userID, month)
		return err
	})
	return ranked, err
}

func rankingOf(ctx context.Context, r service.Reader, userID int64, month time.Time) ([]model.RankedCategorySpend, error) {
	if !month.IsZero() {
		txns, categories, err := monthData(ctx, r, userID, month)
		if err != nil {
			return nil, err
		}
		return report.RankCategorySpend(report.CategorySpend(txns, categories, month)), nil
	}

	if err := requireUser(ctx, r, userID); err != nil {
		return nil, err
	}
	txns, err := r.ListTransactions(ctx, userID, service.TransactionFilter{Type: model.FlowExpense})
	if err != nil {
		return nil, err
	}
	categories, err := r.ListCategories(ctx, userID, service.CategoryFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	return report.RankAllMonths(txns, categories), nil
}

// BudgetStatus compares every budget declared for month with what was spent.
func (l *Ledger) BudgetStatus(ctx context.Context, userID int64, month time.Time) ([]model.BudgetStatus, error) {
	var statuses []model.BudgetStatus
	err := l.read(ctx, func(r service.Reader) error {
		var err error
		statuses, err = budgetStatusOf(ctx, r, userID, month)
		return err
	})
	return statuses, err
}

func budgetStatusOf(ctx context.Context, r service.Reader, userID int64, month time.Time) ([]model.BudgetStatus, error) {
	txns, categories, err := monthData(ctx, r, userID, month)
	if err != nil {
		return nil, err
	}
	budgets, err := r.ListBudgets(ctx, userID, model.MonthOf(month))
	if err != nil {
		return nil, err
	}
	return report.BudgetStatus(budgets, report.CategorySpend(txns, categories, month), categories), nil
}

// Dashboard gathers balances, the monthly summary, the spend ranking and the
// budget status of month. The four reports are computed concurrently, each
// from its own snapshot.
func (l *Ledger) Dashboard(ctx context.Context, userID int64, month time.Time) (*model.Dashboard, error) {
	month = model.MonthOf(month)
	dashboard := &model.Dashboard{UserID: userID, Month: month}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.read(gctx, func(r service.Reader) error {
			var err error
			dashboard.Balances, err = balancesOf(gctx, r, userID)
			return err
		})
	})
	g.Go(func() error {
		var err error
		dashboard.Months, err = l.MonthlySummary(gctx, userID, report.Descending)
		return err
	})
	g.Go(func() error {
		return l.read(gctx, func(r service.Reader) error {
			var err error
			dashboard.Spend, err = rankingOf(gctx, r, userID, month)
			return err
		})
	})
	g.Go(func() error {
		return l.read(gctx, func(r service.Reader) error {
			var err error
			dashboard.Budgets, err = budgetStatusOf(gctx, r, userID, month)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	dashboard.NetWorth = report.NetWorth(dashboard.Balances)
	slog.Debug("built dashboard", "user_id", userID, "month", month.Format(model.MonthLayout))
	return dashboard, nil
}
