package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

const budgetColumns = `id, user_id, category_id, month, amount_cents, created_at, updated_at`

func scanBudget(row rowScanner) (*model.Budget, error) {
	var (
		budget model.Budget
		month  string
		cents  int64
	)
	if err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &month, &cents,
		&budget.CreatedAt, &budget.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(model.DateLayout, month)
	if err != nil {
		return nil, fmt.Errorf("budget %d has malformed month %q: %w", budget.ID, month, err)
	}
	budget.Month = parsed
	budget.Amount = model.FromCents(cents)
	return &budget, nil
}

// CreateBudget inserts a budget and fails with a ConflictError when one
// already exists for the same user, category and month.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget model.Budget) (int64, error) {
	return s.writeBudget(ctx, budget, false)
}

// UpsertBudget inserts a budget or replaces the amount of the existing one
// for the same user, category and month, returning its id.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, budget model.Budget) (int64, error) {
	return s.writeBudget(ctx, budget, true)
}

func (s *SQLiteStorage) writeBudget(ctx context.Context, budget model.Budget, replace bool) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateBudget(&budget); err != nil {
		return 0, err
	}

	month := model.MonthOf(budget.Month).Format(model.DateLayout)
	now := time.Now().UTC()

	err := s.withUserTx(ctx, budget.UserID, func(tx *sql.Tx) error {
		if _, err := s.getUserTx(ctx, tx, budget.UserID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("user", budget.UserID)
			}
			return err
		}

		category, err := s.getCategoryTx(ctx, tx, budget.CategoryID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("category", budget.CategoryID)
			}
			return err
		}
		if category.UserID != budget.UserID {
			return common.NewReferenceError("category", budget.CategoryID)
		}

		var existingID int64
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM budgets WHERE user_id = ? AND category_id = ? AND month = ?`,
			budget.UserID, budget.CategoryID, month).Scan(&existingID)
		switch {
		case err == nil && !replace:
			return common.NewConflictError("budget", fmt.Sprintf("%s for category %d", month, budget.CategoryID))
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE budgets SET amount_cents = ?, updated_at = ? WHERE id = ?`,
				model.ToCents(budget.Amount), now, existingID); err != nil {
				return fmt.Errorf("failed to update budget: %w", err)
			}
			budget.ID = existingID
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check existing budget: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (user_id, category_id, month, amount_cents, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			budget.UserID, budget.CategoryID, month, model.ToCents(budget.Amount), now, now)
		if err != nil {
			if isUniqueViolation(err) {
				return common.NewConflictError("budget", fmt.Sprintf("%s for category %d", month, budget.CategoryID))
			}
			return fmt.Errorf("failed to create budget: %w", err)
		}

		budget.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get budget ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("saved budget",
		"id", budget.ID,
		"user_id", budget.UserID,
		"category_id", budget.CategoryID,
		"month", month,
		"amount", model.FormatAmount(budget.Amount))
	return budget.ID, nil
}

// GetBudget returns a budget by id.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBudgetTx(ctx context.Context, q queryable, id int64) (*model.Budget, error) {
	budget, err := scanBudget(q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns a user's budgets for month, or for every month when
// month is the zero time.
func (s *SQLiteStorage) ListBudgets(ctx context.Context, userID int64, month time.Time) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBudgetsTx(ctx, s.db, userID, month)
}

func (s *SQLiteStorage) listBudgetsTx(ctx context.Context, q queryable, userID int64, month time.Time) ([]model.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if !month.IsZero() {
		query += ` AND month = ?`
		args = append(args, model.MonthOf(month).Format(model.DateLayout))
	}
	query += ` ORDER BY month, category_id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	return budgets, rows.Err()
}
