package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

const categoryColumns = `id, user_id, name, type, is_active, created_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var categoryType string
	if err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &categoryType, &cat.IsActive, &cat.CreatedAt); err != nil {
		return nil, err
	}
	cat.Type = model.FlowType(categoryType)
	return &cat, nil
}

// CreateCategory creates a new category. The (user, name, type) triple is
// unique, and the type can never change afterwards.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, userID int64, name string, categoryType model.FlowType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateCategory(name, categoryType); err != nil {
		return nil, err
	}

	category := &model.Category{
		UserID:    userID,
		Name:      name,
		Type:      categoryType,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	conflictKey := fmt.Sprintf("%s (%s)", name, categoryType)

	err := s.withUserTx(ctx, userID, func(tx *sql.Tx) error {
		if _, err := s.getUserTx(ctx, tx, userID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("user", userID)
			}
			return err
		}

		// Check if category already exists (including inactive ones)
		var existingID int64
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM categories
			WHERE user_id = ? AND name = ? AND type = ?`,
			userID, name, string(categoryType)).Scan(&existingID)
		if err == nil {
			return common.NewConflictError("category", conflictKey)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check existing category: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO categories (user_id, name, type, is_active, created_at)
			VALUES (?, ?, ?, 1, ?)`,
			userID, name, string(categoryType), category.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return common.NewConflictError("category", conflictKey)
			}
			return fmt.Errorf("failed to create category: %w", err)
		}

		category.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get category ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", category.ID)
	return category, nil
}

// SetCategoryActive activates or deactivates a category. Deactivated
// categories keep their type and their transactions.
func (s *SQLiteStorage) SetCategoryActive(ctx context.Context, userID, categoryID int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	err := s.withUserTx(ctx, userID, func(tx *sql.Tx) error {
		category, err := s.getCategoryTx(ctx, tx, categoryID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("category", categoryID)
			}
			return err
		}
		if category.UserID != userID {
			return common.NewReferenceError("category", categoryID)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET is_active = ? WHERE id = ?`, active, categoryID); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("updated category state", "id", categoryID, "active", active)
	return nil
}

// GetCategory returns a category by id, active or not.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	cat, err := scanCategory(q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// ListCategories returns a user's categories ordered by type and name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID int64, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoriesTx(ctx, s.db, userID, filter)
}

func (s *SQLiteStorage) listCategoriesTx(ctx context.Context, q queryable, userID int64, filter service.CategoryFilter) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY type, name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user_id", userID, "count", len(categories))
	return categories, nil
}
