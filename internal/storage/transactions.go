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
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

const transactionColumns = `id, user_id, account_id, category_id, type, amount_cents, date, merchant, note, created_at`

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn      model.Transaction
		txnType  string
		cents    int64
		date     string
		merchant sql.NullString
		note     sql.NullString
	)
	if err := row.Scan(&txn.ID, &txn.UserID, &txn.AccountID, &txn.CategoryID, &txnType,
		&cents, &date, &merchant, &note, &txn.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("transaction %d has malformed date %q: %w", txn.ID, date, err)
	}

	txn.Type = model.FlowType(txnType)
	txn.Amount = model.FromCents(cents)
	txn.Date = parsed
	txn.Merchant = merchant.String
	txn.Note = note.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertTransaction guards and records a new transaction.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	txn.Date = model.CivilDate(txn.Date)
	txn.CreatedAt = time.Now().UTC()

	err := s.withUserTx(ctx, txn.UserID, func(tx *sql.Tx) error {
		if err := s.guardTransaction(ctx, tx, &txn); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (
				user_id, account_id, category_id, type, amount_cents,
				date, merchant, note, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.UserID, txn.AccountID, txn.CategoryID, string(txn.Type), model.ToCents(txn.Amount),
			txn.Date.Format(model.DateLayout), nullString(txn.Merchant), nullString(txn.Note), txn.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		txn.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get transaction ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("recorded transaction",
		"id", txn.ID,
		"user_id", txn.UserID,
		"account_id", txn.AccountID,
		"type", txn.Type,
		"amount", model.FormatAmount(txn.Amount))
	return txn.ID, nil
}

// UpdateTransaction replaces a transaction's attributes. The new values go
// through the same guard as an insert. The owning user cannot change.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	txn.Date = model.CivilDate(txn.Date)

	err := s.withUserTx(ctx, txn.UserID, func(tx *sql.Tx) error {
		existing, err := s.getTransactionTx(ctx, tx, txn.ID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("transaction", txn.ID)
			}
			return err
		}
		if existing.UserID != txn.UserID {
			return common.NewReferenceError("transaction", txn.ID)
		}

		if err := s.guardTransaction(ctx, tx, &txn); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET account_id = ?, category_id = ?, type = ?, amount_cents = ?,
				date = ?, merchant = ?, note = ?
			WHERE id = ?`,
			txn.AccountID, txn.CategoryID, string(txn.Type), model.ToCents(txn.Amount),
			txn.Date.Format(model.DateLayout), nullString(txn.Merchant), nullString(txn.Note), txn.ID); err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", txn.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("updated transaction", "id", txn.ID, "user_id", txn.UserID)
	return nil
}

// GetTransaction returns a transaction by id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns a user's transactions matching filter, oldest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, userID, filter)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q queryable, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, model.CivilDate(*filter.StartDate).Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, model.CivilDate(*filter.EndDate).Format(model.DateLayout))
	}

	query += ` ORDER BY date, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// CountTransactions returns the number of transactions recorded for a user.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, userID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.countTransactionsTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) countTransactionsTx(ctx context.Context, q queryable, userID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return count, nil
}
