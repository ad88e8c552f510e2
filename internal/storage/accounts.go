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
)

const accountColumns = `id, user_id, name, type, currency, created_at`

func scanAccount(row rowScanner) (*model.Account, error) {
	var account model.Account
	var accountType string
	if err := row.Scan(&account.ID, &account.UserID, &account.Name, &accountType,
		&account.Currency, &account.CreatedAt); err != nil {
		return nil, err
	}
	account.Type = model.AccountType(accountType)
	return &account, nil
}

// CreateAccount creates an account for an existing user.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	account.Currency = strings.ToUpper(strings.TrimSpace(account.Currency))
	if account.Currency == "" {
		account.Currency = model.DefaultCurrency
	}
	if err := validateAccount(&account); err != nil {
		return nil, err
	}

	account.CreatedAt = time.Now().UTC()
	err := s.withUserTx(ctx, account.UserID, func(tx *sql.Tx) error {
		if _, err := s.getUserTx(ctx, tx, account.UserID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewReferenceError("user", account.UserID)
			}
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, name, type, currency, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			account.UserID, account.Name, string(account.Type), account.Currency, account.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		account.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get account ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created new account", "id", account.ID, "user_id", account.UserID, "type", account.Type)
	return &account, nil
}

// GetAccount returns an account by id.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getAccountTx(ctx context.Context, q queryable, id int64) (*model.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// ListAccounts returns the accounts of a user ordered by id.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listAccountsTx(ctx context.Context, q queryable, userID int64) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}
