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

const userColumns = `id, name, email, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	var email sql.NullString
	if err := row.Scan(&user.ID, &user.Name, &email, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Email = email.String
	return &user, nil
}

// CreateUser creates a new user. Email is optional but unique when given.
func (s *SQLiteStorage) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("name", "user name cannot be empty")
	}
	email = strings.TrimSpace(email)

	user := &model.User{Name: name, Email: email, CreatedAt: time.Now().UTC()}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if email != "" {
			if _, err := s.getUserByEmailTx(ctx, tx, email); err == nil {
				return common.NewConflictError("user", email)
			} else if !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
			name, sql.NullString{String: email, Valid: email != ""}, user.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return common.NewConflictError("user", email)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		user.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get user ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created new user", "id", user.ID, "name", user.Name)
	return user, nil
}

// GetUser returns a user by id.
func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUserTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getUserTx(ctx context.Context, q queryable, id int64) (*model.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user registered with email.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}
	return s.getUserByEmailTx(ctx, s.db, email)
}

func (s *SQLiteStorage) getUserByEmailTx(ctx context.Context, q queryable, email string) (*model.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listUsersTx(ctx, s.db)
}

func (s *SQLiteStorage) listUsersTx(ctx context.Context, q queryable) ([]model.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
