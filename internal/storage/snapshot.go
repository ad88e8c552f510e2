package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// sqliteSnapshot serves reads from a single read transaction.
type sqliteSnapshot struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

var _ service.Snapshot = (*sqliteSnapshot)(nil)

func (v *sqliteSnapshot) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return v.storage.getUserTx(ctx, v.tx, id)
}

func (v *sqliteSnapshot) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	return v.storage.getAccountTx(ctx, v.tx, id)
}

func (v *sqliteSnapshot) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return v.storage.getCategoryTx(ctx, v.tx, id)
}

func (v *sqliteSnapshot) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return v.storage.getTransactionTx(ctx, v.tx, id)
}

func (v *sqliteSnapshot) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	return v.storage.getBudgetTx(ctx, v.tx, id)
}

func (v *sqliteSnapshot) ListUsers(ctx context.Context) ([]model.User, error) {
	return v.storage.listUsersTx(ctx, v.tx)
}

func (v *sqliteSnapshot) ListAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	return v.storage.listAccountsTx(ctx, v.tx, userID)
}

func (v *sqliteSnapshot) ListCategories(ctx context.Context, userID int64, filter service.CategoryFilter) ([]model.Category, error) {
	return v.storage.listCategoriesTx(ctx, v.tx, userID, filter)
}

func (v *sqliteSnapshot) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	return v.storage.listTransactionsTx(ctx, v.tx, userID, filter)
}

func (v *sqliteSnapshot) ListBudgets(ctx context.Context, userID int64, month time.Time) ([]model.Budget, error) {
	return v.storage.listBudgetsTx(ctx, v.tx, userID, month)
}

func (v *sqliteSnapshot) CountTransactions(ctx context.Context, userID int64) (int, error) {
	return v.storage.countTransactionsTx(ctx, v.tx, userID)
}

// Release ends the read transaction. Releasing twice is harmless.
func (v *sqliteSnapshot) Release() error {
	if err := v.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to release snapshot: %w", err)
	}
	return nil
}
