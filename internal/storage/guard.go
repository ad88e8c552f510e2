package storage

import (
	"context"
	"errors"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// guardTransaction decides whether a candidate transaction may be written.
// It runs inside the write transaction, under the user's write lock, for
// both inserts and updates; nothing reaches the transactions table without
// passing it.
func (s *SQLiteStorage) guardTransaction(ctx context.Context, q queryable, txn *model.Transaction) error {
	if err := validateTransactionFields(txn); err != nil {
		return err
	}

	if _, err := s.getUserTx(ctx, q, txn.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewReferenceError("user", txn.UserID)
		}
		return err
	}

	category, err := s.getCategoryTx(ctx, q, txn.CategoryID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("", common.ReasonInvalidCategory)
		}
		return err
	}
	if category.UserID != txn.UserID {
		return common.NewReferenceError("category", txn.CategoryID)
	}
	if category.Type != txn.Type {
		return common.NewValidationError("", common.ReasonTypeMismatch)
	}

	account, err := s.getAccountTx(ctx, q, txn.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("account", "invalid account")
		}
		return err
	}
	if account.UserID != txn.UserID {
		return common.NewReferenceError("account", txn.AccountID)
	}

	return nil
}
