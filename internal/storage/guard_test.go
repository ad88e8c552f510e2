package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func TestGuard_RejectsBadTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	other := createFixture(t, store, "mallory")

	tests := []struct {
		mutate  func(*model.Transaction)
		wantErr error
		name    string
		reason  string
	}{
		{
			name:    "income against expense category",
			mutate:  func(txn *model.Transaction) { txn.Type = model.FlowIncome },
			wantErr: common.ErrValidation,
			reason:  common.ReasonTypeMismatch,
		},
		{
			name: "expense against income category",
			mutate: func(txn *model.Transaction) {
				txn.CategoryID = f.salaryID
			},
			wantErr: common.ErrValidation,
			reason:  common.ReasonTypeMismatch,
		},
		{
			name:    "missing category",
			mutate:  func(txn *model.Transaction) { txn.CategoryID = 9999 },
			wantErr: common.ErrValidation,
			reason:  common.ReasonInvalidCategory,
		},
		{
			name:    "category of another user",
			mutate:  func(txn *model.Transaction) { txn.CategoryID = other.rentID },
			wantErr: common.ErrReference,
		},
		{
			name:    "missing account",
			mutate:  func(txn *model.Transaction) { txn.AccountID = 9999 },
			wantErr: common.ErrValidation,
			reason:  "invalid account",
		},
		{
			name:    "account of another user",
			mutate:  func(txn *model.Transaction) { txn.AccountID = other.accountID },
			wantErr: common.ErrReference,
		},
		{
			name:    "unknown user",
			mutate:  func(txn *model.Transaction) { txn.UserID = 9999 },
			wantErr: common.ErrReference,
		},
		{
			name:    "zero amount",
			mutate:  func(txn *model.Transaction) { txn.Amount = model.MustAmount("0") },
			wantErr: common.ErrValidation,
		},
		{
			name:    "negative amount",
			mutate:  func(txn *model.Transaction) { txn.Amount = model.MustAmount("-5.00") },
			wantErr: common.ErrValidation,
		},
		{
			name:    "three fractional digits",
			mutate:  func(txn *model.Transaction) { txn.Amount = decimal.RequireFromString("1.001") },
			wantErr: common.ErrValidation,
		},
		{
			name:    "missing date",
			mutate:  func(txn *model.Transaction) { txn.Date = time.Time{} },
			wantErr: common.ErrValidation,
		},
		{
			name:    "unknown type",
			mutate:  func(txn *model.Transaction) { txn.Type = "transfer" },
			wantErr: common.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := f.expense(f.rentID, "100.00", "2025-08-05")
			tt.mutate(&txn)

			_, err := store.InsertTransaction(ctx, txn)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, common.Reason(err))
			}

			count, err := store.CountTransactions(ctx, f.userID)
			require.NoError(t, err)
			assert.Zero(t, count, "rejected write must leave the store unchanged")
		})
	}
}

func TestGuard_MismatchedTypeNeverStored(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	categories := map[int64]model.FlowType{
		f.salaryID:  model.FlowIncome,
		f.rentID:    model.FlowExpense,
		f.groceryID: model.FlowExpense,
	}

	for categoryID, categoryType := range categories {
		for _, txnType := range []model.FlowType{model.FlowIncome, model.FlowExpense} {
			before, err := store.CountTransactions(ctx, f.userID)
			require.NoError(t, err)

			txn := f.expense(categoryID, "10.00", "2025-08-10")
			txn.Type = txnType
			_, err = store.InsertTransaction(ctx, txn)

			after, countErr := store.CountTransactions(ctx, f.userID)
			require.NoError(t, countErr)

			if txnType == categoryType {
				require.NoError(t, err)
				assert.Equal(t, before+1, after)
			} else {
				require.ErrorIs(t, err, common.ErrValidation)
				assert.Equal(t, before, after)
			}
		}
	}
}

func TestGuard_UpdateRechecksNewValues(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	id, err := store.InsertTransaction(ctx, f.expense(f.rentID, "12000.00", "2025-08-01"))
	require.NoError(t, err)

	// Flipping the type without moving to an income category is rejected.
	changed := f.expense(f.rentID, "12000.00", "2025-08-01")
	changed.ID = id
	changed.Type = model.FlowIncome
	err = store.UpdateTransaction(ctx, changed)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, common.ReasonTypeMismatch, common.Reason(err))

	// Moving to an income category while keeping the expense type is rejected too.
	changed = f.expense(f.salaryID, "12000.00", "2025-08-01")
	changed.ID = id
	err = store.UpdateTransaction(ctx, changed)
	require.ErrorIs(t, err, common.ErrValidation)

	stored, err := store.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.FlowExpense, stored.Type)
	assert.Equal(t, f.rentID, stored.CategoryID)

	// Changing both together is allowed.
	changed = f.income("12000.00", "2025-08-01")
	changed.ID = id
	require.NoError(t, store.UpdateTransaction(ctx, changed))

	stored, err = store.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.FlowIncome, stored.Type)
	assert.Equal(t, f.salaryID, stored.CategoryID)
}

func TestGuard_InactiveCategoryStillAccepted(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	require.NoError(t, store.SetCategoryActive(ctx, f.userID, f.groceryID, false))

	_, err := store.InsertTransaction(ctx, f.expense(f.groceryID, "20.00", "2025-08-04"))
	assert.NoError(t, err)
}
