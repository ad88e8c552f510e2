package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

func TestSQLiteStorage_InsertAndGetTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	txn := f.expense(f.groceryID, "500.25", "2025-08-14")
	txn.Merchant = "Corner Market"
	txn.Note = "weekly shop"

	id, err := store.InsertTransaction(ctx, txn)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := store.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, f.userID, got.UserID)
	assert.Equal(t, f.accountID, got.AccountID)
	assert.Equal(t, f.groceryID, got.CategoryID)
	assert.Equal(t, model.FlowExpense, got.Type)
	assert.Equal(t, "500.25", model.FormatAmount(got.Amount))
	assert.Equal(t, "2025-08-14", got.Date.Format(model.DateLayout))
	assert.Equal(t, "Corner Market", got.Merchant)
	assert.Equal(t, "weekly shop", got.Note)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteStorage_TransactionDateIsCivil(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	tokyo := time.FixedZone("JST", 9*60*60)

	// 23:30 on the 31st in Tokyo is still the 31st; no zone conversion.
	txn := f.expense(f.rentID, "10.00", "2025-08-01")
	txn.Date = time.Date(2025, time.July, 31, 23, 30, 0, 0, tokyo)

	id, err := store.InsertTransaction(ctx, txn)
	require.NoError(t, err)

	got, err := store.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-31", got.Date.Format(model.DateLayout))
	assert.Equal(t, "2025-07-01", got.Month().Format(model.DateLayout))
}

func TestSQLiteStorage_GetTransactionNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetTransaction(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_UpdateTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	other := createFixture(t, store, "bob")

	id, err := store.InsertTransaction(ctx, f.expense(f.groceryID, "30.00", "2025-08-02"))
	require.NoError(t, err)

	t.Run("updates amount date and note", func(t *testing.T) {
		changed := f.expense(f.rentID, "31.50", "2025-08-03")
		changed.ID = id
		changed.Note = "moved to rent"
		require.NoError(t, store.UpdateTransaction(ctx, changed))

		got, err := store.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "31.50", model.FormatAmount(got.Amount))
		assert.Equal(t, f.rentID, got.CategoryID)
		assert.Equal(t, "2025-08-03", got.Date.Format(model.DateLayout))
		assert.Equal(t, "moved to rent", got.Note)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		changed := f.expense(f.rentID, "1.00", "2025-08-03")
		changed.ID = 9999
		err := store.UpdateTransaction(ctx, changed)
		assert.ErrorIs(t, err, common.ErrReference)
	})

	t.Run("transaction of another user", func(t *testing.T) {
		changed := other.expense(other.rentID, "1.00", "2025-08-03")
		changed.ID = id
		err := store.UpdateTransaction(ctx, changed)
		assert.ErrorIs(t, err, common.ErrReference)

		got, err := store.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, f.userID, got.UserID)
	})
}

func TestSQLiteStorage_ListTransactionsFilters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	f := createFixture(t, store, "alice")
	other := createFixture(t, store, "bob")

	savings, err := store.CreateAccount(ctx, model.Account{UserID: f.userID, Name: "savings", Type: model.AccountBank})
	require.NoError(t, err)

	fromSavings := f.expense(f.rentID, "12000.00", "2025-08-01")
	fromSavings.AccountID = savings.ID

	for _, txn := range []model.Transaction{
		f.income("45000.00", "2025-07-31"),
		fromSavings,
		f.expense(f.groceryID, "500.25", "2025-08-15"),
		f.expense(f.groceryID, "80.00", "2025-09-02"),
		other.expense(other.rentID, "1.00", "2025-08-01"),
	} {
		_, err := store.InsertTransaction(ctx, txn)
		require.NoError(t, err)
	}

	start := date("2025-08-01")
	end := date("2025-08-31")

	tests := []struct {
		name   string
		filter service.TransactionFilter
		want   []string
	}{
		{
			name: "everything oldest first",
			want: []string{"45000.00", "12000.00", "500.25", "80.00"},
		},
		{
			name:   "date range inclusive",
			filter: service.TransactionFilter{StartDate: &start, EndDate: &end},
			want:   []string{"12000.00", "500.25"},
		},
		{
			name:   "by type",
			filter: service.TransactionFilter{Type: model.FlowIncome},
			want:   []string{"45000.00"},
		},
		{
			name:   "by account",
			filter: service.TransactionFilter{AccountID: savings.ID},
			want:   []string{"12000.00"},
		},
		{
			name:   "by category",
			filter: service.TransactionFilter{CategoryID: f.groceryID},
			want:   []string{"500.25", "80.00"},
		},
		{
			name:   "paged",
			filter: service.TransactionFilter{Limit: 2, Offset: 1},
			want:   []string{"12000.00", "500.25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := store.ListTransactions(ctx, f.userID, tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(txns))
			for _, txn := range txns {
				assert.Equal(t, f.userID, txn.UserID)
				got = append(got, model.FormatAmount(txn.Amount))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("inverted range", func(t *testing.T) {
		_, err := store.ListTransactions(ctx, f.userID, service.TransactionFilter{StartDate: &end, EndDate: &start})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	count, err := store.CountTransactions(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
