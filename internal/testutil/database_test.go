package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func TestFixtureReusesCategories(t *testing.T) {
	db := SetupTestDB(t)
	alice := db.CreateUser("alice")

	first := alice.Expense("rent", "100.00", "2025-08-01")
	second := alice.Expense("rent", "200.00", "2025-08-02")
	assert.Equal(t, first.CategoryID, second.CategoryID)
	assert.Equal(t, model.FlowExpense, first.Type)

	_, err := db.Storage.InsertTransaction(context.Background(), first)
	require.NoError(t, err)

	count, err := db.Storage.CountTransactions(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
