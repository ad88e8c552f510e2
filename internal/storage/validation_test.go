package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func TestValidateContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
	assert.NoError(t, validateContext(context.Background()))
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("ledger.db", "dbPath"))
	assert.ErrorIs(t, validateString("", "dbPath"), ErrEmptyString)
	assert.ErrorIs(t, validateString("   ", "dbPath"), ErrEmptyString)
}

func TestValidateMoney(t *testing.T) {
	tests := []struct {
		amount  decimal.Decimal
		name    string
		wantErr bool
	}{
		{name: "two places", amount: decimal.RequireFromString("12.34")},
		{name: "whole", amount: decimal.RequireFromString("12")},
		{name: "maximum", amount: model.MaxAmount},
		{name: "three places", amount: decimal.RequireFromString("12.345"), wantErr: true},
		{name: "over maximum", amount: model.MaxAmount.Add(decimal.RequireFromString("0.01")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMoney(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransactionFields(t *testing.T) {
	valid := func() *model.Transaction {
		return &model.Transaction{
			UserID:     1,
			AccountID:  1,
			CategoryID: 1,
			Type:       model.FlowExpense,
			Amount:     model.MustAmount("1.00"),
			Date:       time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	assert.NoError(t, validateTransactionFields(valid()))
	assert.ErrorIs(t, validateTransactionFields(nil), common.ErrValidation)

	noUser := valid()
	noUser.UserID = 0
	assert.ErrorIs(t, validateTransactionFields(noUser), common.ErrReference)

	zero := valid()
	zero.Amount = decimal.Zero
	assert.ErrorIs(t, validateTransactionFields(zero), common.ErrValidation)
}

func TestValidateBudget(t *testing.T) {
	budget := &model.Budget{UserID: 1, CategoryID: 1, Month: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.Zero}
	assert.NoError(t, validateBudget(budget))

	budget.Month = time.Time{}
	assert.ErrorIs(t, validateBudget(budget), common.ErrValidation)
}
