package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthOf(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		in   time.Time
		want time.Time
		name string
	}{
		{
			name: "mid month",
			in:   time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last instant of month stays in month",
			in:   time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "civil date in its own zone, no conversion",
			in:   time.Date(2025, 9, 1, 1, 0, 0, 0, tokyo), // still Aug 31 in UTC
			want: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthOf(tt.in))
		})
	}
}

func TestCivilDate(t *testing.T) {
	in := time.Date(2025, 3, 9, 22, 15, 0, 0, time.FixedZone("X", -5*60*60))
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), CivilDate(in))
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseMonth("2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonth("2025-08-15")
	assert.Error(t, err)

	_, err = ParseMonth("August")
	assert.Error(t, err)
}

func TestTransactionSigned(t *testing.T) {
	income := Transaction{Type: FlowIncome, Amount: MustAmount("10.00")}
	expense := Transaction{Type: FlowExpense, Amount: MustAmount("2.50")}

	assert.Equal(t, "10.00", FormatAmount(income.Signed()))
	assert.Equal(t, "-2.50", FormatAmount(expense.Signed()))
}

func TestFlowAndAccountTypes(t *testing.T) {
	_, ok := ParseFlowType("income")
	assert.True(t, ok)
	_, ok = ParseFlowType("transfer")
	assert.False(t, ok)

	assert.True(t, AccountWallet.Valid())
	assert.False(t, AccountType("crypto").Valid())
}
