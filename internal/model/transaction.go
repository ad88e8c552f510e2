package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single recorded money movement. Amount is always
// positive; Type carries the direction and must agree with the category.
type Transaction struct {
	Date       time.Time
	CreatedAt  time.Time
	Amount     decimal.Decimal
	Merchant   string
	Note       string
	Type       FlowType
	ID         int64
	UserID     int64
	AccountID  int64
	CategoryID int64
}

// Signed returns the amount with the sign it contributes to a balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == FlowExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Month returns the first day of the transaction's calendar month.
func (t *Transaction) Month() time.Time {
	return MonthOf(t.Date)
}
