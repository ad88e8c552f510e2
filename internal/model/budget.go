package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the planned spend for one category in one month.
type Budget struct {
	Month      time.Time // first day of the month
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Amount     decimal.Decimal
	ID         int64
	UserID     int64
	CategoryID int64
}
