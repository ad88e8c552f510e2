package model

import "time"

// AccountType is the kind of place money is held.
type AccountType string

// Supported account types.
const (
	AccountCash   AccountType = "cash"
	AccountBank   AccountType = "bank"
	AccountCard   AccountType = "card"
	AccountWallet AccountType = "wallet"
)

// DefaultCurrency is used when an account is created without one.
const DefaultCurrency = "USD"

// Valid reports whether t is a supported account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountCard, AccountWallet:
		return true
	}
	return false
}

// Account belongs to exactly one user.
type Account struct {
	CreatedAt time.Time
	Name      string
	Currency  string
	Type      AccountType
	ID        int64
	UserID    int64
}
