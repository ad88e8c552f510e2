package model

import "time"

// User owns accounts, categories, transactions and budgets.
type User struct {
	CreatedAt time.Time
	Name      string
	Email     string // optional, unique when set
	ID        int64
}
