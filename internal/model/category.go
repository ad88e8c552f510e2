package model

import "time"

// FlowType says which way money moves for a category or a transaction.
type FlowType string

const (
	// FlowIncome marks money coming into an account.
	FlowIncome FlowType = "income"
	// FlowExpense marks money leaving an account.
	FlowExpense FlowType = "expense"
)

// Valid reports whether t is one of the known flow types.
func (t FlowType) Valid() bool {
	return t == FlowIncome || t == FlowExpense
}

// ParseFlowType converts user input into a FlowType.
func ParseFlowType(s string) (FlowType, bool) {
	t := FlowType(s)
	return t, t.Valid()
}

// Category groups transactions of a single flow type for one user.
// The type is fixed when the category is created.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      FlowType
	ID        int64
	UserID    int64
	IsActive  bool
}
