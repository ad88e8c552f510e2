// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	StartDate  *time.Time // inclusive civil date
	EndDate    *time.Time // inclusive civil date
	Type       model.FlowType
	AccountID  int64
	CategoryID int64
	Limit      int
	Offset     int
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Type            model.FlowType
	IncludeInactive bool
}

// Reader is the read side of the ledger store.
type Reader interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	GetBudget(ctx context.Context, id int64) (*model.Budget, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	ListAccounts(ctx context.Context, userID int64) ([]model.Account, error)
	ListCategories(ctx context.Context, userID int64, filter CategoryFilter) ([]model.Category, error)
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error)
	ListBudgets(ctx context.Context, userID int64, month time.Time) ([]model.Budget, error)
	CountTransactions(ctx context.Context, userID int64) (int, error)
}

// Snapshot is a consistent, read-only view of the store held for the
// duration of one query. Release must always be called.
type Snapshot interface {
	Reader
	Release() error
}

// Storage defines the contract for our persistence layer. Every write that
// creates or changes a transaction goes through the category-type guard.
type Storage interface {
	Reader

	// User and account operations
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateAccount(ctx context.Context, account model.Account) (*model.Account, error)

	// Category operations
	CreateCategory(ctx context.Context, userID int64, name string, categoryType model.FlowType) (*model.Category, error)
	SetCategoryActive(ctx context.Context, userID, categoryID int64, active bool) error

	// Transaction operations
	InsertTransaction(ctx context.Context, txn model.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, txn model.Transaction) error

	// Budget operations
	CreateBudget(ctx context.Context, budget model.Budget) (int64, error)
	UpsertBudget(ctx context.Context, budget model.Budget) (int64, error)

	// Database management
	Snapshot(ctx context.Context) (Snapshot, error)
	Migrate(ctx context.Context) error
	Close() error
}
