// Package testutil provides ledger fixtures backed by a real, migrated
// SQLite store so that tests exercise the same guard the CLI does.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

// TestDB is a migrated in-memory store with helpers for building fixtures.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. Cleanup is registered
// with t.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// User is a fixture user with a default bank account and named categories.
type User struct {
	db         *TestDB
	categories map[string]model.Category
	ID         int64
	AccountID  int64
}

// CreateUser creates a user and a "checking" bank account for it.
func (db *TestDB) CreateUser(name string) *User {
	db.t.Helper()
	ctx := context.Background()

	user, err := db.Storage.CreateUser(ctx, name, "")
	if err != nil {
		db.t.Fatalf("failed to create user %q: %v", name, err)
	}

	u := &User{db: db, ID: user.ID, categories: make(map[string]model.Category)}
	u.AccountID = u.Account("checking", model.AccountBank)
	return u
}

// Account creates another account for the user and returns its id.
func (u *User) Account(name string, accountType model.AccountType) int64 {
	u.db.t.Helper()

	account, err := u.db.Storage.CreateAccount(context.Background(), model.Account{
		UserID: u.ID,
		Name:   name,
		Type:   accountType,
	})
	if err != nil {
		u.db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return account.ID
}

// Category returns the id of the user's category called name, creating it
// with flow type categoryType on first use.
func (u *User) Category(name string, categoryType model.FlowType) int64 {
	u.db.t.Helper()

	if c, ok := u.categories[name]; ok {
		if c.Type != categoryType {
			u.db.t.Fatalf("fixture category %q already exists as %s", name, c.Type)
		}
		return c.ID
	}

	c, err := u.db.Storage.CreateCategory(context.Background(), u.ID, name, categoryType)
	if err != nil {
		u.db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	u.categories[name] = *c
	return c.ID
}

// Expense builds an expense on the default account. The category is
// created as an expense category if needed.
func (u *User) Expense(category, amount, date string) model.Transaction {
	u.db.t.Helper()
	return u.txn(u.Category(category, model.FlowExpense), model.FlowExpense, amount, date)
}

// Income builds an income on the default account.
func (u *User) Income(category, amount, date string) model.Transaction {
	u.db.t.Helper()
	return u.txn(u.Category(category, model.FlowIncome), model.FlowIncome, amount, date)
}

func (u *User) txn(categoryID int64, flow model.FlowType, amount, date string) model.Transaction {
	return model.Transaction{
		UserID:     u.ID,
		AccountID:  u.AccountID,
		CategoryID: categoryID,
		Type:       flow,
		Amount:     model.MustAmount(amount),
		Date:       Date(u.db.t, date),
	}
}

// Date parses a YYYY-MM-DD literal or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad fixture date: %v", err)
	}
	return d
}
