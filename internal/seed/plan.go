package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Directory is what PreparePlan needs to find or create the demo user.
type Directory interface {
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateAccount(ctx context.Context, account model.Account) (*model.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]model.Account, error)
	CreateCategory(ctx context.Context, userID int64, name string, categoryType model.FlowType) (*model.Category, error)
	ListCategories(ctx context.Context, userID int64, filter service.CategoryFilter) ([]model.Category, error)
}

// DemoEmail identifies the demo user so repeated runs reuse it.
const DemoEmail = "demo@ledger.local"

// PreparePlan finds or creates the demo user, a checking account and every
// demo category, and returns their ids.
func PreparePlan(ctx context.Context, dir Directory) (Plan, error) {
	user, err := dir.GetUserByEmail(ctx, DemoEmail)
	if errors.Is(err, common.ErrNotFound) {
		user, err = dir.CreateUser(ctx, "Demo User", DemoEmail)
	}
	if err != nil {
		return Plan{}, fmt.Errorf("failed to prepare demo user: %w", err)
	}

	plan := Plan{UserID: user.ID, Categories: make(map[string]int64, len(DemoCategories))}

	accounts, err := dir.ListAccounts(ctx, user.ID)
	if err != nil {
		return Plan{}, err
	}
	for _, a := range accounts {
		if a.Name == "checking" {
			plan.AccountID = a.ID
		}
	}
	if plan.AccountID == 0 {
		account, err := dir.CreateAccount(ctx, model.Account{UserID: user.ID, Name: "checking", Type: model.AccountBank})
		if err != nil {
			return Plan{}, fmt.Errorf("failed to create demo account: %w", err)
		}
		plan.AccountID = account.ID
	}

	categories, err := dir.ListCategories(ctx, user.ID, service.CategoryFilter{IncludeInactive: true})
	if err != nil {
		return Plan{}, err
	}
	type categoryKey struct {
		name string
		flow model.FlowType
	}
	existing := make(map[categoryKey]int64, len(categories))
	for _, c := range categories {
		existing[categoryKey{c.Name, c.Type}] = c.ID
	}

	for _, demo := range DemoCategories {
		if id, ok := existing[categoryKey{demo.Name, demo.Type}]; ok {
			plan.Categories[demo.Name] = id
			continue
		}
		c, err := dir.CreateCategory(ctx, user.ID, demo.Name, demo.Type)
		if err != nil {
			return Plan{}, fmt.Errorf("failed to create demo category %q: %w", demo.Name, err)
		}
		plan.Categories[demo.Name] = c.ID
	}
	return plan, nil
}

// rejected reports whether err is a caller-visible rejection rather than a
// storage failure.
func rejected(err error) bool {
	return errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrReference)
}
