// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateMoney checks precision and range shared by transactions and budgets.
func validateMoney(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(model.AmountPlaces)) {
		return common.NewValidationError("amount", "must have at most 2 decimal places")
	}
	if amount.GreaterThan(model.MaxAmount) {
		return common.NewValidationError("amount", "exceeds maximum of "+model.FormatAmount(model.MaxAmount))
	}
	return nil
}

// validateTransactionFields checks everything that does not need the database.
func validateTransactionFields(txn *model.Transaction) error {
	if txn == nil {
		return common.NewValidationError("transaction", "missing")
	}
	if txn.UserID <= 0 {
		return common.NewReferenceError("user", txn.UserID)
	}
	if !txn.Type.Valid() {
		return common.NewValidationError("type", fmt.Sprintf("unknown transaction type %q", txn.Type))
	}
	if !txn.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be greater than zero")
	}
	if err := validateMoney(txn.Amount); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		return common.NewValidationError("date", "missing date")
	}
	return nil
}

// validateAccount validates an account before it is created.
func validateAccount(account *model.Account) error {
	if strings.TrimSpace(account.Name) == "" {
		return common.NewValidationError("name", "account name cannot be empty")
	}
	if !account.Type.Valid() {
		return common.NewValidationError("type", fmt.Sprintf("unknown account type %q", account.Type))
	}
	if !currencyCode.MatchString(account.Currency) {
		return common.NewValidationError("currency", fmt.Sprintf("invalid currency code %q", account.Currency))
	}
	return nil
}

// validateCategory validates a category before it is created.
func validateCategory(name string, categoryType model.FlowType) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "category name cannot be empty")
	}
	if !categoryType.Valid() {
		return common.NewValidationError("type", fmt.Sprintf("unknown category type %q", categoryType))
	}
	return nil
}

// validateBudget validates a budget before it is written.
func validateBudget(budget *model.Budget) error {
	if budget.UserID <= 0 {
		return common.NewReferenceError("user", budget.UserID)
	}
	if !model.IsMonthStart(budget.Month) {
		return common.NewValidationError("month", "must be the first day of a month")
	}
	if budget.Amount.IsNegative() {
		return common.NewValidationError("amount", "budget cannot be negative")
	}
	return validateMoney(budget.Amount)
}
