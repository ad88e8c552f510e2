package report

import (
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

var (
	rent      = model.Category{ID: 1, UserID: 1, Name: "rent", Type: model.FlowExpense, IsActive: true}
	groceries = model.Category{ID: 2, UserID: 1, Name: "groceries", Type: model.FlowExpense, IsActive: true}
	dining    = model.Category{ID: 3, UserID: 1, Name: "dining", Type: model.FlowExpense, IsActive: true}
	salary    = model.Category{ID: 4, UserID: 1, Name: "salary", Type: model.FlowIncome, IsActive: true}

	allCategories = []model.Category{rent, groceries, dining, salary}
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func txn(category model.Category, amount, date string) model.Transaction {
	return model.Transaction{
		UserID:     1,
		AccountID:  1,
		CategoryID: category.ID,
		Type:       category.Type,
		Amount:     model.MustAmount(amount),
		Date:       day(date),
	}
}
