// Package report derives balances, monthly rollups, category spend rankings
// and budget variance from a transaction history. Every function is pure:
// callers pass in the rows read from one consistent snapshot and nothing is
// cached between calls.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Balance folds a history into income minus expense. An empty history
// balances to zero, and the result does not depend on the order of txns.
func Balance(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txns {
		total = total.Add(txns[i].Signed())
	}
	return total
}

// BalancesByAccount returns the balance of every account in accounts,
// including zero for accounts with no transactions. Transactions of
// accounts not listed are ignored.
func BalancesByAccount(accounts []model.Account, txns []model.Transaction) []model.AccountBalance {
	sums := make(map[int64]decimal.Decimal, len(accounts))
	for i := range txns {
		id := txns[i].AccountID
		sums[id] = sums[id].Add(txns[i].Signed())
	}

	balances := make([]model.AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, model.AccountBalance{
			Account: account,
			Balance: sums[account.ID].Add(decimal.Zero),
		})
	}
	return balances
}

// NetWorth sums a set of account balances.
func NetWorth(balances []model.AccountBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	return total
}
