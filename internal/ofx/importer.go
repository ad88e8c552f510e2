package ofx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// fitidPrefix marks the note of an imported transaction so a second import
// of the same statement can skip it.
const fitidPrefix = "ofx:"

// Recorder is the ledger entry point the importer writes through.
type Recorder interface {
	AddTransaction(ctx context.Context, txn model.Transaction) (int64, error)
}

// Lister reads the transactions already in the target account.
type Lister interface {
	ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) ([]model.Transaction, error)
}

// Target says where imported entries are recorded. Entries are filed under
// the income or expense category according to their flow.
type Target struct {
	UserID            int64
	AccountID         int64
	IncomeCategoryID  int64
	ExpenseCategoryID int64
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported   int
	Duplicates int
	Rejected   int
}

// Importer records statement entries in the ledger.
type Importer struct {
	recorder Recorder
	lister   Lister
}

// NewImporter creates an importer. lister may be nil to skip duplicate
// detection.
func NewImporter(recorder Recorder, lister Lister) *Importer {
	return &Importer{recorder: recorder, lister: lister}
}

// Transaction converts an entry into a ledger transaction for target.
func (t Target) Transaction(entry Entry) model.Transaction {
	categoryID := t.ExpenseCategoryID
	if entry.Flow == model.FlowIncome {
		categoryID = t.IncomeCategoryID
	}

	note := fitidPrefix + entry.FITID
	if entry.Memo != "" && entry.Memo != entry.Merchant {
		note += " " + entry.Memo
	}

	return model.Transaction{
		UserID:     t.UserID,
		AccountID:  t.AccountID,
		CategoryID: categoryID,
		Type:       entry.Flow,
		Amount:     entry.Amount,
		Date:       entry.Date,
		Merchant:   entry.Merchant,
		Note:       note,
	}
}

// Import records every entry not already present in the target account.
// Entries the ledger rejects are counted and skipped; any other error stops
// the import. progress, when set, is called after each entry.
func (im *Importer) Import(ctx context.Context, target Target, entries []Entry, progress func()) (*ImportResult, error) {
	seen, err := im.importedIDs(ctx, target)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, entry := range entries {
		if progress != nil {
			progress()
		}

		if entry.FITID != "" && seen[entry.FITID] {
			result.Duplicates++
			continue
		}

		if _, err := im.recorder.AddTransaction(ctx, target.Transaction(entry)); err != nil {
			if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrReference) {
				result.Rejected++
				slog.Warn("OFX entry rejected", "fitid", entry.FITID, "merchant", entry.Merchant, "error", err)
				continue
			}
			return result, fmt.Errorf("failed to import entry %s: %w", entry.FITID, err)
		}

		if entry.FITID != "" {
			seen[entry.FITID] = true
		}
		result.Imported++
	}

	slog.Info("OFX import finished",
		"account_id", target.AccountID,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"rejected", result.Rejected)
	return result, nil
}

func (im *Importer) importedIDs(ctx context.Context, target Target) (map[string]bool, error) {
	seen := make(map[string]bool)
	if im.lister == nil {
		return seen, nil
	}

	existing, err := im.lister.ListTransactions(ctx, target.UserID, service.TransactionFilter{AccountID: target.AccountID})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions: %w", err)
	}
	for _, txn := range existing {
		if id, ok := strings.CutPrefix(txn.Note, fitidPrefix); ok {
			id, _, _ = strings.Cut(id, " ")
			seen[id] = true
		}
	}
	return seen, nil
}
