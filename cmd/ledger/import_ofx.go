package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/ledger"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/ofx"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func importOFXCmd() *cobra.Command {
	var (
		userID    int64
		accountID int64
		income    string
		expense   string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <file>",
		Short: "Import transactions from an OFX/QFX statement",
		Long: `Record the lines of an OFX/QFX bank or credit card statement in an account.

Credits are filed under the income category and debits under the expense
category; both are created if missing. Lines already imported into the
account are skipped, so a statement can be imported twice safely.`,
		Example: `  ledger import-ofx statement.qfx --user 1 --account 2
  ledger import-ofx card.ofx --user 1 --account 3 --expense card-spend --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("income") {
				income = appConfig.Import.IncomeCategory
			}
			if !cmd.Flags().Changed("expense") {
				expense = appConfig.Import.ExpenseCategory
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open statement: %w", err)
			}
			defer func() { _ = file.Close() }()

			entries, err := ofx.NewParser().ParseFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, err := fmt.Fprintln(out, cli.FormatWarning("No transactions found in "+args[0]))
				return err
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				account, err := store.GetAccount(ctx, accountID)
				if err != nil {
					return err
				}
				if account.UserID != userID {
					return common.NewReferenceError("account", accountID)
				}

				if dryRun {
					return cli.RenderTransactions(out, previewEntries(entries, userID, accountID), map[int64]string{
						previewIncome:  income,
						previewExpense: expense,
					})
				}

				target := ofx.Target{UserID: userID, AccountID: accountID}
				if target.IncomeCategoryID, err = ensureCategory(ctx, store, userID, income, model.FlowIncome); err != nil {
					return err
				}
				if target.ExpenseCategoryID, err = ensureCategory(ctx, store, userID, expense, model.FlowExpense); err != nil {
					return err
				}

				interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
				if id := autoCheckpoint(ctx, store, "import"); id != "" {
					interrupts.SetCheckpoint(id)
				}
				ctx = interrupts.HandleInterrupts(ctx)
				defer interrupts.Stop()

				bar := newProgressBar(cmd.ErrOrStderr(), len(entries), "Importing transactions...")
				progress := func() {
					if err := bar.Add(1); err != nil {
						slog.Warn("Failed to update progress bar", "error", err)
					}
				}

				result, err := ofx.NewImporter(ledger.New(store), store).Import(ctx, target, entries, progress)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
					"Imported %d transactions into %s (%d already present, %d rejected)",
					result.Imported, account.Name, result.Duplicates, result.Rejected)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().Int64VarP(&accountID, "account", "a", 0, "account to import into")
	cmd.Flags().StringVar(&income, "income", "", "income category name (default from config)")
	cmd.Flags().StringVar(&expense, "expense", "", "expense category name (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// ensureCategory returns the id of the named category, creating it if the
// user has none.
func ensureCategory(ctx context.Context, store service.Storage, userID int64, name string, flow model.FlowType) (int64, error) {
	existing, err := findCategory(ctx, store, userID, name, flow)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	created, err := store.CreateCategory(ctx, userID, name, flow)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Placeholder category ids for a dry run, before the categories exist.
const (
	previewIncome  int64 = -1
	previewExpense int64 = -2
)

func previewEntries(entries []ofx.Entry, userID, accountID int64) []model.Transaction {
	target := ofx.Target{
		UserID:            userID,
		AccountID:         accountID,
		IncomeCategoryID:  previewIncome,
		ExpenseCategoryID: previewExpense,
	}
	txns := make([]model.Transaction, 0, len(entries))
	for _, e := range entries {
		txns = append(txns, target.Transaction(e))
	}
	return txns
}
