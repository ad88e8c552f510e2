package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/ledger"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and list transactions",
	}
	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(updateTxCmd())
	cmd.AddCommand(listTxCmd())
	return cmd
}

// txFlags are the attributes a transaction can be given on the command line.
type txFlags struct {
	flow       string
	amount     string
	date       string
	merchant   string
	note       string
	accountID  int64
	categoryID int64
}

func (f *txFlags) register(fs *pflag.FlagSet) {
	fs.Int64VarP(&f.accountID, "account", "a", 0, "account id")
	fs.Int64VarP(&f.categoryID, "category", "c", 0, "category id")
	fs.StringVarP(&f.flow, "type", "t", string(model.FlowExpense), "transaction type (income, expense)")
	fs.StringVar(&f.amount, "amount", "", "positive amount, e.g. 12.50")
	fs.StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	fs.StringVarP(&f.merchant, "merchant", "m", "", "merchant or payer")
	fs.StringVarP(&f.note, "note", "n", "", "free-form note")
}

// apply copies the flags set on fs onto txn. With onlyChanged, flags the
// user did not pass leave txn untouched.
func (f *txFlags) apply(fs *pflag.FlagSet, txn *model.Transaction, onlyChanged bool) error {
	set := func(name string) bool { return !onlyChanged || fs.Changed(name) }

	if set("account") {
		txn.AccountID = f.accountID
	}
	if set("category") {
		txn.CategoryID = f.categoryID
	}
	if set("type") {
		flow, err := parseFlow(f.flow)
		if err != nil {
			return err
		}
		txn.Type = flow
	}
	if set("amount") {
		amount, err := model.ParseAmount(f.amount)
		if err != nil {
			return common.NewValidationError("amount", err.Error())
		}
		txn.Amount = amount
	}
	if set("date") {
		date, err := dateFlag(f.date)
		if err != nil {
			return common.NewValidationError("date", err.Error())
		}
		txn.Date = date
	}
	if set("merchant") {
		txn.Merchant = f.merchant
	}
	if set("note") {
		txn.Note = f.note
	}
	return nil
}

func addTxCmd() *cobra.Command {
	var (
		userID int64
		flags  txFlags
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  ledger tx add --user 1 --account 1 --category 3 --type expense --amount 42.10 --merchant "Corner Market"
  ledger tx add --user 1 --account 1 --category 1 --type income --amount 3200 --date 2024-03-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txn := model.Transaction{UserID: userID}
			if err := flags.apply(cmd.Flags(), &txn, false); err != nil {
				return err
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				id, err := ledger.New(store).AddTransaction(ctx, txn)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s (id %d)", txn.Type, model.FormatAmount(txn.Amount), id)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func updateTxCmd() *cobra.Command {
	var (
		userID int64
		flags  txFlags
	)

	cmd := &cobra.Command{
		Use:   "update <transaction-id>",
		Short: "Change an existing transaction",
		Long: `Change the attributes of a transaction. Only the flags given are
changed; the result must still agree with its category's type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return common.NewValidationError("transaction", "id must be a number")
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				existing, err := store.GetTransaction(ctx, id)
				if err != nil {
					return err
				}
				if existing.UserID != userID {
					return common.NewReferenceError("transaction", id)
				}
				if err := flags.apply(cmd.Flags(), existing, true); err != nil {
					return err
				}
				if err := ledger.New(store).UpdateTransaction(ctx, *existing); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	flags.register(cmd.Flags())
	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		userID     int64
		accountID  int64
		categoryID int64
		flowName   string
		from, to   string
		limit      int
		offset     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in date order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.TransactionFilter{
				AccountID:  accountID,
				CategoryID: categoryID,
				Limit:      limit,
				Offset:     offset,
			}
			if flowName != "" {
				flow, err := parseFlow(flowName)
				if err != nil {
					return err
				}
				filter.Type = flow
			}
			if from != "" {
				start, err := model.ParseDate(from)
				if err != nil {
					return common.NewValidationError("from", err.Error())
				}
				filter.StartDate = &start
			}
			if to != "" {
				end, err := model.ParseDate(to)
				if err != nil {
					return common.NewValidationError("to", err.Error())
				}
				filter.EndDate = &end
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				txns, err := store.ListTransactions(ctx, userID, filter)
				if err != nil {
					return err
				}
				names, err := categoryNames(ctx, store, userID)
				if err != nil {
					return err
				}
				return cli.RenderTransactions(cmd.OutOrStdout(), txns, names)
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().Int64VarP(&accountID, "account", "a", 0, "only this account")
	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "only this category")
	cmd.Flags().StringVarP(&flowName, "type", "t", "", "only this type (income, expense)")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}
