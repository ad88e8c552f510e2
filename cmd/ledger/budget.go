package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/ledger"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Manage monthly budgets",
	}
	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(listBudgetsCmd())
	return cmd
}

func setBudgetCmd() *cobra.Command {
	var (
		userID     int64
		categoryID int64
		month      string
		amount     string
	)

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Set the budget of a category for a month",
		Long:    `Set a category's budget for a month. An existing budget for the same month is replaced.`,
		Example: `  ledger budget set --user 1 --category 3 --month 2024-03 --amount 600`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := monthFlag(month)
			if err != nil {
				return common.NewValidationError("month", err.Error())
			}
			amt, err := model.ParseAmount(amount)
			if err != nil {
				return common.NewValidationError("amount", err.Error())
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				id, err := ledger.New(store).SetBudget(ctx, userID, categoryID, m, amt)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget %s for %s set to %s (id %d)",
					m.Format(model.MonthLayout), describeCategory(ctx, store, categoryID), model.FormatAmount(amt), id)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category id")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default this month)")
	cmd.Flags().StringVar(&amount, "amount", "", "budget amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func describeCategory(ctx context.Context, store *storage.SQLiteStorage, id int64) string {
	c, err := store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Sprintf("category %d", id)
	}
	return c.Name
}

func listBudgetsCmd() *cobra.Command {
	var (
		userID int64
		month  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m time.Time
			if month != "" {
				parsed, err := model.ParseMonth(month)
				if err != nil {
					return common.NewValidationError("month", err.Error())
				}
				m = parsed
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				budgets, err := store.ListBudgets(ctx, userID, m)
				if err != nil {
					return err
				}
				if len(budgets) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No budgets."))
					return err
				}
				names, err := categoryNames(ctx, store, userID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tMONTH\tCATEGORY\tAMOUNT")
				for _, b := range budgets {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.Month.Format(model.MonthLayout), names[b.CategoryID], model.FormatAmount(b.Amount))
				}
				return w.Flush()
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&month, "month", "m", "", "only this month, YYYY-MM (default all)")
	return cmd
}
