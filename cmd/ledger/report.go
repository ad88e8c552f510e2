package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/ledger"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/report"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func balanceCmd() *cobra.Command {
	var (
		userID    int64
		accountID int64
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show account balances and net worth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				l := ledger.New(store)
				if accountID != 0 {
					account, err := store.GetAccount(ctx, accountID)
					if err != nil {
						return err
					}
					if account.UserID != userID {
						return common.NewReferenceError("account", accountID)
					}
					balance, err := l.Balance(ctx, accountID)
					if err != nil {
						return err
					}
					return cli.RenderBalances(cmd.OutOrStdout(), []model.AccountBalance{{Account: *account, Balance: balance}}, balance)
				}

				balances, err := l.Balances(ctx, userID)
				if err != nil {
					return err
				}
				return cli.RenderBalances(cmd.OutOrStdout(), balances, report.NetWorth(balances))
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().Int64VarP(&accountID, "account", "a", 0, "only this account")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries of income, spending and budgets",
	}
	cmd.AddCommand(monthlyReportCmd())
	cmd.AddCommand(monthReportCmd("spend", "Spending per category for a month", renderSpend))
	cmd.AddCommand(rankReportCmd())
	cmd.AddCommand(monthReportCmd("budget", "Budget against actual spending for a month", renderBudget))
	cmd.AddCommand(monthReportCmd("dashboard", "Balances, monthly totals, top spending and budgets", renderDashboard))
	return cmd
}

func monthlyReportCmd() *cobra.Command {
	var (
		userID int64
		order  string
	)

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Income, expense and net per month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := appConfig.ReportOrder
			if cmd.Flags().Changed("order") {
				parsed, ok := report.ParseOrder(order)
				if !ok {
					return common.NewValidationError("order", fmt.Sprintf("unknown order %q, want asc or desc", order))
				}
				o = parsed
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				months, err := ledger.New(store).MonthlySummary(ctx, userID, o)
				if err != nil {
					return err
				}
				return cli.RenderMonthly(cmd.OutOrStdout(), months)
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&order, "order", "o", "desc", "month order (asc, desc)")
	return cmd
}

func rankReportCmd() *cobra.Command {
	var (
		userID int64
		month  string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank categories by spending within each month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m time.Time
			if !all {
				parsed, err := monthFlag(month)
				if err != nil {
					return common.NewValidationError("month", err.Error())
				}
				m = parsed
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				ranked, err := ledger.New(store).CategoryRanking(ctx, userID, m)
				if err != nil {
					return err
				}
				return cli.RenderRanking(cmd.OutOrStdout(), ranked)
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default this month)")
	cmd.Flags().BoolVar(&all, "all", false, "rank every month")
	return cmd
}

type monthRenderer func(ctx context.Context, cmd *cobra.Command, l *ledger.Ledger, userID int64, month time.Time) error

// monthReportCmd builds a report command that takes a user and a month.
func monthReportCmd(use, short string, render monthRenderer) *cobra.Command {
	var (
		userID int64
		month  string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := monthFlag(month)
			if err != nil {
				return common.NewValidationError("month", err.Error())
			}
			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				return render(ctx, cmd, ledger.New(store), userID, m)
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default this month)")
	return cmd
}

func renderSpend(ctx context.Context, cmd *cobra.Command, l *ledger.Ledger, userID int64, month time.Time) error {
	spend, err := l.CategorySpend(ctx, userID, month)
	if err != nil {
		return err
	}
	return cli.RenderCategorySpend(cmd.OutOrStdout(), spend)
}

func renderBudget(ctx context.Context, cmd *cobra.Command, l *ledger.Ledger, userID int64, month time.Time) error {
	statuses, err := l.BudgetStatus(ctx, userID, month)
	if err != nil {
		return err
	}
	return cli.RenderBudgetStatus(cmd.OutOrStdout(), statuses)
}

func renderDashboard(ctx context.Context, cmd *cobra.Command, l *ledger.Ledger, userID int64, month time.Time) error {
	dashboard, err := l.Dashboard(ctx, userID, month)
	if err != nil {
		return err
	}
	return cli.RenderDashboard(cmd.OutOrStdout(), dashboard)
}
