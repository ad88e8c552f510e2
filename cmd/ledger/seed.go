package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/ledger"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/seed"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func seedCmd() *cobra.Command {
	var (
		months int
		start  string
		rng    int64
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the ledger with demo data",
		Long: `Generate a demo user with a checking account, income and expense
categories, monthly budgets and a plausible day-by-day transaction history.

Runs are deterministic for a given --seed. A checkpoint is taken first so
the demo data can be rolled back.`,
		Example: `  ledger seed --months 6
  ledger seed --start 2024-01 --months 12 --seed 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := seed.Options{Months: appConfig.SeedMonths, Seed: appConfig.Seed}
			if cmd.Flags().Changed("months") {
				opts.Months = months
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = rng
			}
			if start != "" {
				m, err := model.ParseMonth(start)
				if err != nil {
					return common.NewValidationError("start", err.Error())
				}
				opts.Start = m
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				out := cmd.OutOrStdout()

				interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Seeding")
				if id := autoCheckpoint(ctx, store, "seed"); id != "" {
					interrupts.SetCheckpoint(id)
					slog.Info("Created checkpoint before seeding", "checkpoint", id)
				}
				ctx = interrupts.HandleInterrupts(ctx)
				defer interrupts.Stop()

				plan, err := seed.PreparePlan(ctx, store)
				if err != nil {
					return err
				}

				if !quiet {
					var bar *progressbar.ProgressBar
					opts.Progress = func(done, total int) {
						if bar == nil {
							bar = newProgressBar(cmd.ErrOrStderr(), total, "Seeding demo data...")
						}
						if err := bar.Set(done); err != nil {
							slog.Warn("Failed to update progress bar", "error", err)
						}
					}
				}

				result, err := seed.Run(ctx, ledger.New(store), plan, opts)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
					"Seeded user %d: %d transactions, %d budgets (%d rejected)",
					plan.UserID, result.Transactions, result.Budgets, result.Rejected)))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 12, "months of history to generate")
	cmd.Flags().StringVar(&start, "start", "", "first month, YYYY-MM (default: ending this month)")
	cmd.Flags().Int64Var(&rng, "seed", 1, "random seed")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}
