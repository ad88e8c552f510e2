package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	cmd.AddCommand(createAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	return cmd
}

func createAccountCmd() *cobra.Command {
	var (
		userID      int64
		accountType string
		currency    string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account",
		Example: `  ledger accounts create checking --user 1 --type bank
  ledger accounts create visa --user 1 --type card`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.AccountType(accountType)
			if !t.Valid() {
				return common.NewValidationError("type", fmt.Sprintf("unknown account type %q", accountType))
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				account, err := store.CreateAccount(ctx, model.Account{
					UserID:   userID,
					Name:     args[0],
					Type:     t,
					Currency: currency,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s account %s (id %d)", account.Type, account.Name, account.ID)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&accountType, "type", "t", string(model.AccountBank), "account type (cash, bank, card, wallet)")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	return cmd
}

func listAccountsCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				accounts, err := store.ListAccounts(ctx, userID)
				if err != nil {
					return err
				}
				if len(accounts) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No accounts."))
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tCURRENCY")
				for _, a := range accounts {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, a.Currency)
				}
				return w.Flush()
			})
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}
