package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage ledger users",
	}
	cmd.AddCommand(createUserCmd())
	cmd.AddCommand(listUsersCmd())
	return cmd
}

func createUserCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				user, err := store.CreateUser(ctx, args[0], email)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created user %s (id %d)", user.Name, user.ID)))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address (optional, must be unique)")
	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				users, err := store.ListUsers(ctx)
				if err != nil {
					return err
				}
				if len(users) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No users."))
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCREATED")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", strconv.FormatInt(u.ID, 10), u.Name, u.Email, u.CreatedAt.Format(model.DateLayout))
				}
				return w.Flush()
			})
		},
	}
}
