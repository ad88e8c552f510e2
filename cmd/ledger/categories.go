package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long: `Create and list income and expense categories.

A category's type is fixed when it is created. Transactions filed under a
category must have the same type.`,
	}

	cmd.AddCommand(createCategoryCmd())
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(setCategoryActiveCmd("deactivate", false))
	cmd.AddCommand(setCategoryActiveCmd("activate", true))

	return cmd
}

func parseFlow(value string) (model.FlowType, error) {
	flow, ok := model.ParseFlowType(value)
	if !ok {
		return "", common.NewValidationError("type", fmt.Sprintf("unknown type %q, want income or expense", value))
	}
	return flow, nil
}

func createCategoryCmd() *cobra.Command {
	var (
		userID   int64
		flowName string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Example: `  ledger categories create groceries --user 1 --type expense
  ledger categories create salary --user 1 --type income`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := parseFlow(flowName)
			if err != nil {
				return err
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				category, err := store.CreateCategory(ctx, userID, args[0], flow)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %s (id %d)", category.Type, category.Name, category.ID)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&flowName, "type", "t", string(model.FlowExpense), "category type (income, expense)")
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var (
		userID   int64
		flowName string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.CategoryFilter{IncludeInactive: all}
			if flowName != "" {
				flow, err := parseFlow(flowName)
				if err != nil {
					return err
				}
				filter.Type = flow
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				categories, err := store.ListCategories(ctx, userID, filter)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No categories."))
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE")
				for _, c := range categories {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, strconv.FormatBool(c.IsActive))
				}
				return w.Flush()
			})
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&flowName, "type", "t", "", "only list this type (income, expense)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive categories")
	return cmd
}

func setCategoryActiveCmd(use string, active bool) *cobra.Command {
	var userID int64

	state := "inactive"
	if active {
		state = "active"
	}

	cmd := &cobra.Command{
		Use:   use + " <category-id>",
		Short: "Mark a category as " + state,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return common.NewValidationError("category", "id must be a number")
			}

			return withStorage(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				if err := store.SetCategoryActive(ctx, userID, categoryID, active); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Category %d %sd", categoryID, use)))
				return err
			})
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}
