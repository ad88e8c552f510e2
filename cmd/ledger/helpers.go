package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

// initStorage opens the configured database and brings the schema up to
// date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStorage runs fn against an open store and closes it afterwards.
func withStorage(cmd *cobra.Command, fn func(ctx context.Context, store *storage.SQLiteStorage) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	return fn(ctx, store)
}

func addUserFlag(cmd *cobra.Command, userID *int64) {
	cmd.Flags().Int64VarP(userID, "user", "u", 0, "user id")
	_ = cmd.MarkFlagRequired("user")
}

// monthFlag parses a YYYY-MM flag value; empty means the current month.
func monthFlag(value string) (time.Time, error) {
	if value == "" {
		return model.MonthOf(time.Now()), nil
	}
	return model.ParseMonth(value)
}

// dateFlag parses a YYYY-MM-DD flag value; empty means today.
func dateFlag(value string) (time.Time, error) {
	if value == "" {
		return model.CivilDate(time.Now()), nil
	}
	return model.ParseDate(value)
}

// categoryNames maps every category of the user, inactive included, to its
// name.
func categoryNames(ctx context.Context, r service.Reader, userID int64) (map[int64]string, error) {
	categories, err := r.ListCategories(ctx, userID, service.CategoryFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// findCategory resolves a category by name and flow type.
func findCategory(ctx context.Context, r service.Reader, userID int64, name string, flow model.FlowType) (*model.Category, error) {
	categories, err := r.ListCategories(ctx, userID, service.CategoryFilter{Type: flow, IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Name == name {
			return &categories[i], nil
		}
	}
	return nil, nil
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// autoCheckpoint snapshots the database before a bulk write. Failure is
// logged and the operation goes ahead without a checkpoint.
func autoCheckpoint(ctx context.Context, store *storage.SQLiteStorage, operation string) string {
	manager, err := store.NewCheckpointManager()
	if err != nil {
		slog.Debug("Skipping auto-checkpoint", "error", err)
		return ""
	}
	info, err := manager.AutoCheckpoint(ctx, operation)
	if err != nil {
		slog.Warn("Failed to create auto-checkpoint", "operation", operation, "error", err)
		return ""
	}
	return info.ID
}
