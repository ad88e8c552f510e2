package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/report"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/srv/ledger")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "in-memory database", input: ":memory:", expected: ":memory:"},
		{name: "home", input: "~", expected: home},
		{name: "under home", input: "~/data/ledger.db", expected: filepath.Join(home, "data/ledger.db")},
		{name: "env var", input: "$LEDGER_TEST_DIR/ledger.db", expected: "/srv/ledger/ledger.db"},
		{name: "absolute", input: "/tmp/ledger.db", expected: "/tmp/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_DB", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, report.Descending, cfg.ReportOrder)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("database.path", "/var/lib/ledger.db")
	v.Set("logging.format", "json")
	v.Set("report.order", "asc")
	v.Set("seed.months", 3)
	v.Set("seed.seed", 42)
	v.Set("import.expense_category", "imported")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ledger.db", cfg.DatabasePath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, report.Ascending, cfg.ReportOrder)
	assert.Equal(t, 3, cfg.SeedMonths)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "imported", cfg.Import.ExpenseCategory)
	assert.Equal(t, "uncategorized income", cfg.Import.IncomeCategory)
}

func TestLoadDatabaseAlias(t *testing.T) {
	t.Setenv("LEDGER_DB", "/tmp/alias.db")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/alias.db", cfg.DatabasePath)

	v := viper.New()
	v.Set("database.path", "/tmp/explicit.db")
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.db", cfg.DatabasePath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		value any
		name  string
		key   string
	}{
		{name: "log level", key: "logging.level", value: "loud"},
		{name: "log format", key: "logging.format", value: "xml"},
		{name: "report order", key: "report.order", value: "sideways"},
		{name: "seed months", key: "seed.months", value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}
