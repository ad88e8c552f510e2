package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/report"
)

// Config holds every setting the ledger commands read.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	ReportOrder  report.Order
	Import       ImportConfig
	SeedMonths   int
	Seed         int64
}

// ImportConfig names the categories imported statement lines are filed
// under.
type ImportConfig struct {
	IncomeCategory  string
	ExpenseCategory string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DatabasePath: DefaultDatabasePath(),
		LogLevel:     "info",
		LogFormat:    "console",
		ReportOrder:  report.Descending,
		SeedMonths:   12,
		Seed:         1,
		Import: ImportConfig{
			IncomeCategory:  "uncategorized income",
			ExpenseCategory: "uncategorized",
		},
	}
}

// Load reads the configuration from v.
// It follows this precedence:
// 1. Viper configuration (flags, config file or LEDGER_ env vars)
// 2. LEDGER_DB as a short alias for the database path
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	if s := v.GetString("database.path"); s != "" {
		config.DatabasePath = ExpandPath(s)
	} else if s := os.Getenv("LEDGER_DB"); s != "" {
		config.DatabasePath = ExpandPath(s)
	}
	if s := v.GetString("logging.level"); s != "" {
		config.LogLevel = s
	}
	if s := v.GetString("logging.format"); s != "" {
		config.LogFormat = s
	}
	if v.IsSet("report.order") {
		order, ok := report.ParseOrder(v.GetString("report.order"))
		if !ok {
			return nil, fmt.Errorf("%w: report.order %q", common.ErrInvalidConfig, v.GetString("report.order"))
		}
		config.ReportOrder = order
	}
	if v.IsSet("seed.months") {
		config.SeedMonths = v.GetInt("seed.months")
	}
	if v.IsSet("seed.seed") {
		config.Seed = v.GetInt64("seed.seed")
	}
	if s := v.GetString("import.income_category"); s != "" {
		config.Import.IncomeCategory = s
	}
	if s := v.GetString("import.expense_category"); s != "" {
		config.Import.ExpenseCategory = s
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	if c.SeedMonths <= 0 {
		return fmt.Errorf("%w: seed.months must be positive", common.ErrInvalidConfig)
	}
	if c.Import.IncomeCategory == "" || c.Import.ExpenseCategory == "" {
		return fmt.Errorf("%w: import categories must be named", common.ErrInvalidConfig)
	}
	return nil
}
