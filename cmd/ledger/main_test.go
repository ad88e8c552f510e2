package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
)

// runLedger executes the CLI against dbPath and returns what it printed.
func runLedger(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := runLedger(t, dbPath, args...)
	require.NoError(t, err, "ledger %s", strings.Join(args, " "))
	return out
}

func TestLedgerWorkflow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	assert.Contains(t, mustRun(t, dbPath, "users", "create", "Alice", "--email", "alice@example.com"), "Created user Alice (id 1)")
	assert.Contains(t, mustRun(t, dbPath, "accounts", "create", "checking", "--user", "1", "--type", "bank"), "(id 1)")
	assert.Contains(t, mustRun(t, dbPath, "categories", "create", "salary", "--user", "1", "--type", "income"), "(id 1)")
	assert.Contains(t, mustRun(t, dbPath, "categories", "create", "groceries", "--user", "1", "--type", "expense"), "(id 2)")

	mustRun(t, dbPath, "tx", "add", "--user", "1", "--account", "1", "--category", "1", "--type", "income", "--amount", "3000", "--date", "2024-03-01")
	mustRun(t, dbPath, "tx", "add", "--user", "1", "--account", "1", "--category", "2", "--type", "expense", "--amount", "120.50", "--date", "2024-03-05", "--merchant", "Corner Market")

	t.Run("mismatched type is rejected", func(t *testing.T) {
		_, err := runLedger(t, dbPath, "tx", "add", "--user", "1", "--account", "1", "--category", "1", "--type", "expense", "--amount", "5", "--date", "2024-03-06")
		require.ErrorIs(t, err, common.ErrValidation)
		assert.Equal(t, common.ReasonTypeMismatch, common.Reason(err))

		out := mustRun(t, dbPath, "tx", "list", "--user", "1")
		assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), "\n")), "header plus two rows")
	})

	out := mustRun(t, dbPath, "balance", "--user", "1")
	assert.Contains(t, out, "2879.50")

	out = mustRun(t, dbPath, "report", "monthly", "--user", "1")
	assert.Equal(t, []string{"2024-03", "3000.00", "120.50", "2879.50"}, strings.Fields(strings.Split(strings.TrimSpace(out), "\n")[1]))

	mustRun(t, dbPath, "budget", "set", "--user", "1", "--category", "2", "--month", "2024-03", "--amount", "100")
	out = mustRun(t, dbPath, "report", "budget", "--user", "1", "--month", "2024-03")
	assert.Contains(t, out, "OVER")

	mustRun(t, dbPath, "tx", "update", "2", "--user", "1", "--amount", "80")
	out = mustRun(t, dbPath, "report", "budget", "--user", "1", "--month", "2024-03")
	assert.NotContains(t, out, "OVER")
	assert.Contains(t, out, "All budgets on track")

	out = mustRun(t, dbPath, "report", "dashboard", "--user", "1", "--month", "2024-03")
	assert.Contains(t, out, "groceries")
	assert.Contains(t, out, "2920.00")
}

func TestUpdateForeignTransaction(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	mustRun(t, dbPath, "users", "create", "Alice")
	mustRun(t, dbPath, "users", "create", "Bob")
	mustRun(t, dbPath, "accounts", "create", "cash", "--user", "1", "--type", "cash")
	mustRun(t, dbPath, "categories", "create", "food", "--user", "1")
	mustRun(t, dbPath, "tx", "add", "--user", "1", "--account", "1", "--category", "1", "--amount", "9", "--date", "2024-01-02")

	_, err := runLedger(t, dbPath, "tx", "update", "1", "--user", "2", "--amount", "1")
	assert.ErrorIs(t, err, common.ErrReference)
}

func TestSeedAndCheckpoints(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	out := mustRun(t, dbPath, "seed", "--start", "2024-01", "--months", "1", "--quiet")
	assert.Contains(t, out, "Seeded user 1")
	assert.Contains(t, mustRun(t, dbPath, "users", "list"), "demo@ledger.local")

	out = mustRun(t, dbPath, "checkpoint", "list")
	assert.Contains(t, out, "auto-seed-")

	mustRun(t, dbPath, "checkpoint", "create", "--tag", "after-seed")
	mustRun(t, dbPath, "tx", "add", "--user", "1", "--account", "1", "--category", "3", "--amount", "1", "--date", "2024-01-31")

	t.Run("restore asks first", func(t *testing.T) {
		out := mustRun(t, dbPath, "checkpoint", "restore", "after-seed")
		assert.Contains(t, out, "Restore cancelled.")
	})

	before := mustRun(t, dbPath, "tx", "list", "--user", "1")
	mustRun(t, dbPath, "checkpoint", "restore", "after-seed", "--force")
	after := mustRun(t, dbPath, "tx", "list", "--user", "1")
	assert.Equal(t, strings.Count(before, "\n")-1, strings.Count(after, "\n"))

	mustRun(t, dbPath, "checkpoint", "delete", "after-seed", "--force")
	assert.NotContains(t, mustRun(t, dbPath, "checkpoint", "list"), "after-seed")
}

func TestImportOFXCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	statement := filepath.Join(dir, "statement.ofx")
	require.NoError(t, os.WriteFile(statement, []byte(testStatement), 0o600))

	mustRun(t, dbPath, "users", "create", "Alice")
	mustRun(t, dbPath, "accounts", "create", "checking", "--user", "1")

	out := mustRun(t, dbPath, "import-ofx", statement, "--user", "1", "--account", "1", "--dry-run")
	assert.Contains(t, out, "uncategorized income")
	assert.Contains(t, mustRun(t, dbPath, "categories", "list", "--user", "1"), "No categories.")

	out = mustRun(t, dbPath, "import-ofx", statement, "--user", "1", "--account", "1")
	assert.Contains(t, out, "Imported 2 transactions into checking (0 already present, 0 rejected)")

	out = mustRun(t, dbPath, "import-ofx", statement, "--user", "1", "--account", "1")
	assert.Contains(t, out, "Imported 0 transactions into checking (2 already present, 0 rejected)")

	assert.Contains(t, mustRun(t, dbPath, "balance", "--user", "1", "--account", "1"), "1974.50")
}

func TestConfigErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	_, err := runLedger(t, dbPath, "--log-format", "xml", "version")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"users", "create"},
		{"categories", "deactivate"},
		{"categories", "activate"},
		{"tx", "update"},
		{"budget", "set"},
		{"report", "rank"},
		{"report", "dashboard"},
		{"checkpoint", "restore"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	txAdd, _, err := root.Find([]string{"tx", "add"})
	require.NoError(t, err)
	for _, name := range []string{"user", "account", "category", "amount"} {
		flag := txAdd.Flag(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}
}

const testStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2000.00
<FITID>2024013101
<NAME>ACME CORP PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1974.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`
