package commands

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/builder"
	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/gitops"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/store"
)

var fixedNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func runFincore(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(func() time.Time { return fixedNow })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"-C", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runFincore(t, dir, args...)
	require.NoError(t, err, "fincore %s: %s", strings.Join(args, " "), out)
	return out
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, "init", "--name", "Household")
	return dir
}

func TestInit_CreatesProject(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init", "--name", "Household", "--currency", "eur")
	assert.Contains(t, out, `Initialized fincore project "Household"`)
	assert.Contains(t, out, "EUR, 18 accounts")

	for _, f := range []string{
		config.FileName,
		filepath.Join(store.Dir, store.AccountsFile),
		activitylog.Path,
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Household", cfg.Project.Name)
	assert.Equal(t, "EUR", cfg.Project.Currency)
	assert.Equal(t, "personal", cfg.Project.Profile)

	entries, err := activitylog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "init_project", entries[0].Action)
	assert.True(t, fixedNow.Equal(entries[0].Timestamp))
}

func TestInit_MinimalProfile(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init", "--name", "Lean", "--profile", "minimal")
	assert.Contains(t, out, "5 accounts")
}

func TestInit_Git(t *testing.T) {
	if !gitops.Available() {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	out := mustRun(t, dir, "init", "--name", "Household", "--git")
	assert.Contains(t, out, "[")
	assert.True(t, gitops.IsRepo(dir))

	mustRun(t, dir, "expense", "20", "--category", "groceries", "--from", "cash")

	log := exec.Command("git", "log", "--format=%s")
	log.Dir = dir
	history, err := log.Output()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(history)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "expense: post_transaction "), lines[0])
	assert.Equal(t, "init: Household", lines[1])
}

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "verify", commitMessage("verify", nil))
	assert.Equal(t, "account add: add_account vacation (+1 more)", commitMessage("account add", []activitylog.Entry{
		{Action: "add_account", Subject: "vacation"},
		{Action: "post_transaction", Subject: "t1"},
	}))
	assert.Equal(t, "recur post: post_occurrence x", commitMessage("recur post", []activitylog.Entry{{Action: "post_occurrence", Subject: "x"}}))
}

func TestInit_Twice(t *testing.T) {
	dir := initProject(t)
	_, err := runFincore(t, dir, "init", "--name", "Again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_UnknownCurrency(t *testing.T) {
	_, err := runFincore(t, t.TempDir(), "init", "--name", "X", "--currency", "ZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown currency")
}

func TestCommands_RequireInit(t *testing.T) {
	_, err := runFincore(t, t.TempDir(), "balance")
	require.ErrorIs(t, err, store.ErrNotInitialized)
	assert.Contains(t, err.Error(), "fincore init")
}

func TestAccountList(t *testing.T) {
	dir := initProject(t)
	out := mustRun(t, dir, "account", "list", "--class", "liability")
	assert.Contains(t, out, "Credit Card")
	assert.Contains(t, out, "Mortgage")
	assert.NotContains(t, out, "Checking")

	_, err := runFincore(t, dir, "account", "list", "--class", "hobby")
	require.Error(t, err)
}

func TestAccountAdd_WithOpeningBalance(t *testing.T) {
	dir := initProject(t)
	out := mustRun(t, dir, "account", "add", "vacation",
		"--name", "Vacation Fund", "--class", "asset", "--type", "savings", "--number", "1040",
		"--opening", "500", "--date", "2025-01-01")
	assert.Contains(t, out, "Added asset account Vacation Fund (vacation)")

	out = mustRun(t, dir, "balance", "vacation")
	assert.Contains(t, out, "$500.00")

	out = mustRun(t, dir, "balance", "opening balance equity")
	assert.Contains(t, out, "$500.00")

	_, err := runFincore(t, dir, "account", "add", "vacation", "--name", "Again", "--class", "asset")
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)
}

func TestAccountDeactivateAndDelete(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "expense", "12.00", "--category", "entertainment", "--from", "cash", "--date", "2025-03-01")

	_, err := runFincore(t, dir, "account", "delete", "entertainment")
	require.ErrorIs(t, err, ledger.ErrAccountInUse)

	out := mustRun(t, dir, "account", "deactivate", "Entertainment")
	assert.Contains(t, out, "Deactivated Entertainment (entertainment)")

	out = mustRun(t, dir, "account", "list")
	assert.NotContains(t, out, "Entertainment")
	out = mustRun(t, dir, "account", "list", "--all")
	assert.Contains(t, out, "(inactive)")

	_, err = runFincore(t, dir, "expense", "5", "--category", "entertainment", "--from", "cash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")

	out = mustRun(t, dir, "account", "delete", "health")
	assert.Contains(t, out, "Deleted Health (health)")
	_, err = runFincore(t, dir, "balance", "health")
	require.Error(t, err)
}

func TestExpenseIncomeTransfer(t *testing.T) {
	dir := initProject(t)
	out := mustRun(t, dir, "income", "3000", "--source", "salary", "--to", "checking", "--date", "2025-03-01")
	assert.Contains(t, out, "Posted income $3,000.00 on 2025-03-01")

	out = mustRun(t, dir, "expense", "42.50", "--category", "groceries", "--from", "checking", "-d", "Farmers market", "--date", "2025-03-10")
	assert.Contains(t, out, "Posted expense $42.50 on 2025-03-10")

	mustRun(t, dir, "transfer", "500", "--from", "checking", "--to", "savings", "--date", "2025-03-12")

	out = mustRun(t, dir, "balance", "checking", "savings", "groceries")
	assert.Contains(t, out, "$2,457.50")
	assert.Contains(t, out, "$500.00")
	assert.Contains(t, out, "$42.50")

	out = mustRun(t, dir, "report", "month", "--month", "2025-03")
	assert.Contains(t, out, "March 2025")
	assert.Contains(t, out, "$3,000.00")
	assert.Contains(t, out, "+$2,957.50")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "100.00%")

	out = mustRun(t, dir, "report", "networth")
	assert.Contains(t, out, "Net worth as of 2025-03-15")
	assert.Contains(t, out, "$2,957.50")

	out = mustRun(t, dir, "report", "register", "checking")
	assert.Contains(t, out, "Farmers market")
	assert.Contains(t, out, "Transfer to Savings")
	assert.Contains(t, out, "$2,457.50")
}

func TestInvest(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "income", "5000", "--source", "salary", "--to", "checking", "--date", "2025-01-02")

	out := mustRun(t, dir, "invest", "buy", "10", "150.25", "--fees", "4.95", "--date", "2025-01-10")
	assert.Contains(t, out, "Posted buy $1,507.45 on 2025-01-10")

	out = mustRun(t, dir, "invest", "sell", "4", "160", "--fees", "4.95", "--date", "2025-02-10")
	assert.Contains(t, out, "Posted sell $635.05")

	mustRun(t, dir, "invest", "dividend", "12.34", "--source", "dividends", "--to", "checking", "--date", "2025-03-01")

	out = mustRun(t, dir, "balance", "brokerage", "dividends")
	assert.Contains(t, out, "$872.40")
	assert.Contains(t, out, "$12.34")

	_, err := runFincore(t, dir, "invest", "buy", "0", "10")
	require.ErrorIs(t, err, builder.ErrNonPositiveAmount)
}

func TestPost_Rejects(t *testing.T) {
	dir := initProject(t)

	_, err := runFincore(t, dir, "expense", "lots", "--category", "groceries", "--from", "checking")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")

	_, err = runFincore(t, dir, "expense", "10", "--category", "nowhere", "--from", "checking")
	require.Error(t, err)

	_, err = runFincore(t, dir, "expense", "10", "--category", "groceries")
	require.Error(t, err)

	_, err = runFincore(t, dir, "expense", "-10", "--category", "groceries", "--from", "checking")
	require.Error(t, err)

	_, err = runFincore(t, dir, "expense", "10", "--category", "groceries", "--from", "checking", "--every", "fortnightly")
	require.Error(t, err)

	_, err = runFincore(t, dir, "expense", "10.005", "--category", "groceries", "--from", "checking")
	require.ErrorIs(t, err, builder.ErrExcessPrecision)
}

func TestRecurringTemplate(t *testing.T) {
	dir := initProject(t)
	out := mustRun(t, dir, "expense", "1200", "--category", "rent", "--from", "checking",
		"--date", "2025-01-01", "--every", "monthly")
	assert.Contains(t, out, "Posted expense $1,200.00 on 2025-01-01")
	assert.Contains(t, out, "next on 2025-02-01")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "2025-02-01")

	out = mustRun(t, dir, "recur", "next", "--days", "30")
	assert.Contains(t, out, "2025-04-01")
	assert.NotContains(t, out, "2025-05-01")

	out = mustRun(t, dir, "balance", "rent")
	assert.Contains(t, out, "$1,200.00")

	out = mustRun(t, dir, "recur", "post")
	assert.Contains(t, out, "Posted 2 occurrences through 2025-03-15")

	out = mustRun(t, dir, "balance", "rent")
	assert.Contains(t, out, "$3,600.00")

	out = mustRun(t, dir, "recur", "post")
	assert.Contains(t, out, "Nothing due.")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "2025-04-01")

	book, err := store.New(dir).Load()
	require.NoError(t, err)
	// the template plus three realized occurrences
	assert.Len(t, book.Ledger.Transactions(), 4)
	assert.Empty(t, book.Ledger.Verify())
}

func TestRecurringExpense_MonthReportMatchesCash(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "income", "2000", "--source", "salary", "--to", "checking", "--date", "2025-03-01")
	mustRun(t, dir, "expense", "1500", "--category", "rent", "--from", "checking",
		"--date", "2025-03-01", "--every", "monthly")

	out := mustRun(t, dir, "balance", "checking", "rent")
	assert.Contains(t, out, "$500.00")
	assert.Contains(t, out, "$1,500.00")

	out = mustRun(t, dir, "report", "month", "--month", "2025-03")
	assert.Contains(t, out, "Income:    $2,000.00")
	assert.Contains(t, out, "Expenses:  $1,500.00")
	assert.Contains(t, out, "Net:       +$500.00")

	out = mustRun(t, dir, "report", "networth", "--as-of", "2025-03-31")
	assert.Contains(t, out, "$500.00")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "2025-04-01")
}

func TestRecurringDaily_StepsFromCursor(t *testing.T) {
	dir := initProject(t)
	out := mustRun(t, dir, "expense", "4", "--category", "transport", "--from", "cash",
		"--date", "2025-03-08", "--every", "daily", "--interval", "3")
	assert.Contains(t, out, "next on 2025-03-11")

	out = mustRun(t, dir, "recur", "post")
	assert.Contains(t, out, "Posted 2 occurrences through 2025-03-15")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "2025-03-17")

	out = mustRun(t, dir, "balance", "transport")
	assert.Contains(t, out, "$12.00")
}

func TestRecurStop(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "expense", "15", "--category", "entertainment", "--from", "credit-card",
		"--date", "2025-01-20", "--every", "monthly", "-d", "Streaming")

	tpl := ""
	book, err := store.New(dir).Load()
	require.NoError(t, err)
	for _, txn := range book.Ledger.Transactions() {
		if txn.Recurring {
			tpl = txn.ID
		}
	}
	require.NotEmpty(t, tpl)

	out := mustRun(t, dir, "recur", "stop", tpl)
	assert.Contains(t, out, "Stopped Streaming")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "monthly until 2025-03-15")
	assert.Contains(t, out, "2025-02-20")

	out = mustRun(t, dir, "recur", "post", "--through", "2025-12-31")
	assert.Contains(t, out, "Posted 1 occurrences")
	out = mustRun(t, dir, "balance", "entertainment")
	assert.Contains(t, out, "$30.00")

	out = mustRun(t, dir, "recur", "list")
	assert.Contains(t, out, "ended")
}

func TestLoanCalculators(t *testing.T) {
	dir := initProject(t)

	out := mustRun(t, dir, "loan", "payment", "--principal", "200000", "--rate", "6", "--payments", "360")
	assert.Contains(t, out, "$1,199.10")

	out = mustRun(t, dir, "loan", "schedule", "--principal", "1200", "--rate", "0", "--payments", "12",
		"--start", "2025-01-15", "--limit", "3")
	assert.Contains(t, out, "2025-02-15")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "9 more payments")

	out = mustRun(t, dir, "loan", "early-repayment", "--balance", "1000", "--remaining", "10", "--rate", "0", "--amount", "1000")
	assert.Contains(t, out, "Pays the loan off in full")

	out = mustRun(t, dir, "loan", "compare", "--balance", "200000", "--remaining", "360", "--rate", "6", "--rates", "5,7")
	assert.Contains(t, out, "5.00%")
	assert.Contains(t, out, "7.00%")

	_, err := runFincore(t, dir, "loan", "payment", "--principal", "1000", "--rate", "5", "--payments", "0")
	require.Error(t, err)
}

func TestTrackedLoan(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "account", "add", "car-loan", "--name", "Car Loan", "--class", "liability",
		"--opening", "1000", "--date", "2025-01-01")
	mustRun(t, dir, "income", "2000", "--source", "salary", "--to", "checking", "--date", "2025-01-01")

	out := mustRun(t, dir, "loan", "add", "car", "--name", "Car", "--type", "auto",
		"--principal", "1000", "--rate", "0", "--payments", "10", "--start", "2025-01-01")
	assert.Contains(t, out, "Added loan Car, payment $100.00 Monthly")

	_, err := runFincore(t, dir, "loan", "add", "car", "--name", "Car", "--principal", "1", "--rate", "0", "--payments", "1")
	require.Error(t, err)

	out = mustRun(t, dir, "loan", "pay", "car", "--from", "checking", "--account", "car-loan")
	assert.Contains(t, out, "Recorded payment 1 of 10 on Car: $100.00")

	out = mustRun(t, dir, "balance", "car-loan", "checking")
	assert.Contains(t, out, "$900.00")
	assert.Contains(t, out, "$1,900.00")

	out = mustRun(t, dir, "loan", "list")
	assert.Contains(t, out, "10.00%")
	assert.Contains(t, out, "2025-03-01")

	out = mustRun(t, dir, "loan", "repay", "car", "--amount", "400", "--mode", "reduce-payment")
	assert.Contains(t, out, "New balance:         $500.00")

	out = mustRun(t, dir, "loan", "show", "car")
	assert.Contains(t, out, "$500.00 of $1,000.00")

	out = mustRun(t, dir, "loan", "rate", "car", "12")
	assert.Contains(t, out, "Car now at 12.00%")

	_, err = runFincore(t, dir, "loan", "pay", "nope")
	require.Error(t, err)

	out = mustRun(t, dir, "verify")
	assert.Contains(t, out, "Ledger OK")
	assert.Contains(t, out, "1 loans")
}

func TestVerify_ReportsProblems(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "loan", "add", "car", "--name", "Car", "--principal", "1000", "--rate", "0", "--payments", "10", "--start", "2025-01-01")

	book, err := store.New(dir).Load()
	require.NoError(t, err)
	book.Loans[0].PaymentsMade = 12
	require.NoError(t, store.New(dir).Save(book))

	out, err := runFincore(t, dir, "verify")
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.Contains(t, out, "payments made 12 outside 0..10")
}

func TestLog(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "expense", "9.99", "--category", "groceries", "--from", "cash")

	out := mustRun(t, dir, "log")
	assert.Contains(t, out, "init_project")
	assert.Contains(t, out, "post_transaction")
	assert.Contains(t, out, "$9.99")

	out = mustRun(t, dir, "log", "-n", "1")
	assert.NotContains(t, out, "init_project")
}
