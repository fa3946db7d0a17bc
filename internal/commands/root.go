package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/buildinfo"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/gitops"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/store"
)

// app is the state shared by one command tree.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	now func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	a := &app{v: viper.New(), now: now}

	rootCmd := &cobra.Command{
		Use:     "fincore",
		Short:   "Double-entry personal finance",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	rootCmd.PersistentFlags().StringP("project", "C", ".", "project directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = a.v.BindPFlag("project_dir", rootCmd.PersistentFlags().Lookup("project"))
	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newAccountCommand(a))
	rootCmd.AddCommand(newExpenseCommand(a))
	rootCmd.AddCommand(newIncomeCommand(a))
	rootCmd.AddCommand(newTransferCommand(a))
	rootCmd.AddCommand(newInvestCommand(a))
	rootCmd.AddCommand(newBalanceCommand(a))
	rootCmd.AddCommand(newReportCommand(a))
	rootCmd.AddCommand(newLoanCommand(a))
	rootCmd.AddCommand(newRecurCommand(a))
	rootCmd.AddCommand(newVerifyCommand(a))
	rootCmd.AddCommand(newLogCommand(a))

	return rootCmd
}

// initConfig resolves settings in flag, FINCORE_* env, fincore.yaml order
// and sets up logging.
func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix("FINCORE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	path := filepath.Join(a.dir(), config.FileName)
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// init has not run yet; defaults apply
		cfg = config.Default("", currency.Default)
	case err != nil:
		return err
	default:
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	a.cfg = cfg

	if err := logger.Init(a.v.GetString("logging.level"), a.v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	logger.Get().Debugw("config resolved", "command", cmd.CommandPath(), "project", a.dir(), "config", path)
	return nil
}

func (a *app) dir() string {
	return a.v.GetString("project_dir")
}

func (a *app) store() *store.Store {
	return store.New(a.dir())
}

// open loads the project's book and a chart resolver over its accounts.
func (a *app) open() (*store.Book, *accounts.Chart, error) {
	book, err := a.store().Load()
	if errors.Is(err, store.ErrNotInitialized) {
		return nil, nil, fmt.Errorf("%w (run `fincore init` first)", err)
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Get().Debugw("ledger loaded",
		"accounts", len(book.Ledger.Accounts()),
		"transactions", len(book.Ledger.Transactions()),
		"loans", len(book.Loans))
	return book, accounts.NewChart(book.Ledger.Accounts()), nil
}

// commit saves the book and appends entries to the activity log. A failed
// log write is reported but does not fail the command.
func (a *app) commit(cmd *cobra.Command, book *store.Book, entries ...activitylog.Entry) error {
	if err := a.store().Save(book); err != nil {
		return err
	}
	ts := a.now().UTC()
	command := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	for i := range entries {
		entries[i].Timestamp = ts
		entries[i].Command = command
	}
	if err := activitylog.Append(a.dir(), entries...); err != nil {
		logger.Get().Warnw("failed to write activity log", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write activity log: %v\n", err)
	}
	if a.cfg.Git.AutoCommit && gitops.IsRepo(a.dir()) {
		hash, err := gitops.Commit(a.dir(), commitMessage(command, entries), author(a.cfg))
		if err != nil && !errors.Is(err, gitops.ErrNoChanges) {
			return fmt.Errorf("committing changes: %w", err)
		}
		logger.Get().Debugw("changes committed", "hash", hash)
	}
	return nil
}

// commitMessage summarizes a command's activity entries, e.g.
// "expense: post_transaction 0190...".
func commitMessage(command string, entries []activitylog.Entry) string {
	if len(entries) == 0 {
		return command
	}
	msg := command + ": " + entries[0].Action
	if entries[0].Subject != "" {
		msg += " " + entries[0].Subject
	}
	if len(entries) > 1 {
		msg += fmt.Sprintf(" (+%d more)", len(entries)-1)
	}
	return msg
}

func author(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}

func (a *app) today() time.Time {
	return calendar.Normalize(a.now())
}

// dateFlag parses a YYYY-MM-DD flag value, defaulting to today.
func (a *app) dateFlag(s string) (time.Time, error) {
	if s == "" {
		return a.today(), nil
	}
	return calendar.Parse(s)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer logger.Sync()
	if err := NewRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}
