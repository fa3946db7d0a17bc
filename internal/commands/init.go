package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/gitops"
	"github.com/cleared-dev/fincore/internal/logger"
)

func newInitCommand(a *app) *cobra.Command {
	var name string
	var code string
	var profile string
	var git bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new fincore project in the project directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			absDir, err := filepath.Abs(a.dir())
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return a.runInit(cmd, absDir, name, code, profile, git)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&code, "currency", currency.Default, "base currency (ISO 4217)")
	cmd.Flags().StringVar(&profile, "profile", "personal", "starter chart of accounts (personal, minimal)")
	cmd.Flags().BoolVar(&git, "git", false, "version the project in git and commit after every change")

	return cmd
}

func (a *app) runInit(cmd *cobra.Command, dir, name, code, profile string, git bool) error {
	code = currency.Normalize(code)
	if !currency.Valid(code) {
		return fmt.Errorf("unknown currency %q", code)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfg := config.Default(name, code)
	cfg.Project.Profile = profile
	cfg.Git.AutoCommit = git
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.DefaultChart(profile, code)
	if err := a.store().Init(chart); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	if err := activitylog.Append(dir, activitylog.Entry{
		Timestamp: a.now().UTC(),
		Command:   "init",
		Action:    "init_project",
		Details:   fmt.Sprintf("%s, %s, %d accounts", name, code, len(chart)),
	}); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}

	logger.Get().Debugw("project initialized", "dir", dir, "currency", code, "accounts", len(chart))
	msg := fmt.Sprintf("Initialized fincore project %q at %s (%s, %d accounts)", name, dir, code, len(chart))

	if git {
		if err := gitops.Init(dir); err != nil {
			return err
		}
		hash, err := gitops.Commit(dir, "init: "+name, author(cfg))
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		msg += " [" + hash + "]"
	}
	success(cmd.OutOrStdout(), "%s", msg)
	return nil
}
