package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// FileName is the config file at a project root.
const FileName = "fincore.yaml"

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid config")

// Config represents the top-level fincore.yaml configuration.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Accounts   AccountsConfig   `yaml:"accounts"`
	Loans      LoansConfig      `yaml:"loans"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Logging    LoggingConfig    `yaml:"logging"`
	Git        GitConfig        `yaml:"git"`
}

// ProjectConfig identifies the book.
type ProjectConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"` // ISO 4217 base currency
	Profile  string `yaml:"profile"`  // starter chart: personal or minimal
}

// AccountsConfig names the accounts commands post to by default.
type AccountsConfig struct {
	OpeningBalanceEquity string `yaml:"opening_balance_equity"`
}

// LoansConfig holds defaults for new loans.
type LoansConfig struct {
	Frequency    model.PaymentFrequency `yaml:"frequency"`
	Amortization model.AmortizationType `yaml:"amortization"`
}

// RecurrenceConfig controls how far ahead recurring templates are listed.
type RecurrenceConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// LoggingConfig is overridden by the --log-level and --log-format flags.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// GitConfig controls versioning the project in git.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a fincore.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(name, code string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:     name,
			Currency: currency.Normalize(code),
			Profile:  "personal",
		},
		Accounts: AccountsConfig{
			OpeningBalanceEquity: "opening-balance-equity",
		},
		Loans: LoansConfig{
			Frequency:    model.PayMonthly,
			Amortization: model.AmortizationFrench,
		},
		Recurrence: RecurrenceConfig{
			HorizonDays: 90,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AuthorName:  "fincore",
			AuthorEmail: "fincore@localhost",
		},
	}
}

// Validate checks the values commands depend on.
func (c *Config) Validate() error {
	var problems []error
	if !currency.Valid(c.Project.Currency) {
		problems = append(problems, fmt.Errorf("project.currency %q is not a known currency", c.Project.Currency))
	}
	if c.Loans.Frequency != "" && !c.Loans.Frequency.Valid() {
		problems = append(problems, fmt.Errorf("loans.frequency %q is not a payment frequency", c.Loans.Frequency))
	}
	if c.Loans.Amortization != "" && !c.Loans.Amortization.Valid() {
		problems = append(problems, fmt.Errorf("loans.amortization %q is not an amortization type", c.Loans.Amortization))
	}
	if c.Recurrence.HorizonDays < 0 {
		problems = append(problems, fmt.Errorf("recurrence.horizon_days must not be negative, got %d", c.Recurrence.HorizonDays))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		problems = append(problems, errors.New("git.author_name and git.author_email are required with git.auto_commit"))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
	}
	return nil
}
