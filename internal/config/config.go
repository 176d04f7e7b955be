// Package config loads and validates the budgetsync.yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/budgetsync-dev/budgetsync/internal/mapping"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// Config represents the top-level budgetsync.yaml configuration.
type Config struct {
	Import     ImportSettings   `yaml:"import"`
	Budget     BudgetSettings   `yaml:"budget"`
	Sources    []SourceSettings `yaml:"sources"`
	Categories []CategoryRule   `yaml:"categories,omitempty"`
	Payees     []PayeeRule      `yaml:"payees,omitempty"`
}

// ImportSettings controls the import window and the pipeline toggles.
type ImportSettings struct {
	Start           time.Time `yaml:"start"`
	End             time.Time `yaml:"end"`
	DelaySeconds    int       `yaml:"delay_seconds"`
	RemoveCancelled bool      `yaml:"remove_cancelled_statements"`
	MergeTransfers  bool      `yaml:"merge_transfer_statements"`
	RememberLast    bool      `yaml:"remember_last_import_timestamp"`
	StateFile       string    `yaml:"state_file"`
}

// BudgetSettings identifies the budgeting service budget to upload into.
type BudgetSettings struct {
	Token      string `yaml:"token"`
	BudgetName string `yaml:"budget_name"`
}

// SourceSettings configures one statement source and its accounts.
type SourceSettings struct {
	Bank     string            `yaml:"bank"`
	Token    string            `yaml:"token,omitempty"`
	Retries  int               `yaml:"retries,omitempty"`
	Accounts []AccountSettings `yaml:"accounts"`
}

// AccountSettings describes one bank account within a source.
type AccountSettings struct {
	Enabled        bool     `yaml:"enabled"`
	Name           string   `yaml:"name"`
	IBAN           string   `yaml:"iban"`
	TransferPayees []string `yaml:"transfer_payees,omitempty"`
}

// CategoryRule assigns a category by merchant code or payee pattern.
type CategoryRule struct {
	Category CategorySettings `yaml:"category"`
	MCC      []int            `yaml:"mcc,omitempty"`
	Payees   []string         `yaml:"payees,omitempty"`
}

// CategorySettings names a category within its group.
type CategorySettings struct {
	Group string `yaml:"group"`
	Name  string `yaml:"name"`
}

// PayeeRule rewrites raw statement descriptions into a payee alias.
type PayeeRule struct {
	Alias    string   `yaml:"alias"`
	Patterns []string `yaml:"patterns"`
}

// ConfigurationError reports an invalid or incomplete configuration entry.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Load reads a budgetsync.yaml file from disk, expands ${VAR} references
// in the tokens, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Budget.Token = os.ExpandEnv(cfg.Budget.Token)
	for i := range cfg.Sources {
		cfg.Sources[i].Token = os.ExpandEnv(cfg.Sources[i].Token)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for mistakes that would otherwise
// surface mid-run, after some transactions were already uploaded.
func (c *Config) Validate() error {
	if c.Budget.BudgetName == "" {
		return &ConfigurationError{Field: "budget.budget_name", Reason: "must be set"}
	}
	if c.Budget.Token == "" {
		return &ConfigurationError{Field: "budget.token", Reason: "must be set"}
	}
	if len(c.Sources) == 0 {
		return &ConfigurationError{Field: "sources", Reason: "at least one source is required"}
	}
	for i, s := range c.Sources {
		if s.Bank == "" {
			return &ConfigurationError{
				Field:  fmt.Sprintf("sources[%d].bank", i),
				Reason: "must be set",
			}
		}
		for j, a := range s.Accounts {
			if a.Name == "" || a.IBAN == "" {
				return &ConfigurationError{
					Field:  fmt.Sprintf("sources[%d].accounts[%d]", i, j),
					Reason: "name and iban must both be set",
				}
			}
		}
	}
	for i, r := range c.Categories {
		if r.Category.Group == "" || r.Category.Name == "" {
			return &ConfigurationError{
				Field:  fmt.Sprintf("categories[%d].category", i),
				Reason: "group and name must both be set",
			}
		}
	}
	for i, r := range c.Payees {
		if r.Alias == "" {
			return &ConfigurationError{
				Field:  fmt.Sprintf("payees[%d].alias", i),
				Reason: "must be set",
			}
		}
	}
	return nil
}

// AccountList builds the shared account set for one source. Accounts are
// shared by pointer so the same instance flows through parsing, mapping
// and filtering.
func (s *SourceSettings) AccountList() []*model.Account {
	accounts := make([]*model.Account, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		accounts = append(accounts, &model.Account{
			Enabled:        a.Enabled,
			Name:           a.Name,
			IBAN:           a.IBAN,
			TransferPayees: a.TransferPayees,
		})
	}
	return accounts
}

// Mappings compiles the category and payee rules, plus the per-account
// transfer payee patterns, into the lookup tables used during assembly.
// Malformed patterns fail here, before any statement is fetched.
func (c *Config) Mappings(accounts []*model.Account) (*mapping.Mappings, error) {
	var transferRules []mapping.Rule[*model.Account]
	for _, a := range accounts {
		if len(a.TransferPayees) == 0 {
			continue
		}
		transferRules = append(transferRules, mapping.Rule[*model.Account]{
			Patterns: a.TransferPayees,
			Value:    a,
		})
	}
	byTransferPayee, err := mapping.Compile(transferRules)
	if err != nil {
		return nil, fmt.Errorf("compiling transfer payee patterns: %w", err)
	}

	var categoryRules []mapping.Rule[model.Category]
	byMCC := make(map[int]model.Category)
	for _, r := range c.Categories {
		category := model.Category{Group: r.Category.Group, Name: r.Category.Name}
		for _, mcc := range r.MCC {
			byMCC[mcc] = category
		}
		if len(r.Payees) > 0 {
			categoryRules = append(categoryRules, mapping.Rule[model.Category]{
				Patterns: r.Payees,
				Value:    category,
			})
		}
	}
	byPayee, err := mapping.Compile(categoryRules)
	if err != nil {
		return nil, fmt.Errorf("compiling category payee patterns: %w", err)
	}

	var payeeRules []mapping.Rule[string]
	for _, r := range c.Payees {
		payeeRules = append(payeeRules, mapping.Rule[string]{
			Patterns: r.Patterns,
			Value:    r.Alias,
		})
	}
	aliases, err := mapping.Compile(payeeRules)
	if err != nil {
		return nil, fmt.Errorf("compiling payee alias patterns: %w", err)
	}

	return &mapping.Mappings{
		AccountByTransferPayee: byTransferPayee,
		CategoryByPayee:        byPayee,
		CategoryByMCC:          byMCC,
		PayeeAlias:             aliases,
	}, nil
}
