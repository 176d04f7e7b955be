package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetsync-dev/budgetsync/internal/model"
)

const sampleConfig = `
import:
  start: 2024-01-01T00:00:00Z
  end: 2024-02-01T00:00:00Z
  delay_seconds: 5
  remove_cancelled_statements: true
  merge_transfer_statements: true
  remember_last_import_timestamp: true
  state_file: last_import
budget:
  token: ${BUDGET_TOKEN}
  budget_name: Family
sources:
  - bank: mono
    token: ${MONO_TOKEN}
    retries: 3
    accounts:
      - enabled: true
        name: Mono Black
        iban: UA11111111
        transfer_payees: ["^Зі своєї карти"]
      - enabled: false
        name: Mono White
        iban: UA22222222
  - bank: pumb
    accounts:
      - enabled: true
        name: PUMB Salary
        iban: UA33333333
categories:
  - category: {group: Everyday, name: Groceries}
    mcc: [5411, 5499]
    payees: ["АТБ", "Сільпо"]
  - category: {group: Everyday, name: Transport}
    mcc: [4111]
payees:
  - alias: ATB
    patterns: ["АТБ.*"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budgetsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("BUDGET_TOKEN", "budget-secret")
	t.Setenv("MONO_TOKEN", "mono-secret")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Import.DelaySeconds)
	assert.True(t, cfg.Import.RemoveCancelled)
	assert.True(t, cfg.Import.MergeTransfers)
	assert.True(t, cfg.Import.RememberLast)
	assert.Equal(t, "last_import", cfg.Import.StateFile)
	assert.Equal(t, "budget-secret", cfg.Budget.Token)
	assert.Equal(t, "Family", cfg.Budget.BudgetName)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "mono", cfg.Sources[0].Bank)
	assert.Equal(t, "mono-secret", cfg.Sources[0].Token)
	assert.Equal(t, 3, cfg.Sources[0].Retries)
	require.Len(t, cfg.Sources[0].Accounts, 2)
	assert.True(t, cfg.Sources[0].Accounts[0].Enabled)
	assert.False(t, cfg.Sources[0].Accounts[1].Enabled)

	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, []int{5411, 5499}, cfg.Categories[0].MCC)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_CategoryNeedsGroupAndName(t *testing.T) {
	cfg := &Config{
		Budget:  BudgetSettings{Token: "x", BudgetName: "Family"},
		Sources: []SourceSettings{{Bank: "mono"}},
		Categories: []CategoryRule{
			{Category: CategorySettings{Name: "Groceries"}, MCC: []int{5411}},
		},
	}

	err := cfg.Validate()
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "categories[0].category", ce.Field)
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "missing budget name",
			cfg:   Config{Budget: BudgetSettings{Token: "x"}},
			field: "budget.budget_name",
		},
		{
			name:  "missing budget token",
			cfg:   Config{Budget: BudgetSettings{BudgetName: "Family"}},
			field: "budget.token",
		},
		{
			name:  "no sources",
			cfg:   Config{Budget: BudgetSettings{Token: "x", BudgetName: "Family"}},
			field: "sources",
		},
		{
			name: "account without iban",
			cfg: Config{
				Budget: BudgetSettings{Token: "x", BudgetName: "Family"},
				Sources: []SourceSettings{{
					Bank:     "mono",
					Accounts: []AccountSettings{{Name: "Mono Black"}},
				}},
			},
			field: "sources[0].accounts[0]",
		},
		{
			name: "payee rule without alias",
			cfg: Config{
				Budget:  BudgetSettings{Token: "x", BudgetName: "Family"},
				Sources: []SourceSettings{{Bank: "mono"}},
				Payees:  []PayeeRule{{Patterns: []string{".*"}}},
			},
			field: "payees[0].alias",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestAccountList_SharesPointers(t *testing.T) {
	src := SourceSettings{
		Bank: "mono",
		Accounts: []AccountSettings{
			{Enabled: true, Name: "Mono Black", IBAN: "UA11", TransferPayees: []string{"^Зі своєї"}},
			{Enabled: false, Name: "Mono White", IBAN: "UA22"},
		},
	}

	accounts := src.AccountList()
	require.Len(t, accounts, 2)
	assert.Equal(t, "Mono Black", accounts[0].Name)
	assert.True(t, accounts[0].Enabled)
	assert.Equal(t, []string{"^Зі своєї"}, accounts[0].TransferPayees)
	assert.False(t, accounts[1].Enabled)
}

func TestMappings_Compiles(t *testing.T) {
	cfg := &Config{
		Categories: []CategoryRule{
			{Category: CategorySettings{Group: "Everyday", Name: "Groceries"}, MCC: []int{5411}, Payees: []string{"АТБ"}},
		},
		Payees: []PayeeRule{{Alias: "ATB", Patterns: []string{"АТБ.*"}}},
	}
	black := &model.Account{Name: "Mono Black", IBAN: "UA11", TransferPayees: []string{"Зі своєї карти.*"}}
	white := &model.Account{Name: "Mono White", IBAN: "UA22"}

	m, err := cfg.Mappings([]*model.Account{black, white})
	require.NoError(t, err)

	fields := m.Resolve(model.Transaction{
		Account:     white,
		Description: "Зі своєї карти 11",
		Amount:      10000,
	})
	assert.Equal(t, black, fields.TransferAccount)

	fields = m.Resolve(model.Transaction{
		Account:     white,
		Description: "АТБ маркет",
		Amount:      -5000,
	})
	assert.Equal(t, "ATB", fields.Payee)
	require.NotNil(t, fields.Category)
	assert.Equal(t, "Groceries", fields.Category.Name)
}

func TestMappings_BadPattern(t *testing.T) {
	cfg := &Config{
		Payees: []PayeeRule{{Alias: "Broken", Patterns: []string{"("}}},
	}

	_, err := cfg.Mappings(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payee alias")
}
