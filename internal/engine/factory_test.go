package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetsync-dev/budgetsync/internal/model"
)

func TestNew_BuildsEverySupportedBank(t *testing.T) {
	accounts := []*model.Account{{Enabled: true, Name: "A", IBAN: "UA1"}}
	banks := []Bank{BankMono, BankPUMB, BankSense, BankABank, BankPrivat, BankMillennium}

	for _, bank := range banks {
		src, err := New(bank, Options{
			Token:          t.TempDir(),
			Retries:        3,
			Accounts:       accounts,
			RatesCachePath: filepath.Join(t.TempDir(), "rates.json"),
		})
		require.NoError(t, err, "bank: %s", bank)
		assert.NotNil(t, src, "bank: %s", bank)
	}
}

func TestNew_RejectsUnknownBank(t *testing.T) {
	_, err := New(Bank("swift"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown bank "swift"`)
}
