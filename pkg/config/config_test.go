package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Parse()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, BackendMemory, cfg.Backend)
		assert.Equal(t, "wallets", cfg.Tables.Wallets)
		assert.Equal(t, "accounts", cfg.Tables.Accounts)
		assert.Equal(t, "approvals", cfg.Tables.Approvals)
		assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
		assert.Equal(t, 10*time.Minute, cfg.ReconcileStaleAfter)
		assert.Equal(t, []string{"USD:1"}, cfg.ExchangeRates)
	})

	t.Run("From Environment", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "dynamodb")
		t.Setenv("DYNAMODB_COMMISSIONS_TABLE_NAME", "prod-commissions")
		t.Setenv("COMMISSION_RATES", "0.10,0.05")
		t.Setenv("RECONCILE_BATCH_SIZE", "25")
		t.Setenv("RECONCILE_STALE_AFTER", "30m")
		t.Setenv("DYNAMODB_APPROVALS_TABLE_NAME", "prod-approvals")

		cfg, err := Parse()

		require.NoError(t, err)
		assert.Equal(t, BackendDynamoDB, cfg.Backend)
		assert.Equal(t, "prod-commissions", cfg.Tables.Commissions)
		assert.Equal(t, []string{"0.10", "0.05"}, cfg.CommissionRates)
		assert.Equal(t, int32(25), cfg.ReconcileBatchSize)
		assert.Equal(t, 30*time.Minute, cfg.ReconcileStaleAfter)
		assert.Equal(t, "prod-approvals", cfg.Tables.Approvals)
	})

	t.Run("Non-positive Stale After", func(t *testing.T) {
		t.Setenv("RECONCILE_STALE_AFTER", "0s")

		_, err := Parse()

		assert.Error(t, err)
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "postgres")

		_, err := Parse()

		assert.Error(t, err)
	})
}

func TestDomain(t *testing.T) {
	t.Run("Reference Defaults", func(t *testing.T) {
		cfg := &Config{}

		catalog, schedule, err := cfg.Domain()

		require.NoError(t, err)
		assert.Len(t, catalog.Profiles(), 4)
		assert.Equal(t, 3, schedule.Depth())
	})

	t.Run("Overrides File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - name: BRONZE
    min_amount: 50
    bands:
      1: {min: 0.02, max: 0.03}
commission_rates: ["0.04", "0.02"]
`), 0o600))
		cfg := &Config{OverridesFile: path, CommissionRates: []string{"0.2"}}

		catalog, schedule, err := cfg.Domain()

		require.NoError(t, err)
		require.Len(t, catalog.Profiles(), 1)
		band, err := catalog.Band(models.BRONZE, decimal.NewFromInt(60), 1)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.03").Equal(band.Max))
		assert.Equal(t, 2, schedule.Depth())
		assert.True(t, decimal.RequireFromString("0.04").Equal(schedule.Rate(1)))
	})

	t.Run("Missing File", func(t *testing.T) {
		cfg := &Config{OverridesFile: filepath.Join(t.TempDir(), "absent.yaml")}

		_, _, err := cfg.Domain()

		assert.Error(t, err)
	})
}

func TestExchange(t *testing.T) {
	cfg := &Config{ExchangeRates: []string{"USD:1", "EUR:0.9"}}

	provider, err := cfg.Exchange()

	require.NoError(t, err)
	assert.Equal(t, []string{"EUR", "USD"}, provider.Codes())
}
