// Package config loads service configuration from the environment, with an
// optional YAML file overriding the investment profiles and the commission
// schedule.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/chris/referral-investments/pkg/commission"
	"github.com/chris/referral-investments/pkg/exchange"
	"github.com/chris/referral-investments/pkg/investment"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Tables names the DynamoDB tables.
type Tables struct {
	Wallets     string `env:"WALLETS_TABLE_NAME" envDefault:"wallets"`
	Ledger      string `env:"LEDGER_TABLE_NAME" envDefault:"ledger"`
	Investments string `env:"INVESTMENTS_TABLE_NAME" envDefault:"investments"`
	Commissions string `env:"COMMISSIONS_TABLE_NAME" envDefault:"commissions"`
	Accounts    string `env:"ACCOUNTS_TABLE_NAME" envDefault:"accounts"`
	Approvals   string `env:"APPROVALS_TABLE_NAME" envDefault:"approvals"`
}

// Config holds every setting read from the environment.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	Backend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	Tables  Tables `envPrefix:"DYNAMODB_"`

	SQSQueueURL   string        `env:"SQS_QUEUE_URL"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	RateLimit float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"2"`
	RateBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	MaturitySweepCron  string `env:"MATURITY_SWEEP_CRON" envDefault:"@every 1h"`
	ReconcileCron      string `env:"RECONCILE_CRON" envDefault:"@every 5m"`
	ReconcileBatchSize int32  `env:"RECONCILE_BATCH_SIZE" envDefault:"100"`
	// ReconcileStaleAfter is how long a commission credit may stay PENDING
	// before reconciliation retries it.
	ReconcileStaleAfter time.Duration `env:"RECONCILE_STALE_AFTER" envDefault:"10m"`

	ExchangeRates   []string `env:"EXCHANGE_RATES" envSeparator:"," envDefault:"USD:1"`
	CommissionRates []string `env:"COMMISSION_RATES" envSeparator:","`
	OverridesFile   string   `env:"OVERRIDES_FILE"`
	ReturnSeed      uint64   `env:"RETURN_POLICY_SEED"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that env tags cannot express.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	if c.ReconcileBatchSize <= 0 {
		return errors.New("reconcile batch size must be positive")
	}
	if c.ReconcileStaleAfter <= 0 {
		return errors.New("reconcile stale-after must be positive")
	}
	return nil
}

// overrides is the YAML overrides document.
type overrides struct {
	Profiles        []investment.Profile `yaml:"profiles"`
	CommissionRates []string             `yaml:"commission_rates"`
}

// Domain returns the investment catalog and commission schedule. Defaults are
// replaced by COMMISSION_RATES and then by the overrides file.
func (c *Config) Domain() (*investment.Catalog, commission.Schedule, error) {
	catalog := investment.DefaultCatalog()
	schedule := commission.DefaultSchedule()

	if len(c.CommissionRates) > 0 {
		s, err := commission.ParseSchedule(c.CommissionRates)
		if err != nil {
			return nil, commission.Schedule{}, err
		}
		schedule = s
	}

	if c.OverridesFile == "" {
		return catalog, schedule, nil
	}

	raw, err := os.ReadFile(c.OverridesFile)
	if err != nil {
		return nil, commission.Schedule{}, fmt.Errorf("failed to read overrides file: %w", err)
	}
	var doc overrides
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, commission.Schedule{}, fmt.Errorf("failed to decode overrides file: %w", err)
	}
	if len(doc.Profiles) > 0 {
		if catalog, err = investment.LoadCatalog(bytes.NewReader(raw)); err != nil {
			return nil, commission.Schedule{}, err
		}
	}
	if len(doc.CommissionRates) > 0 {
		if schedule, err = commission.ParseSchedule(doc.CommissionRates); err != nil {
			return nil, commission.Schedule{}, err
		}
	}
	return catalog, schedule, nil
}

// Exchange builds the static exchange-rate provider.
func (c *Config) Exchange() (*exchange.Static, error) {
	rates, err := exchange.ParseRates(c.ExchangeRates)
	if err != nil {
		return nil, err
	}
	return exchange.NewStatic(rates)
}
