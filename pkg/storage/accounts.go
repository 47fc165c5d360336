package storage

import (
	"context"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// AccountRecord is the durable form of a hierarchy node. Link counts and
// downline aggregates are derived from the records on load and never stored.
type AccountRecord struct {
	Account models.Account
	// OwnInvestment is the principal the account has put into activated
	// investments.
	OwnInvestment decimal.Decimal
	// AttachedAt orders an account among its siblings.
	AttachedAt *time.Time
	// Version starts at 1 and grows by one with every update.
	Version int64
}

// AccountStore persists the referral hierarchy.
type AccountStore interface {
	// CreateAccount stores a new account. It fails with models.ErrAlreadyExists
	// when the id is taken.
	CreateAccount(ctx context.Context, rec AccountRecord) error

	// UpdateAccount replaces the stored account only if its stored version is
	// rec.Version-1. Otherwise it fails with models.ErrVersionConflict.
	UpdateAccount(ctx context.Context, rec AccountRecord) error

	// ListAccounts retrieves every stored account.
	ListAccounts(ctx context.Context) ([]AccountRecord, error)
}
