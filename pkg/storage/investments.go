package storage

import (
	"context"
	"time"

	"github.com/chris/referral-investments/pkg/models"
)

// InvestmentReader defines the interface for reading investment data.
type InvestmentReader interface {
	// GetInvestment retrieves an investment by its ID.
	GetInvestment(ctx context.Context, investmentID string) (*models.Investment, error)

	// ListInvestmentsByOwner retrieves all investments for a specific account.
	ListInvestmentsByOwner(ctx context.Context, ownerID string) ([]models.Investment, error)

	// ListDueInvestments retrieves ACTIVE investments whose maturity date is not after now.
	ListDueInvestments(ctx context.Context, now time.Time) ([]models.Investment, error)
}

// InvestmentManager defines the interface for creating and transitioning investments.
type InvestmentManager interface {
	// CreateInvestment stores a new investment.
	CreateInvestment(ctx context.Context, inv *models.Investment) error

	// UpdateInvestment replaces the stored investment only if its stored status
	// still equals expected. Otherwise it fails with models.ErrInvalidTransition.
	UpdateInvestment(ctx context.Context, inv *models.Investment, expected models.InvestmentStatus) error
}

// InvestmentStore combines the reader and manager interfaces.
type InvestmentStore interface {
	InvestmentReader
	InvestmentManager
}
