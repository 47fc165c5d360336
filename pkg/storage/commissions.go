package storage

import (
	"context"
	"time"

	"github.com/chris/referral-investments/pkg/models"
)

// CommissionReader defines the interface for reading commission credits.
type CommissionReader interface {
	// ListCreditsByInvestment retrieves every credit issued for an investment.
	ListCreditsByInvestment(ctx context.Context, investmentID string) ([]models.CommissionCredit, error)

	// ListCreditsByRecipient retrieves every credit paid (or owed) to an account.
	ListCreditsByRecipient(ctx context.Context, recipientID string) ([]models.CommissionCredit, error)
}

// CommissionWriter defines the interface for recording commission credits.
type CommissionWriter interface {
	// CreateCredit records a new credit. It fails with models.ErrAlreadyExists
	// when a credit for the same investment and recipient is already recorded.
	CreateCredit(ctx context.Context, credit *models.CommissionCredit) error

	// UpdateCredit replaces the stored credit only if its stored status still
	// equals expected. Otherwise it fails with models.ErrInvalidTransition.
	UpdateCredit(ctx context.Context, credit *models.CommissionCredit, expected models.CreditStatus) error
}

// ReconciliationStore is the narrow interface needed to repair failed credits.
// It should only be exposed to the reconciliation job.
type ReconciliationStore interface {
	// ListFailedCredits retrieves up to limit credits in the FAILED state.
	ListFailedCredits(ctx context.Context, limit int32) ([]models.CommissionCredit, error)

	// ListStaleCredits retrieves up to limit PENDING credits created before
	// cutoff, oldest first. A PENDING credit is never updated in place, so its
	// creation time is also its last update.
	ListStaleCredits(ctx context.Context, cutoff time.Time, limit int32) ([]models.CommissionCredit, error)

	CommissionWriter
}

// CommissionStore combines every commission interface.
type CommissionStore interface {
	CommissionReader
	ReconciliationStore
}
