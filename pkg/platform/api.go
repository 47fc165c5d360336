package platform

import (
	"context"

	"github.com/chris/referral-investments/pkg/commission"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// Accounts covers registration, KYC and the caller's view of the hierarchy.
type Accounts interface {
	CreateRoot(ctx context.Context) (*models.Account, error)
	RegisterAccount(ctx context.Context, referralCode string) (*models.Account, *models.ApprovalRequest, error)
	Account(ctx context.Context, accountID string) (*models.Account, error)
	RequestKYC(ctx context.Context, accountID, documentRef string) (*models.ApprovalRequest, error)
	Subtree(ctx context.Context, callerID string, maxDepth int) (*hierarchy.Node, error)
	SearchByReferralCode(ctx context.Context, callerID, code string) (*hierarchy.Node, []string, error)
}

// Investments covers the investment lifecycle as seen by its owner.
type Investments interface {
	RequestInvestment(ctx context.Context, ownerID string, profile models.InvestmentProfile, amount decimal.Decimal, lockInMonths int) (*models.Investment, *models.ApprovalRequest, error)
	GetInvestment(ctx context.Context, callerID, investmentID string) (*models.Investment, error)
	ListInvestments(ctx context.Context, ownerID string) ([]models.Investment, error)
	RequestWithdrawal(ctx context.Context, callerID, investmentID string) (*models.ApprovalRequest, error)
}

// Approvals covers the approval queue.
type Approvals interface {
	GetRequest(ctx context.Context, callerID, requestID string) (*models.ApprovalRequest, error)
	ListPending(ctx context.Context, authorityID string, t models.ApprovalType) ([]models.ApprovalRequest, error)
	CountPending(ctx context.Context, authorityID string, t models.ApprovalType) (int, error)
	Decide(ctx context.Context, requestID, deciderID string, outcome models.Outcome) (*models.ApprovalRequest, error)
	CancelRequest(ctx context.Context, requestID, requesterID string) (*models.ApprovalRequest, error)
}

// Funds covers balances, wallet history, commissions and fund movements
// between accounts.
type Funds interface {
	Balance(ctx context.Context, accountID string) (models.Balance, error)
	LedgerEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error)
	Commissions(ctx context.Context, accountID string) ([]models.CommissionCredit, error)
	RequestBorrow(ctx context.Context, requesterID string, amount decimal.Decimal, note string) (*models.ApprovalRequest, error)
	RequestTransfer(ctx context.Context, requesterID, toAccountID string, amount decimal.Decimal) (*models.ApprovalRequest, error)
}

// Jobs are the periodic maintenance operations.
type Jobs interface {
	SweepMatured(ctx context.Context) (int, error)
	Reconcile(ctx context.Context, limit int32) (commission.ReconcileResult, error)
}

// API defines the root interface for the whole platform. Handlers should
// depend on the narrower interfaces instead of this one.
type API interface {
	Accounts
	Investments
	Approvals
	Funds
	Jobs
}
