// Package api holds the HTTP wire types, the chi server wrapper that binds
// path and query parameters, and the response envelope.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalType is the wire form of models.ApprovalType.
type ApprovalType string

// Account is a member of the referral hierarchy.
type Account struct {
	Id           string    `json:"id"`
	ReferralCode string    `json:"referral_code"`
	ParentId     *string   `json:"parent_id,omitempty"`
	Status       string    `json:"status"`
	KycVerified  bool      `json:"kyc_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRegistration is the body of POST /registrations.
type NewRegistration struct {
	ReferralCode string `json:"referral_code"`
}

// Registration is a new PENDING account and the request admitting it.
type Registration struct {
	Account Account         `json:"account"`
	Request ApprovalRequest `json:"request"`
}

// NewKYC is the body of POST /kyc.
type NewKYC struct {
	DocumentRef string `json:"document_ref"`
}

// HierarchyNode is a node of the caller's downline.
type HierarchyNode struct {
	Account                 Account         `json:"account"`
	DirectReferralCount     int             `json:"direct_referral_count"`
	TotalDownlineCount      int             `json:"total_downline_count"`
	TotalDownlineInvestment decimal.Decimal `json:"total_downline_investment"`
	Children                []HierarchyNode `json:"children,omitempty"`
}

// SearchResult is a downline match and the path of account ids leading to it.
type SearchResult struct {
	Node HierarchyNode `json:"node"`
	Path []string      `json:"path"`
}

// NewInvestment is the body of POST /investments.
type NewInvestment struct {
	Profile      string          `json:"profile"`
	Amount       decimal.Decimal `json:"amount"`
	LockInMonths int             `json:"lock_in_months"`
}

// Investment is the wire form of an investment.
type Investment struct {
	Id            string           `json:"id"`
	OwnerId       string           `json:"owner_id"`
	Profile       string           `json:"profile"`
	Amount        decimal.Decimal  `json:"amount"`
	LockInMonths  int              `json:"lock_in_months"`
	MinReturnRate decimal.Decimal  `json:"min_return_rate"`
	MaxReturnRate decimal.Decimal  `json:"max_return_rate"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	ActivatedAt   *time.Time       `json:"activated_at,omitempty"`
	MaturityDate  *time.Time       `json:"maturity_date,omitempty"`
	RealizedRate  *decimal.Decimal `json:"realized_rate,omitempty"`
	PayableReturn *decimal.Decimal `json:"payable_return,omitempty"`
}

// InvestmentRequest is a new investment and the request gating it.
type InvestmentRequest struct {
	Investment Investment      `json:"investment"`
	Request    ApprovalRequest `json:"request"`
}

// ApprovalRequest is the wire form of an approval request. Payload carries the
// type-specific body.
type ApprovalRequest struct {
	Id          string       `json:"id"`
	Type        ApprovalType `json:"type"`
	Status      string       `json:"status"`
	RequesterId string       `json:"requester_id"`
	AuthorityId string       `json:"authority_id"`
	Payload     any          `json:"payload"`
	CreatedAt   time.Time    `json:"created_at"`
	DecidedAt   *time.Time   `json:"decided_at,omitempty"`
}

// Decision is the body of POST /approvals/{requestId}/decision.
type Decision struct {
	Outcome string `json:"outcome"`
}

// PendingCount is the response of GET /approvals/count.
type PendingCount struct {
	Type  ApprovalType `json:"type"`
	Count int          `json:"count"`
}

// Wallet is the caller's balance view.
type Wallet struct {
	AccountId string          `json:"account_id"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Earnings  decimal.Decimal `json:"earnings"`
}

// LedgerEntry is one wallet mutation.
type LedgerEntry struct {
	EntryId     string          `json:"entry_id"`
	Reference   string          `json:"reference,omitempty"`
	AccountId   string          `json:"account_id"`
	Reason      string          `json:"reason"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// CommissionCredit is one commission payment to the caller.
type CommissionCredit struct {
	Id                 string          `json:"id"`
	SourceInvestmentId string          `json:"source_investment_id"`
	Level              int             `json:"level"`
	Rate               decimal.Decimal `json:"rate"`
	Amount             decimal.Decimal `json:"amount"`
	Status             string          `json:"status"`
	Attempts           int             `json:"attempts"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewBorrowRequest is the body of POST /borrow-requests.
type NewBorrowRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// NewTransfer is the body of POST /transfers.
type NewTransfer struct {
	ToAccountId string          `json:"to_account_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExchangeRate is the number of currency units per credit unit.
type ExchangeRate struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// GetSubtreeParams defines parameters for GetSubtree.
type GetSubtreeParams struct {
	// Depth limits the levels returned below the caller. Omitted means all.
	Depth *int `form:"depth,omitempty" json:"depth,omitempty"`
}

// SearchHierarchyParams defines parameters for SearchHierarchy.
type SearchHierarchyParams struct {
	Code string `form:"code" json:"code"`
}

// ListApprovalsParams defines parameters for ListApprovals.
type ListApprovalsParams struct {
	Type *ApprovalType `form:"type,omitempty" json:"type,omitempty"`
}

// CountApprovalsParams defines parameters for CountApprovals.
type CountApprovalsParams struct {
	Type ApprovalType `form:"type" json:"type"`
}

// ListLedgerEntriesParams defines parameters for ListLedgerEntries.
type ListLedgerEntriesParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
