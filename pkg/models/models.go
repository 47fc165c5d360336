package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus defines the possible states of an account.
type AccountStatus string

const (
	AccountPending   AccountStatus = "PENDING"
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// Account is a member of the referral hierarchy.
type Account struct {
	Id           string        `json:"id"`
	ReferralCode string        `json:"referral_code"`
	ParentId     string        `json:"parent_id,omitempty"`
	Status       AccountStatus `json:"status"`
	KYCVerified  bool          `json:"kyc_verified"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentId == ""
}

// InvestmentProfile is an investment tier. Profiles are ordered by ascending
// minimum amount and return ceiling.
type InvestmentProfile string

const (
	BRONZE  InvestmentProfile = "BRONZE"
	SILVER  InvestmentProfile = "SILVER"
	GOLD    InvestmentProfile = "GOLD"
	DIAMOND InvestmentProfile = "DIAMOND"
)

// Profiles lists every profile in ascending order. Append only.
var Profiles = []InvestmentProfile{BRONZE, SILVER, GOLD, DIAMOND}

// InvestmentStatus defines the possible states of an investment.
type InvestmentStatus string

const (
	PENDING_APPROVAL InvestmentStatus = "PENDING_APPROVAL"
	ACTIVE           InvestmentStatus = "ACTIVE"
	MATURED          InvestmentStatus = "MATURED"
	WITHDRAWN        InvestmentStatus = "WITHDRAWN"
	CANCELLED        InvestmentStatus = "CANCELLED"
)

// Investment represents the internal domain model for an investment.
type Investment struct {
	Id            string            `json:"id"`
	OwnerId       string            `json:"owner_id"`
	Profile       InvestmentProfile `json:"profile"`
	Amount        decimal.Decimal   `json:"amount"`
	LockInMonths  int               `json:"lock_in_months"`
	MinReturnRate decimal.Decimal   `json:"min_return_rate"`
	MaxReturnRate decimal.Decimal   `json:"max_return_rate"`
	Status        InvestmentStatus  `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ActivatedAt   *time.Time        `json:"activated_at,omitempty"`
	MaturityDate  *time.Time        `json:"maturity_date,omitempty"`
	RealizedRate  *decimal.Decimal  `json:"realized_rate,omitempty"`
	PayableReturn *decimal.Decimal  `json:"payable_return,omitempty"`
}

// IsDue reports whether an active investment has reached its maturity date.
func (i Investment) IsDue(now time.Time) bool {
	return i.Status == ACTIVE && i.MaturityDate != nil && !now.Before(*i.MaturityDate)
}

// ApprovalType is the kind of request gated by the approval queue.
type ApprovalType string

const (
	USER_REGISTRATION ApprovalType = "USER_REGISTRATION"
	INVESTMENT        ApprovalType = "INVESTMENT"
	KYC_VERIFICATION  ApprovalType = "KYC_VERIFICATION"
	BORROW_REQUEST    ApprovalType = "BORROW_REQUEST"
	TRANSFER          ApprovalType = "TRANSFER"
	WITHDRAWAL        ApprovalType = "WITHDRAWAL"
)

// ApprovalTypes lists every approval type in release order. Append only.
var ApprovalTypes = []ApprovalType{USER_REGISTRATION, INVESTMENT, KYC_VERIFICATION, BORROW_REQUEST, TRANSFER, WITHDRAWAL}

// Valid reports whether t is a known approval type.
func (t ApprovalType) Valid() bool {
	for _, known := range ApprovalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ApprovalStatus defines the possible states of an approval request.
type ApprovalStatus string

const (
	PENDING  ApprovalStatus = "PENDING"
	APPROVED ApprovalStatus = "APPROVED"
	REJECTED ApprovalStatus = "REJECTED"
	// Requests withdrawn by the requester end up CANCELLED as well.
	REQUEST_CANCELLED ApprovalStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted.
func (s ApprovalStatus) Terminal() bool {
	return s != PENDING
}

// Outcome is the decision an authority makes on a pending request.
type Outcome string

const (
	OutcomeApprove Outcome = "APPROVED"
	OutcomeReject  Outcome = "REJECTED"
)

// ApprovalRequest is a single request waiting on (or decided by) an authority.
type ApprovalRequest struct {
	Id          string         `json:"id"`
	Type        ApprovalType   `json:"type"`
	Status      ApprovalStatus `json:"status"`
	RequesterId string         `json:"requester_id"`
	AuthorityId string         `json:"authority_id"`
	Payload     Payload        `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
}

// CreditStatus defines the possible states of a commission credit.
type CreditStatus string

const (
	CreditPending CreditStatus = "PENDING"
	CreditPaid    CreditStatus = "PAID"
	CreditFailed  CreditStatus = "FAILED"
	// CreditVoid is final: the credit will never be paid.
	CreditVoid CreditStatus = "VOID"
)

// CommissionCredit is one ancestor's share of an investment.
type CommissionCredit struct {
	Id                 string          `json:"id"`
	SourceInvestmentId string          `json:"source_investment_id"`
	RecipientId        string          `json:"recipient_id"`
	Level              int             `json:"level"`
	Rate               decimal.Decimal `json:"rate"`
	Amount             decimal.Decimal `json:"amount"`
	Status             CreditStatus    `json:"status"`
	LastError          string          `json:"last_error,omitempty"`
	Attempts           int             `json:"attempts"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Reason classifies a wallet mutation.
type Reason string

const (
	ReasonCommission Reason = "COMMISSION"
	ReasonReturn     Reason = "RETURN"
	ReasonTransfer   Reason = "TRANSFER"
	ReasonBorrow     Reason = "BORROW"
	ReasonReversal   Reason = "REVERSAL"
	ReasonDeposit    Reason = "DEPOSIT"
	ReasonLock       Reason = "LOCK"
	ReasonUnlock     Reason = "UNLOCK"
)

// Earning reports whether credits with this reason count towards earnings.
func (r Reason) Earning() bool {
	return r == ReasonCommission || r == ReasonReturn
}

// Wallet represents the internal domain model for an account's wallet.
type Wallet struct {
	AccountId string          `json:"account_id"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Earnings  decimal.Decimal `json:"earnings"`
	Frozen    bool            `json:"frozen"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Balance is the read view of a wallet.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Earnings  decimal.Decimal `json:"earnings"`
}

// LedgerEntry records a single wallet mutation.
type LedgerEntry struct {
	EntryID     string          `json:"entry_id"`
	Reference   string          `json:"reference"`
	AccountID   string          `json:"account_id"`
	Reason      Reason          `json:"reason"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}
