package dynamodb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/shopspring/decimal"
)

// Amount stores a decimal as a DynamoDB number without going through float64.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.String()}, nil
}

func (a *Amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		a.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("unsupported attribute type %T for amount", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %q: %w", raw, err)
	}
	a.Decimal = d
	return nil
}

func optionalAmount(d *decimal.Decimal) *Amount {
	if d == nil {
		return nil
	}
	return &Amount{*d}
}

func (a *Amount) decimalPtr() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}

type walletRecord struct {
	AccountID string    `dynamodbav:"account_id"`
	Available Amount    `dynamodbav:"available"`
	Locked    Amount    `dynamodbav:"locked"`
	Earnings  Amount    `dynamodbav:"earnings"`
	Frozen    bool      `dynamodbav:"frozen"`
	Version   int64     `dynamodbav:"version"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (r walletRecord) toModel() models.Wallet {
	return models.Wallet{
		AccountId: r.AccountID,
		Available: r.Available.Decimal,
		Locked:    r.Locked.Decimal,
		Earnings:  r.Earnings.Decimal,
		Frozen:    r.Frozen,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type entryRecord struct {
	EntryID     string        `dynamodbav:"entry_id"`
	Reference   string        `dynamodbav:"reference,omitempty"`
	AccountID   string        `dynamodbav:"account_id"`
	Reason      models.Reason `dynamodbav:"reason"`
	Debit       Amount        `dynamodbav:"debit"`
	Credit      Amount        `dynamodbav:"credit"`
	Description string        `dynamodbav:"description"`
	Timestamp   time.Time     `dynamodbav:"timestamp"`
}

func newEntryRecord(e models.LedgerEntry) entryRecord {
	return entryRecord{
		EntryID:     e.EntryID,
		Reference:   e.Reference,
		AccountID:   e.AccountID,
		Reason:      e.Reason,
		Debit:       Amount{e.Debit},
		Credit:      Amount{e.Credit},
		Description: e.Description,
		Timestamp:   e.Timestamp,
	}
}

func (r entryRecord) toModel() models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:     r.EntryID,
		Reference:   r.Reference,
		AccountID:   r.AccountID,
		Reason:      r.Reason,
		Debit:       r.Debit.Decimal,
		Credit:      r.Credit.Decimal,
		Description: r.Description,
		Timestamp:   r.Timestamp,
	}
}

type investmentRecord struct {
	ID            string                   `dynamodbav:"id"`
	OwnerID       string                   `dynamodbav:"owner_id"`
	Profile       models.InvestmentProfile `dynamodbav:"profile"`
	Amount        Amount                   `dynamodbav:"amount"`
	LockInMonths  int                      `dynamodbav:"lock_in_months"`
	MinReturnRate Amount                   `dynamodbav:"min_return_rate"`
	MaxReturnRate Amount                   `dynamodbav:"max_return_rate"`
	Status        models.InvestmentStatus  `dynamodbav:"status"`
	CreatedAt     time.Time                `dynamodbav:"created_at"`
	UpdatedAt     time.Time                `dynamodbav:"updated_at"`
	ActivatedAt   *time.Time               `dynamodbav:"activated_at,omitempty"`
	MaturityDate  *time.Time               `dynamodbav:"maturity_date,omitempty"`
	RealizedRate  *Amount                  `dynamodbav:"realized_rate,omitempty"`
	PayableReturn *Amount                  `dynamodbav:"payable_return,omitempty"`
}

func newInvestmentRecord(inv *models.Investment) investmentRecord {
	return investmentRecord{
		ID:            inv.Id,
		OwnerID:       inv.OwnerId,
		Profile:       inv.Profile,
		Amount:        Amount{inv.Amount},
		LockInMonths:  inv.LockInMonths,
		MinReturnRate: Amount{inv.MinReturnRate},
		MaxReturnRate: Amount{inv.MaxReturnRate},
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		ActivatedAt:   inv.ActivatedAt,
		MaturityDate:  inv.MaturityDate,
		RealizedRate:  optionalAmount(inv.RealizedRate),
		PayableReturn: optionalAmount(inv.PayableReturn),
	}
}

func (r investmentRecord) toModel() models.Investment {
	return models.Investment{
		Id:            r.ID,
		OwnerId:       r.OwnerID,
		Profile:       r.Profile,
		Amount:        r.Amount.Decimal,
		LockInMonths:  r.LockInMonths,
		MinReturnRate: r.MinReturnRate.Decimal,
		MaxReturnRate: r.MaxReturnRate.Decimal,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ActivatedAt:   r.ActivatedAt,
		MaturityDate:  r.MaturityDate,
		RealizedRate:  r.RealizedRate.decimalPtr(),
		PayableReturn: r.PayableReturn.decimalPtr(),
	}
}

type creditRecord struct {
	SourceInvestmentID string              `dynamodbav:"source_investment_id"`
	RecipientID        string              `dynamodbav:"recipient_id"`
	ID                 string              `dynamodbav:"id"`
	Level              int                 `dynamodbav:"level"`
	Rate               Amount              `dynamodbav:"rate"`
	Amount             Amount              `dynamodbav:"amount"`
	Status             models.CreditStatus `dynamodbav:"status"`
	LastError          string              `dynamodbav:"last_error,omitempty"`
	Attempts           int                 `dynamodbav:"attempts"`
	CreatedAt          time.Time           `dynamodbav:"created_at"`
	UpdatedAt          time.Time           `dynamodbav:"updated_at"`
}

func newCreditRecord(c *models.CommissionCredit) creditRecord {
	return creditRecord{
		SourceInvestmentID: c.SourceInvestmentId,
		RecipientID:        c.RecipientId,
		ID:                 c.Id,
		Level:              c.Level,
		Rate:               Amount{c.Rate},
		Amount:             Amount{c.Amount},
		Status:             c.Status,
		LastError:          c.LastError,
		Attempts:           c.Attempts,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (r creditRecord) toModel() models.CommissionCredit {
	return models.CommissionCredit{
		Id:                 r.ID,
		SourceInvestmentId: r.SourceInvestmentID,
		RecipientId:        r.RecipientID,
		Level:              r.Level,
		Rate:               r.Rate.Decimal,
		Amount:             r.Amount.Decimal,
		Status:             r.Status,
		LastError:          r.LastError,
		Attempts:           r.Attempts,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type accountRecord struct {
	ID            string               `dynamodbav:"id"`
	ReferralCode  string               `dynamodbav:"referral_code"`
	ParentID      string               `dynamodbav:"parent_id,omitempty"`
	Status        models.AccountStatus `dynamodbav:"status"`
	KYCVerified   bool                 `dynamodbav:"kyc_verified"`
	OwnInvestment Amount               `dynamodbav:"own_investment"`
	AttachedAt    *time.Time           `dynamodbav:"attached_at,omitempty"`
	Version       int64                `dynamodbav:"version"`
	CreatedAt     time.Time            `dynamodbav:"created_at"`
	UpdatedAt     time.Time            `dynamodbav:"updated_at"`
}

func newAccountRecord(rec storage.AccountRecord) accountRecord {
	return accountRecord{
		ID:            rec.Account.Id,
		ReferralCode:  rec.Account.ReferralCode,
		ParentID:      rec.Account.ParentId,
		Status:        rec.Account.Status,
		KYCVerified:   rec.Account.KYCVerified,
		OwnInvestment: Amount{rec.OwnInvestment},
		AttachedAt:    rec.AttachedAt,
		Version:       rec.Version,
		CreatedAt:     rec.Account.CreatedAt,
		UpdatedAt:     rec.Account.UpdatedAt,
	}
}

func (r accountRecord) toModel() storage.AccountRecord {
	return storage.AccountRecord{
		Account: models.Account{
			Id:           r.ID,
			ReferralCode: r.ReferralCode,
			ParentId:     r.ParentID,
			Status:       r.Status,
			KYCVerified:  r.KYCVerified,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		},
		OwnInvestment: r.OwnInvestment.Decimal,
		AttachedAt:    r.AttachedAt,
		Version:       r.Version,
	}
}

// approvalRecord keeps the payload as JSON; its shape follows the type.
type approvalRecord struct {
	ID          string                `dynamodbav:"id"`
	Type        models.ApprovalType   `dynamodbav:"type"`
	Status      models.ApprovalStatus `dynamodbav:"status"`
	RequesterID string                `dynamodbav:"requester_id"`
	AuthorityID string                `dynamodbav:"authority_id"`
	Payload     string                `dynamodbav:"payload"`
	CreatedAt   time.Time             `dynamodbav:"created_at"`
	DecidedAt   *time.Time            `dynamodbav:"decided_at,omitempty"`
}

func newApprovalRecord(req *models.ApprovalRequest) (approvalRecord, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return approvalRecord{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	return approvalRecord{
		ID:          req.Id,
		Type:        req.Type,
		Status:      req.Status,
		RequesterID: req.RequesterId,
		AuthorityID: req.AuthorityId,
		Payload:     string(payload),
		CreatedAt:   req.CreatedAt,
		DecidedAt:   req.DecidedAt,
	}, nil
}

func (r approvalRecord) toModel() (models.ApprovalRequest, error) {
	payload, err := models.DecodePayload(r.Type, []byte(r.Payload))
	if err != nil {
		return models.ApprovalRequest{}, fmt.Errorf("failed to decode payload of request %s: %w", r.ID, err)
	}
	return models.ApprovalRequest{
		Id:          r.ID,
		Type:        r.Type,
		Status:      r.Status,
		RequesterId: r.RequesterID,
		AuthorityId: r.AuthorityID,
		Payload:     payload,
		CreatedAt:   r.CreatedAt,
		DecidedAt:   r.DecidedAt,
	}, nil
}
