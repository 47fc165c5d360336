package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Payload is the type-specific body of an approval request. There is exactly
// one payload shape per ApprovalType.
type Payload interface {
	// Kind returns the approval type this payload belongs to.
	Kind() ApprovalType
	// Target identifies the entity the request refers to. Two pending requests
	// from the same requester with the same kind and target are duplicates.
	Target() string
}

// RegistrationPayload asks the referrer to admit a new account.
type RegistrationPayload struct {
	AccountId  string `json:"account_id"`
	ReferrerId string `json:"referrer_id"`
}

func (RegistrationPayload) Kind() ApprovalType { return USER_REGISTRATION }
func (p RegistrationPayload) Target() string  { return p.AccountId }

// InvestmentPayload asks for a pending investment to be activated.
type InvestmentPayload struct {
	InvestmentId string            `json:"investment_id"`
	Profile      InvestmentProfile `json:"profile"`
	Amount       decimal.Decimal   `json:"amount"`
	LockInMonths int               `json:"lock_in_months"`
}

func (InvestmentPayload) Kind() ApprovalType { return INVESTMENT }
func (p InvestmentPayload) Target() string  { return p.InvestmentId }

// KYCPayload references documents held by the external KYC store.
type KYCPayload struct {
	DocumentRef string `json:"document_ref"`
}

func (KYCPayload) Kind() ApprovalType { return KYC_VERIFICATION }

// Target is empty: an account has at most one pending verification.
func (KYCPayload) Target() string { return "" }

// BorrowPayload asks the authority to lend credit units to the requester.
type BorrowPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

func (BorrowPayload) Kind() ApprovalType { return BORROW_REQUEST }
func (BorrowPayload) Target() string    { return "" }

// TransferPayload moves credit units from the requester to another account.
type TransferPayload struct {
	ToAccountId string          `json:"to_account_id"`
	Amount      decimal.Decimal `json:"amount"`
}

func (TransferPayload) Kind() ApprovalType { return TRANSFER }
func (p TransferPayload) Target() string  { return p.ToAccountId }

// WithdrawalPayload asks for a matured investment to be paid out.
type WithdrawalPayload struct {
	InvestmentId string `json:"investment_id"`
}

func (WithdrawalPayload) Kind() ApprovalType { return WITHDRAWAL }
func (p WithdrawalPayload) Target() string  { return p.InvestmentId }

// DecodePayload parses the JSON form of the payload for approval type t.
func DecodePayload(t ApprovalType, data []byte) (Payload, error) {
	var err error
	switch t {
	case USER_REGISTRATION:
		var p RegistrationPayload
		err = json.Unmarshal(data, &p)
		return p, err
	case INVESTMENT:
		var p InvestmentPayload
		err = json.Unmarshal(data, &p)
		return p, err
	case KYC_VERIFICATION:
		var p KYCPayload
		err = json.Unmarshal(data, &p)
		return p, err
	case BORROW_REQUEST:
		var p BorrowPayload
		err = json.Unmarshal(data, &p)
		return p, err
	case TRANSFER:
		var p TransferPayload
		err = json.Unmarshal(data, &p)
		return p, err
	case WITHDRAWAL:
		var p WithdrawalPayload
		err = json.Unmarshal(data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("approval type %q: %w", t, ErrInvalidRequest)
	}
}
