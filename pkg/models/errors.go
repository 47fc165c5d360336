package models

import "errors"

// Validation errors. Rejected synchronously with no side effect.
var (
	ErrAmountOutOfRange      = errors.New("amount out of range for profile")
	ErrInvalidLockIn         = errors.New("lock-in period not supported by profile")
	ErrUnknownProfile        = errors.New("unknown investment profile")
	ErrMalformedReferralCode = errors.New("malformed referral code")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidRequest        = errors.New("invalid request")
)

// Authorization errors. They never reveal whether the target exists.
var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
)

// Conflict errors. Safe to retry after re-reading state.
var (
	ErrCycle                   = errors.New("attach would create a cycle")
	ErrAlreadyAttached         = errors.New("account already has a parent")
	ErrAlreadyDecided          = errors.New("request already decided")
	ErrDuplicatePendingRequest = errors.New("a pending request of this type already exists")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrAlreadyExists           = errors.New("already exists")
	ErrVersionConflict         = errors.New("version conflict")
)

// Dependency errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountFrozen       = errors.New("account frozen")
	ErrRateOutOfBand       = errors.New("realized rate outside profile band")
)

// Error kinds exposed to API callers. The strings are part of the contract.
const (
	KindValidation    = "VALIDATION"
	KindNotAuthorized = "NOT_AUTHORIZED"
	KindNotFound      = "NOT_FOUND"
	KindConflict      = "CONFLICT"
	KindInsufficient  = "INSUFFICIENT_BALANCE"
	KindInternal      = "INTERNAL"
)

// ErrorKind classifies err into one of the exposed error kinds.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAmountOutOfRange),
		errors.Is(err, ErrInvalidLockIn),
		errors.Is(err, ErrUnknownProfile),
		errors.Is(err, ErrMalformedReferralCode),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRequest):
		return KindValidation
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCycle),
		errors.Is(err, ErrAlreadyAttached),
		errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrDuplicatePendingRequest),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrAccountFrozen):
		return KindConflict
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficient
	default:
		return KindInternal
	}
}
