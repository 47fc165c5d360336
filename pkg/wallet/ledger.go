// Package wallet defines the wallet ledger collaborator and an in-memory
// implementation of it.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger holds available, locked and earned balances per account. All
// mutations for one account are serialized by the implementation.
//
// Every mutation takes a reference. A mutation repeated with the same account,
// reason, operation and non-empty reference is applied once; the repeat
// returns nil.
type Ledger interface {
	// Open creates an empty wallet for the account.
	Open(ctx context.Context, accountID string) error
	// Credit adds amount to the available balance.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error
	// Debit removes amount from the available balance or fails with models.ErrInsufficientBalance.
	Debit(ctx context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error
	// Lock moves amount from available to locked.
	Lock(ctx context.Context, accountID string, amount decimal.Decimal, ref string) error
	// Unlock moves amount from locked back to available.
	Unlock(ctx context.Context, accountID string, amount decimal.Decimal, ref string) error
	// BalanceOf returns the account's balances.
	BalanceOf(ctx context.Context, accountID string) (models.Balance, error)
}

// EntryReader lists ledger entries.
type EntryReader interface {
	// ListEntries returns the most recent entries for an account, newest first.
	ListEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error)
}

// Freezer suspends wallet mutations for an account.
type Freezer interface {
	Freeze(ctx context.Context, accountID string) error
	Unfreeze(ctx context.Context, accountID string) error
}

// Operation names used to build idempotency keys.
const (
	OpCredit = "credit"
	OpDebit  = "debit"
	OpLock   = "lock"
	OpUnlock = "unlock"
)

var entryNamespace = uuid.MustParse("6f1c2a7e-3b0d-4c2e-9a57-0d3e8f1b2c44")

// EntryID derives the ledger entry id for a mutation. A non-empty ref yields a
// deterministic id, which is what makes retried mutations idempotent.
func EntryID(accountID string, reason models.Reason, op, ref string) string {
	if ref == "" {
		return uuid.New().String()
	}
	key := fmt.Sprintf("%s|%s|%s|%s", accountID, reason, op, ref)
	return uuid.NewSHA1(entryNamespace, []byte(key)).String()
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount %s: %w", amount, models.ErrInvalidAmount)
	}
	return nil
}

// IsRetryable reports whether a failed mutation may succeed if attempted again
// later without any change of input.
func IsRetryable(err error) bool {
	return err != nil &&
		!errors.Is(err, models.ErrInvalidAmount) &&
		!errors.Is(err, models.ErrNotFound)
}
