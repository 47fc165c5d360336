package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// account is one wallet and its entries, guarded by its own mutex.
type account struct {
	mu      sync.Mutex
	wallet  models.Wallet
	entries []models.LedgerEntry
	applied map[string]struct{}
}

// Memory is an in-memory Ledger. The map lock is only held to look a wallet
// up; balance changes are serialized per account.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*account

	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*account),
		Now:      time.Now,
	}
}

// Make sure we conform to the interfaces
var (
	_ Ledger      = (*Memory)(nil)
	_ EntryReader = (*Memory)(nil)
	_ Freezer     = (*Memory)(nil)
)

// Open creates an empty wallet for the account.
func (m *Memory) Open(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[accountID]; exists {
		return fmt.Errorf("wallet for account %s: %w", accountID, models.ErrAlreadyExists)
	}
	now := m.Now().UTC()
	m.accounts[accountID] = &account{
		wallet: models.Wallet{
			AccountId: accountID,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		applied: make(map[string]struct{}),
	}
	return nil
}

func (m *Memory) lookup(accountID string) (*account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("wallet for account %s: %w", accountID, models.ErrNotFound)
	}
	return acct, nil
}

// mutate applies fn to the account's wallet under its lock and appends the
// matching ledger entry. A repeated reference is a no-op.
func (m *Memory) mutate(accountID string, amount decimal.Decimal, reason models.Reason, op, ref string, fn func(w *models.Wallet) error) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	acct, err := m.lookup(accountID)
	if err != nil {
		return err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	entryID := EntryID(accountID, reason, op, ref)
	if _, done := acct.applied[entryID]; done {
		return nil
	}
	if acct.wallet.Frozen {
		return fmt.Errorf("wallet for account %s: %w", accountID, models.ErrAccountFrozen)
	}

	updated := acct.wallet
	if err := fn(&updated); err != nil {
		return err
	}
	now := m.Now().UTC()
	updated.Version++
	updated.UpdatedAt = now
	acct.wallet = updated

	entry := models.LedgerEntry{
		EntryID:     entryID,
		Reference:   ref,
		AccountID:   accountID,
		Reason:      reason,
		Description: fmt.Sprintf("%s %s", op, reason),
		Timestamp:   now,
	}
	if op == OpDebit || op == OpLock {
		entry.Debit = amount
	} else {
		entry.Credit = amount
	}
	acct.entries = append(acct.entries, entry)
	acct.applied[entryID] = struct{}{}
	return nil
}

// Credit adds amount to the available balance.
func (m *Memory) Credit(_ context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error {
	return m.mutate(accountID, amount, reason, OpCredit, ref, func(w *models.Wallet) error {
		w.Available = w.Available.Add(amount)
		if reason.Earning() {
			w.Earnings = w.Earnings.Add(amount)
		}
		return nil
	})
}

// Debit removes amount from the available balance.
func (m *Memory) Debit(_ context.Context, accountID string, amount decimal.Decimal, reason models.Reason, ref string) error {
	return m.mutate(accountID, amount, reason, OpDebit, ref, func(w *models.Wallet) error {
		if w.Available.LessThan(amount) {
			return fmt.Errorf("debit %s from %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Available = w.Available.Sub(amount)
		return nil
	})
}

// Lock moves amount from available to locked.
func (m *Memory) Lock(_ context.Context, accountID string, amount decimal.Decimal, ref string) error {
	return m.mutate(accountID, amount, models.ReasonLock, OpLock, ref, func(w *models.Wallet) error {
		if w.Available.LessThan(amount) {
			return fmt.Errorf("lock %s on %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Available = w.Available.Sub(amount)
		w.Locked = w.Locked.Add(amount)
		return nil
	})
}

// Unlock moves amount from locked back to available.
func (m *Memory) Unlock(_ context.Context, accountID string, amount decimal.Decimal, ref string) error {
	return m.mutate(accountID, amount, models.ReasonUnlock, OpUnlock, ref, func(w *models.Wallet) error {
		if w.Locked.LessThan(amount) {
			return fmt.Errorf("unlock %s on %s: %w", amount, accountID, models.ErrInsufficientBalance)
		}
		w.Locked = w.Locked.Sub(amount)
		w.Available = w.Available.Add(amount)
		return nil
	})
}

// BalanceOf returns the account's balances.
func (m *Memory) BalanceOf(_ context.Context, accountID string) (models.Balance, error) {
	acct, err := m.lookup(accountID)
	if err != nil {
		return models.Balance{}, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	return models.Balance{
		Available: acct.wallet.Available,
		Locked:    acct.wallet.Locked,
		Earnings:  acct.wallet.Earnings,
	}, nil
}

// ListEntries returns the most recent entries for an account, newest first.
func (m *Memory) ListEntries(_ context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	acct, err := m.lookup(accountID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	n := len(acct.entries)
	if limit > 0 && int(limit) < n {
		n = int(limit)
	}
	result := make([]models.LedgerEntry, 0, n)
	for i := len(acct.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, acct.entries[i])
	}
	return result, nil
}

// Freeze blocks every mutation on the account's wallet.
func (m *Memory) Freeze(_ context.Context, accountID string) error {
	return m.setFrozen(accountID, true)
}

// Unfreeze lifts a freeze.
func (m *Memory) Unfreeze(_ context.Context, accountID string) error {
	return m.setFrozen(accountID, false)
}

func (m *Memory) setFrozen(accountID string, frozen bool) error {
	acct, err := m.lookup(accountID)
	if err != nil {
		return err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.wallet.Frozen = frozen
	acct.wallet.Version++
	acct.wallet.UpdatedAt = m.Now().UTC()
	return nil
}
