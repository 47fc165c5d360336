// Package memory is a thread-safe in-memory implementation of the storage
// interfaces. It backs local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
)

// Store keeps investments, commission credits, accounts and approval
// requests in maps.
type Store struct {
	mu          sync.RWMutex
	investments map[string]models.Investment
	credits     map[string]models.CommissionCredit
	// creditKeys indexes credits by investment id and recipient id.
	creditKeys map[string]string
	accounts   map[string]storage.AccountRecord
	requests   map[string]models.ApprovalRequest
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		investments: make(map[string]models.Investment),
		credits:     make(map[string]models.CommissionCredit),
		creditKeys:  make(map[string]string),
		accounts:    make(map[string]storage.AccountRecord),
		requests:    make(map[string]models.ApprovalRequest),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Investments ----------------------------------------------------------------

func (s *Store) CreateInvestment(_ context.Context, inv *models.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.investments[inv.Id]; exists {
		return fmt.Errorf("investment %s: %w", inv.Id, models.ErrAlreadyExists)
	}
	s.investments[inv.Id] = cloneInvestment(*inv)
	return nil
}

func (s *Store) UpdateInvestment(_ context.Context, inv *models.Investment, expected models.InvestmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.investments[inv.Id]
	if !ok {
		return fmt.Errorf("investment %s: %w", inv.Id, models.ErrNotFound)
	}
	if current.Status != expected {
		return fmt.Errorf("investment %s is %s, expected %s: %w", inv.Id, current.Status, expected, models.ErrInvalidTransition)
	}
	s.investments[inv.Id] = cloneInvestment(*inv)
	return nil
}

func (s *Store) GetInvestment(_ context.Context, investmentID string) (*models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.investments[investmentID]
	if !ok {
		return nil, fmt.Errorf("investment %s: %w", investmentID, models.ErrNotFound)
	}
	clone := cloneInvestment(inv)
	return &clone, nil
}

func (s *Store) ListInvestmentsByOwner(_ context.Context, ownerID string) ([]models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Investment
	for _, inv := range s.investments {
		if inv.OwnerId == ownerID {
			result = append(result, cloneInvestment(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) ListDueInvestments(_ context.Context, now time.Time) ([]models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Investment
	for _, inv := range s.investments {
		if inv.IsDue(now) {
			result = append(result, cloneInvestment(inv))
		}
	}
	return result, nil
}

func cloneInvestment(inv models.Investment) models.Investment {
	if inv.ActivatedAt != nil {
		t := *inv.ActivatedAt
		inv.ActivatedAt = &t
	}
	if inv.MaturityDate != nil {
		t := *inv.MaturityDate
		inv.MaturityDate = &t
	}
	if inv.RealizedRate != nil {
		r := *inv.RealizedRate
		inv.RealizedRate = &r
	}
	if inv.PayableReturn != nil {
		r := *inv.PayableReturn
		inv.PayableReturn = &r
	}
	return inv
}

// Commission credits ---------------------------------------------------------

func creditKey(investmentID, recipientID string) string {
	return investmentID + "/" + recipientID
}

func (s *Store) CreateCredit(_ context.Context, credit *models.CommissionCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := creditKey(credit.SourceInvestmentId, credit.RecipientId)
	if _, exists := s.creditKeys[key]; exists {
		return fmt.Errorf("credit for investment %s and recipient %s: %w", credit.SourceInvestmentId, credit.RecipientId, models.ErrAlreadyExists)
	}
	s.credits[credit.Id] = *credit
	s.creditKeys[key] = credit.Id
	return nil
}

func (s *Store) UpdateCredit(_ context.Context, credit *models.CommissionCredit, expected models.CreditStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.credits[credit.Id]
	if !ok {
		return fmt.Errorf("credit %s: %w", credit.Id, models.ErrNotFound)
	}
	if current.Status != expected {
		return fmt.Errorf("credit %s is %s, expected %s: %w", credit.Id, current.Status, expected, models.ErrInvalidTransition)
	}
	s.credits[credit.Id] = *credit
	return nil
}

func (s *Store) ListCreditsByInvestment(_ context.Context, investmentID string) ([]models.CommissionCredit, error) {
	return s.filterCredits(func(c models.CommissionCredit) bool {
		return c.SourceInvestmentId == investmentID
	}, 0), nil
}

func (s *Store) ListCreditsByRecipient(_ context.Context, recipientID string) ([]models.CommissionCredit, error) {
	return s.filterCredits(func(c models.CommissionCredit) bool {
		return c.RecipientId == recipientID
	}, 0), nil
}

func (s *Store) ListFailedCredits(_ context.Context, limit int32) ([]models.CommissionCredit, error) {
	return s.filterCredits(func(c models.CommissionCredit) bool {
		return c.Status == models.CreditFailed
	}, int(limit)), nil
}

// ListStaleCredits retrieves up to limit PENDING credits created before cutoff.
func (s *Store) ListStaleCredits(_ context.Context, cutoff time.Time, limit int32) ([]models.CommissionCredit, error) {
	return s.filterCredits(func(c models.CommissionCredit) bool {
		return c.Status == models.CreditPending && c.CreatedAt.Before(cutoff)
	}, int(limit)), nil
}

// filterCredits returns matching credits ordered by level then creation time.
func (s *Store) filterCredits(match func(models.CommissionCredit) bool, limit int) []models.CommissionCredit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.CommissionCredit
	for _, c := range s.credits {
		if match(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Level < result[j].Level
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Accounts -------------------------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, rec storage.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[rec.Account.Id]; exists {
		return fmt.Errorf("account %s: %w", rec.Account.Id, models.ErrAlreadyExists)
	}
	s.accounts[rec.Account.Id] = cloneAccount(rec)
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, rec storage.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[rec.Account.Id]
	if !ok {
		return fmt.Errorf("account %s: %w", rec.Account.Id, models.ErrNotFound)
	}
	if current.Version != rec.Version-1 {
		return fmt.Errorf("account %s is at version %d: %w", rec.Account.Id, current.Version, models.ErrVersionConflict)
	}
	s.accounts[rec.Account.Id] = cloneAccount(rec)
	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]storage.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.AccountRecord, 0, len(s.accounts))
	for _, rec := range s.accounts {
		result = append(result, cloneAccount(rec))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Account.CreatedAt.Before(result[j].Account.CreatedAt)
	})
	return result, nil
}

func cloneAccount(rec storage.AccountRecord) storage.AccountRecord {
	if rec.AttachedAt != nil {
		t := *rec.AttachedAt
		rec.AttachedAt = &t
	}
	return rec
}

// Approval requests ----------------------------------------------------------

func (s *Store) CreateRequest(_ context.Context, req *models.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.Id]; exists {
		return fmt.Errorf("request %s: %w", req.Id, models.ErrAlreadyExists)
	}
	s.requests[req.Id] = cloneRequest(*req)
	return nil
}

func (s *Store) UpdateRequest(_ context.Context, req *models.ApprovalRequest, expected models.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[req.Id]
	if !ok {
		return fmt.Errorf("request %s: %w", req.Id, models.ErrNotFound)
	}
	if current.Status != expected {
		return fmt.Errorf("request %s is %s: %w", req.Id, current.Status, models.ErrAlreadyDecided)
	}
	s.requests[req.Id] = cloneRequest(*req)
	return nil
}

func (s *Store) GetRequest(_ context.Context, requestID string) (*models.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, models.ErrNotFound)
	}
	clone := cloneRequest(req)
	return &clone, nil
}

func (s *Store) ListPendingRequests(_ context.Context) ([]models.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.ApprovalRequest
	for _, req := range s.requests {
		if req.Status == models.PENDING {
			result = append(result, cloneRequest(req))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func cloneRequest(req models.ApprovalRequest) models.ApprovalRequest {
	if req.DecidedAt != nil {
		t := *req.DecidedAt
		req.DecidedAt = &t
	}
	return req
}
