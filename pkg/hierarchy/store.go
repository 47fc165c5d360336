// Package hierarchy maintains the referral forest and its aggregate statistics.
package hierarchy

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unbounded requests the whole subtree from Subtree.
const Unbounded = -1

const referralCodeLength = 8

var referralCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// ValidReferralCode reports whether code has the referral code shape.
func ValidReferralCode(code string) bool {
	return referralCodePattern.MatchString(code)
}

// node is an arena entry. Links are account ids, never pointers.
type node struct {
	account            models.Account
	children           []string
	directReferrals    int
	downlineCount      int
	downlineInvestment decimal.Decimal
	ownInvestment      decimal.Decimal
	attachedAt         *time.Time
	version            int64
}

func (n *node) record() storage.AccountRecord {
	return storage.AccountRecord{
		Account:       n.account,
		OwnInvestment: n.ownInvestment,
		AttachedAt:    n.attachedAt,
		Version:       n.version,
	}
}

// Store is the in-memory referral forest. Reads share a read lock; the only
// structural mutation (attach) takes the write lock for an O(depth) update.
//
// With a Persister every change to an account is written through before it
// is applied in memory, and Restore rebuilds the forest on start.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*node
	codes map[string]string

	Persister storage.AccountStore
	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*node),
		codes: make(map[string]string),
		Now:   time.Now,
	}
}

// CreateRoot creates an ACTIVE account with no parent.
func (s *Store) CreateRoot(ctx context.Context) (models.Account, error) {
	return s.create(ctx, models.AccountActive)
}

// Register creates a PENDING, unattached account with a fresh referral code.
func (s *Store) Register(ctx context.Context) (models.Account, error) {
	return s.create(ctx, models.AccountPending)
}

func (s *Store) create(ctx context.Context, status models.AccountStatus) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newReferralCodeLocked()
	now := s.Now().UTC()
	n := &node{
		account: models.Account{
			Id:           uuid.New().String(),
			ReferralCode: code,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		version: 1,
	}
	if s.Persister != nil {
		if err := s.Persister.CreateAccount(ctx, n.record()); err != nil {
			return models.Account{}, fmt.Errorf("failed to persist account: %w", err)
		}
	}

	s.nodes[n.account.Id] = n
	s.codes[code] = n.account.Id
	return n.account, nil
}

// commitLocked writes the next version of n through to the Persister and, on
// success, applies it.
func (s *Store) commitLocked(ctx context.Context, n *node, next node) error {
	next.version = n.version + 1
	if s.Persister != nil {
		if err := s.Persister.UpdateAccount(ctx, next.record()); err != nil {
			return fmt.Errorf("failed to persist account %s: %w", n.account.Id, err)
		}
	}
	n.account = next.account
	n.ownInvestment = next.ownInvestment
	n.attachedAt = next.attachedAt
	n.version = next.version
	return nil
}

func (s *Store) newReferralCodeLocked() string {
	for {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:referralCodeLength]
		if _, taken := s.codes[code]; !taken {
			return code
		}
	}
}

// Get returns the account with the given id.
func (s *Store) Get(_ context.Context, accountID string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[accountID]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	return n.account, nil
}

// ResolveReferralCode returns the account owning code, regardless of caller.
// It backs sign-up, where the new member has no subtree yet.
func (s *Store) ResolveReferralCode(_ context.Context, code string) (models.Account, error) {
	if !ValidReferralCode(code) {
		return models.Account{}, models.ErrMalformedReferralCode
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return models.Account{}, fmt.Errorf("referral code %s: %w", code, models.ErrNotFound)
	}
	return s.nodes[id].account, nil
}

// SetStatus updates an account's status.
func (s *Store) SetStatus(ctx context.Context, accountID string, status models.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	next := *n
	next.account.Status = status
	next.account.UpdatedAt = s.Now().UTC()
	return s.commitLocked(ctx, n, next)
}

// MarkKYCVerified sets the account's KYC flag.
func (s *Store) MarkKYCVerified(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	next := *n
	next.account.KYCVerified = true
	next.account.UpdatedAt = s.Now().UTC()
	return s.commitLocked(ctx, n, next)
}

// Attach links childID under parentID.
func (s *Store) Attach(ctx context.Context, childID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attachLocked(ctx, childID, parentID, "")
}

// ActivateUnder attaches a pending account under its referrer and marks it
// ACTIVE in the same critical section.
func (s *Store) ActivateUnder(ctx context.Context, childID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	child, ok := s.nodes[childID]
	if !ok {
		return fmt.Errorf("account %s: %w", childID, models.ErrNotFound)
	}
	if child.account.Status != models.AccountPending {
		return fmt.Errorf("account %s is %s: %w", childID, child.account.Status, models.ErrInvalidTransition)
	}
	return s.attachLocked(ctx, childID, parentID, models.AccountActive)
}

// attachLocked links childID under parentID and, when status is set, moves the
// child to it in the same write.
func (s *Store) attachLocked(ctx context.Context, childID, parentID string, status models.AccountStatus) error {
	child, ok := s.nodes[childID]
	if !ok {
		return fmt.Errorf("account %s: %w", childID, models.ErrNotFound)
	}
	parent, ok := s.nodes[parentID]
	if !ok {
		return fmt.Errorf("account %s: %w", parentID, models.ErrNotFound)
	}
	if childID == parentID {
		return fmt.Errorf("account %s under itself: %w", childID, models.ErrCycle)
	}
	if child.account.ParentId != "" {
		return fmt.Errorf("account %s under %s: %w", childID, child.account.ParentId, models.ErrAlreadyAttached)
	}

	// parentID must not be a descendant of childID.
	for id := parent.account.ParentId; id != ""; id = s.nodes[id].account.ParentId {
		if id == childID {
			return fmt.Errorf("account %s under its descendant %s: %w", childID, parentID, models.ErrCycle)
		}
	}

	now := s.Now().UTC()
	next := *child
	next.account.ParentId = parentID
	next.account.UpdatedAt = now
	next.attachedAt = &now
	if status != "" {
		next.account.Status = status
	}
	if err := s.commitLocked(ctx, child, next); err != nil {
		return err
	}

	parent.children = append(parent.children, childID)
	parent.directReferrals++

	countDelta := 1 + child.downlineCount
	investmentDelta := child.ownInvestment.Add(child.downlineInvestment)
	for n := parent; n != nil; n = s.parentLocked(n) {
		n.downlineCount += countDelta
		n.downlineInvestment = n.downlineInvestment.Add(investmentDelta)
	}
	return nil
}

func (s *Store) parentLocked(n *node) *node {
	if n.account.ParentId == "" {
		return nil
	}
	return s.nodes[n.account.ParentId]
}

// RecordInvestment adds amount to the owner's invested total and to the
// downline investment of every ancestor. A negative amount reverses it.
func (s *Store) RecordInvestment(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.nodes[ownerID]
	if !ok {
		return fmt.Errorf("account %s: %w", ownerID, models.ErrNotFound)
	}
	next := *owner
	next.ownInvestment = owner.ownInvestment.Add(amount)
	if err := s.commitLocked(ctx, owner, next); err != nil {
		return err
	}
	for n := s.parentLocked(owner); n != nil; n = s.parentLocked(n) {
		n.downlineInvestment = n.downlineInvestment.Add(amount)
	}
	return nil
}

// Restore replaces the forest with the Persister's accounts and rebuilds
// children, referral counts and downline aggregates from them. It returns the
// number of accounts loaded. Without a Persister it does nothing.
func (s *Store) Restore(ctx context.Context) (int, error) {
	if s.Persister == nil {
		return 0, nil
	}
	records, err := s.Persister.ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make(map[string]*node, len(records))
	codes := make(map[string]string, len(records))
	for _, rec := range records {
		nodes[rec.Account.Id] = &node{
			account:       rec.Account,
			ownInvestment: rec.OwnInvestment,
			attachedAt:    rec.AttachedAt,
			version:       rec.Version,
		}
		codes[rec.Account.ReferralCode] = rec.Account.Id
	}

	// Children keep attach order.
	attached := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if n.account.ParentId == "" {
			continue
		}
		if _, ok := nodes[n.account.ParentId]; !ok {
			return 0, fmt.Errorf("account %s has unknown parent %s: %w", n.account.Id, n.account.ParentId, models.ErrNotFound)
		}
		attached = append(attached, n)
	}
	sort.Slice(attached, func(i, j int) bool {
		a, b := attached[i].attachedAt, attached[j].attachedAt
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return attached[i].account.Id < attached[j].account.Id
	})
	for _, n := range attached {
		parent := nodes[n.account.ParentId]
		parent.children = append(parent.children, n.account.Id)
		parent.directReferrals++
	}

	for _, n := range nodes {
		steps := 0
		for id := n.account.ParentId; id != ""; id = nodes[id].account.ParentId {
			if steps++; steps > len(nodes) {
				return 0, fmt.Errorf("account %s: %w", n.account.Id, models.ErrCycle)
			}
			p := nodes[id]
			p.downlineCount++
			p.downlineInvestment = p.downlineInvestment.Add(n.ownInvestment)
		}
	}

	s.nodes, s.codes = nodes, codes
	return len(records), nil
}

// Len returns the number of accounts in the forest.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// AncestorsOf returns up to limit ancestor ids of accountID, nearest first.
func (s *Store) AncestorsOf(_ context.Context, accountID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}

	var ancestors []string
	for p := s.parentLocked(n); p != nil && len(ancestors) < limit; p = s.parentLocked(p) {
		ancestors = append(ancestors, p.account.Id)
	}
	return ancestors, nil
}

// Subtree returns the induced subtree rooted at rootID, down to maxDepth
// levels below the root (Unbounded for all of it).
func (s *Store) Subtree(_ context.Context, rootID string, maxDepth int) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.nodes[rootID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", rootID, models.ErrNotFound)
	}
	return s.viewLocked(root, maxDepth), nil
}

func (s *Store) viewLocked(n *node, depth int) *Node {
	view := &Node{
		Account:                 n.account,
		DirectReferralCount:     n.directReferrals,
		TotalDownlineCount:      n.downlineCount,
		TotalDownlineInvestment: n.downlineInvestment,
	}
	if depth == 0 {
		return view
	}
	view.Children = make([]*Node, 0, len(n.children))
	for _, childID := range n.children {
		view.Children = append(view.Children, s.viewLocked(s.nodes[childID], depth-1))
	}
	return view
}

// FindByReferralCode looks code up inside callerID's own subtree. It returns
// the matching node (without children) and the account ids from the caller
// down to the match. A code outside the caller's subtree is reported exactly
// like a missing one.
func (s *Store) FindByReferralCode(_ context.Context, callerID, code string) (*Node, []string, error) {
	if !ValidReferralCode(code) {
		return nil, nil, models.ErrMalformedReferralCode
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[callerID]; !ok {
		return nil, nil, models.ErrNotFound
	}
	targetID, ok := s.codes[code]
	if !ok {
		return nil, nil, models.ErrNotFound
	}

	// Walk up from the target until the caller is found or the root is passed.
	var path []string
	for id := targetID; id != ""; id = s.nodes[id].account.ParentId {
		path = append(path, id)
		if id == callerID {
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return s.viewLocked(s.nodes[targetID], 0), path, nil
		}
	}
	return nil, nil, models.ErrNotFound
}
