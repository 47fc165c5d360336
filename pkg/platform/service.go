// Package platform wires the hierarchy, investment ledger, commission engine
// and approval queue into the operations exposed to callers, and registers the
// side effect each approval type performs when it is decided.
package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/chris/referral-investments/pkg/approval"
	"github.com/chris/referral-investments/pkg/commission"
	"github.com/chris/referral-investments/pkg/hierarchy"
	"github.com/chris/referral-investments/pkg/investment"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/notify"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/chris/referral-investments/pkg/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Wallets is the wallet backend the service needs.
type Wallets interface {
	wallet.Ledger
	wallet.EntryReader
}

// Options configure a Service.
type Options struct {
	Catalog  *investment.Catalog
	Policy   investment.ReturnPolicy
	Schedule commission.Schedule
	Notifier notify.Dispatcher
	Logger   *zap.Logger
	// StaleAfter overrides how long a commission credit may stay PENDING
	// before reconciliation picks it up.
	StaleAfter time.Duration
}

// Service implements API.
type Service struct {
	tree        *hierarchy.Store
	wallets     Wallets
	investments *investment.Ledger
	commissions *commission.Engine
	approvals   *approval.Queue
	logger      *zap.Logger
}

var _ API = (*Service)(nil)

// New builds the components on top of the given backends and registers the
// approval hooks. The tree and the approval queue write through to store.
func New(tree *hierarchy.Store, wallets Wallets, store storage.Storage, opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = investment.DefaultCatalog()
	}
	if opts.Policy == nil {
		opts.Policy = investment.FixedPolicy{}
	}
	if opts.Schedule.Depth() == 0 {
		opts.Schedule = commission.DefaultSchedule()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NoOp{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	engine := commission.NewEngine(store, store, tree, wallets, opts.Schedule, opts.Logger.Named("commission"))
	engine.Notifier = opts.Notifier

	ledger := investment.NewLedger(store, wallets, opts.Catalog, opts.Policy, engine, tree, opts.Logger.Named("investment"))
	ledger.Notifier = opts.Notifier

	if opts.StaleAfter > 0 {
		engine.StaleAfter = opts.StaleAfter
	}

	tree.Persister = store
	queue := approval.NewQueue(opts.Notifier)
	queue.Store = store
	queue.Logger = opts.Logger.Named("approval")

	s := &Service{
		tree:        tree,
		wallets:     wallets,
		investments: ledger,
		commissions: engine,
		approvals:   queue,
		logger:      opts.Logger,
	}
	s.registerHooks()
	return s
}

// Restore reloads the persisted hierarchy and pending approval requests. It
// must run before the service takes traffic and reports whether any account
// was found.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	accounts, err := s.tree.Restore(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to restore hierarchy: %w", err)
	}
	requests, err := s.approvals.Restore(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to restore approval queue: %w", err)
	}
	s.logger.Info("state restored", zap.Int("accounts", accounts), zap.Int("pending_requests", requests))
	return s.tree.Len() > 0, nil
}

// SetClock replaces the time source of every component.
func (s *Service) SetClock(now func() time.Time) {
	s.tree.Now = now
	s.investments.Now = now
	s.commissions.Now = now
	s.approvals.Now = now
}

// authorityFor returns the account that decides requests from accountID: its
// referrer, or the account itself for a root.
func (s *Service) authorityFor(ctx context.Context, accountID string) (string, error) {
	acct, err := s.tree.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	if acct.Status != models.AccountActive {
		return "", fmt.Errorf("account %s is %s: %w", accountID, acct.Status, models.ErrNotAuthorized)
	}
	if acct.IsRoot() {
		return acct.Id, nil
	}
	return acct.ParentId, nil
}

// canView reports whether caller is the account itself or one of its
// ancestors.
func (s *Service) canView(ctx context.Context, callerID, accountID string) bool {
	if callerID == accountID {
		return true
	}
	ancestors, err := s.tree.AncestorsOf(ctx, accountID, math.MaxInt)
	if err != nil {
		return false
	}
	return slices.Contains(ancestors, callerID)
}

// CreateRoot creates an ACTIVE root account with an open wallet.
func (s *Service) CreateRoot(ctx context.Context) (*models.Account, error) {
	acct, err := s.tree.CreateRoot(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.wallets.Open(ctx, acct.Id); err != nil {
		return nil, fmt.Errorf("failed to open wallet: %w", err)
	}
	s.logger.Info("root account created", zap.String("account_id", acct.Id), zap.String("referral_code", acct.ReferralCode))
	return &acct, nil
}

// RegisterAccount creates a PENDING account referred by the owner of
// referralCode and asks the referrer to admit it.
func (s *Service) RegisterAccount(ctx context.Context, referralCode string) (*models.Account, *models.ApprovalRequest, error) {
	referrer, err := s.tree.ResolveReferralCode(ctx, referralCode)
	if err != nil {
		return nil, nil, err
	}
	if referrer.Status != models.AccountActive {
		return nil, nil, fmt.Errorf("referral code %s: %w", referralCode, models.ErrNotFound)
	}

	acct, err := s.tree.Register(ctx)
	if err != nil {
		return nil, nil, err
	}
	req, err := s.approvals.Submit(ctx, models.USER_REGISTRATION, acct.Id, referrer.Id, models.RegistrationPayload{
		AccountId:  acct.Id,
		ReferrerId: referrer.Id,
	})
	if err != nil {
		_ = s.tree.SetStatus(ctx, acct.Id, models.AccountSuspended)
		return nil, nil, err
	}
	return &acct, req, nil
}

// Account returns the caller's own account.
func (s *Service) Account(ctx context.Context, accountID string) (*models.Account, error) {
	acct, err := s.tree.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// RequestKYC submits a verification request referencing externally stored
// documents.
func (s *Service) RequestKYC(ctx context.Context, accountID, documentRef string) (*models.ApprovalRequest, error) {
	if documentRef == "" {
		return nil, fmt.Errorf("document reference is required: %w", models.ErrInvalidRequest)
	}
	authority, err := s.authorityFor(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.approvals.Submit(ctx, models.KYC_VERIFICATION, accountID, authority, models.KYCPayload{DocumentRef: documentRef})
}

// Subtree returns the caller's downline to maxDepth levels.
func (s *Service) Subtree(ctx context.Context, callerID string, maxDepth int) (*hierarchy.Node, error) {
	return s.tree.Subtree(ctx, callerID, maxDepth)
}

// SearchByReferralCode finds a member of the caller's downline.
func (s *Service) SearchByReferralCode(ctx context.Context, callerID, code string) (*hierarchy.Node, []string, error) {
	return s.tree.FindByReferralCode(ctx, callerID, code)
}

// RequestInvestment records a PENDING_APPROVAL investment and submits it to
// the owner's authority.
func (s *Service) RequestInvestment(ctx context.Context, ownerID string, profile models.InvestmentProfile, amount decimal.Decimal, lockInMonths int) (*models.Investment, *models.ApprovalRequest, error) {
	authority, err := s.authorityFor(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	inv, err := s.investments.Create(ctx, ownerID, profile, amount, lockInMonths)
	if err != nil {
		return nil, nil, err
	}
	req, err := s.approvals.Submit(ctx, models.INVESTMENT, ownerID, authority, models.InvestmentPayload{
		InvestmentId: inv.Id,
		Profile:      inv.Profile,
		Amount:       inv.Amount,
		LockInMonths: inv.LockInMonths,
	})
	if err != nil {
		if cErr := s.investments.Cancel(ctx, inv.Id); cErr != nil {
			s.logger.Error("failed to cancel orphaned investment", zap.String("investment_id", inv.Id), zap.Error(cErr))
		}
		return nil, nil, err
	}
	return inv, req, nil
}

// GetInvestment returns an investment visible to the caller: its owner or one
// of the owner's ancestors. Anything else reads as not found.
func (s *Service) GetInvestment(ctx context.Context, callerID, investmentID string) (*models.Investment, error) {
	inv, err := s.investments.Get(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, callerID, inv.OwnerId) {
		return nil, fmt.Errorf("investment %s: %w", investmentID, models.ErrNotFound)
	}
	return inv, nil
}

// ListInvestments returns the caller's own investments.
func (s *Service) ListInvestments(ctx context.Context, ownerID string) ([]models.Investment, error) {
	return s.investments.ListByOwner(ctx, ownerID)
}

// RequestWithdrawal submits a MATURED investment for payout.
func (s *Service) RequestWithdrawal(ctx context.Context, callerID, investmentID string) (*models.ApprovalRequest, error) {
	inv, err := s.investments.Get(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.OwnerId != callerID {
		return nil, fmt.Errorf("investment %s: %w", investmentID, models.ErrNotFound)
	}
	if inv.Status != models.MATURED {
		return nil, fmt.Errorf("withdraw investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}
	authority, err := s.authorityFor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.approvals.Submit(ctx, models.WITHDRAWAL, callerID, authority, models.WithdrawalPayload{InvestmentId: inv.Id})
}

// RequestBorrow asks the requester's authority to lend amount.
func (s *Service) RequestBorrow(ctx context.Context, requesterID string, amount decimal.Decimal, note string) (*models.ApprovalRequest, error) {
	if err := wallet.ValidateAmount(amount); err != nil {
		return nil, err
	}
	authority, err := s.authorityFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if authority == requesterID {
		return nil, fmt.Errorf("root accounts cannot borrow: %w", models.ErrInvalidRequest)
	}
	return s.approvals.Submit(ctx, models.BORROW_REQUEST, requesterID, authority, models.BorrowPayload{Amount: amount, Note: note})
}

// RequestTransfer asks the requester's authority to approve moving amount to
// another ACTIVE account.
func (s *Service) RequestTransfer(ctx context.Context, requesterID, toAccountID string, amount decimal.Decimal) (*models.ApprovalRequest, error) {
	if err := wallet.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if toAccountID == requesterID {
		return nil, fmt.Errorf("transfer to self: %w", models.ErrInvalidRequest)
	}
	to, err := s.tree.Get(ctx, toAccountID)
	if err != nil {
		return nil, err
	}
	if to.Status != models.AccountActive {
		return nil, fmt.Errorf("account %s: %w", toAccountID, models.ErrNotFound)
	}
	authority, err := s.authorityFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.approvals.Submit(ctx, models.TRANSFER, requesterID, authority, models.TransferPayload{ToAccountId: toAccountID, Amount: amount})
}

// GetRequest returns a request visible to its requester or authority.
func (s *Service) GetRequest(ctx context.Context, callerID, requestID string) (*models.ApprovalRequest, error) {
	req, err := s.approvals.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterId != callerID && req.AuthorityId != callerID {
		return nil, fmt.Errorf("request %s: %w", requestID, models.ErrNotFound)
	}
	return req, nil
}

// ListPending returns requests awaiting the authority. An empty type lists all.
func (s *Service) ListPending(ctx context.Context, authorityID string, t models.ApprovalType) ([]models.ApprovalRequest, error) {
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("approval type %q: %w", t, models.ErrInvalidRequest)
	}
	return s.approvals.ListPending(ctx, authorityID, t), nil
}

// CountPending returns the number of requests of type t awaiting the authority.
func (s *Service) CountPending(ctx context.Context, authorityID string, t models.ApprovalType) (int, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("approval type %q: %w", t, models.ErrInvalidRequest)
	}
	return s.approvals.CountPending(ctx, t, authorityID), nil
}

// Decide approves or rejects a pending request.
func (s *Service) Decide(ctx context.Context, requestID, deciderID string, outcome models.Outcome) (*models.ApprovalRequest, error) {
	return s.approvals.Decide(ctx, requestID, deciderID, outcome)
}

// CancelRequest withdraws the requester's own pending request.
func (s *Service) CancelRequest(ctx context.Context, requestID, requesterID string) (*models.ApprovalRequest, error) {
	return s.approvals.Cancel(ctx, requestID, requesterID)
}

// Balance returns the account's wallet balances.
func (s *Service) Balance(ctx context.Context, accountID string) (models.Balance, error) {
	return s.wallets.BalanceOf(ctx, accountID)
}

// LedgerEntries returns the account's most recent wallet entries.
func (s *Service) LedgerEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	return s.wallets.ListEntries(ctx, accountID, limit)
}

// Commissions returns the commission credits earned by the account.
func (s *Service) Commissions(ctx context.Context, accountID string) ([]models.CommissionCredit, error) {
	return s.commissions.CreditsFor(ctx, accountID)
}

// SweepMatured matures every due investment.
func (s *Service) SweepMatured(ctx context.Context) (int, error) {
	return s.investments.SweepMatured(ctx)
}

// Reconcile retries up to limit unpaid commission credits.
func (s *Service) Reconcile(ctx context.Context, limit int32) (commission.ReconcileResult, error) {
	return s.commissions.Reconcile(ctx, limit)
}

func (s *Service) registerHooks() {
	s.approvals.Register(models.USER_REGISTRATION, approval.Hooks{
		OnApprove: s.admit,
		OnReject:  s.suspend,
		OnCancel:  s.suspend,
	})
	s.approvals.Register(models.INVESTMENT, approval.Hooks{
		OnApprove: func(ctx context.Context, req models.ApprovalRequest) error {
			_, err := s.investments.Activate(ctx, req.Payload.(models.InvestmentPayload).InvestmentId)
			return err
		},
		OnReject: s.cancelInvestment,
		OnCancel: s.cancelInvestment,
	})
	s.approvals.Register(models.KYC_VERIFICATION, approval.Hooks{
		OnApprove: func(ctx context.Context, req models.ApprovalRequest) error {
			return s.tree.MarkKYCVerified(ctx, req.RequesterId)
		},
	})
	s.approvals.Register(models.BORROW_REQUEST, approval.Hooks{
		OnApprove: func(ctx context.Context, req models.ApprovalRequest) error {
			p := req.Payload.(models.BorrowPayload)
			return s.move(ctx, req, req.AuthorityId, req.RequesterId, p.Amount, models.ReasonBorrow)
		},
	})
	s.approvals.Register(models.TRANSFER, approval.Hooks{
		OnApprove: func(ctx context.Context, req models.ApprovalRequest) error {
			p := req.Payload.(models.TransferPayload)
			return s.move(ctx, req, req.RequesterId, p.ToAccountId, p.Amount, models.ReasonTransfer)
		},
	})
	s.approvals.Register(models.WITHDRAWAL, approval.Hooks{
		OnApprove: func(ctx context.Context, req models.ApprovalRequest) error {
			_, err := s.investments.Withdraw(ctx, req.Payload.(models.WithdrawalPayload).InvestmentId, req.RequesterId)
			return err
		},
	})
}

// admit opens the new member's wallet and attaches it under its referrer.
// The wallet goes first: attaching cannot be undone, opening is repeatable.
func (s *Service) admit(ctx context.Context, req models.ApprovalRequest) error {
	p := req.Payload.(models.RegistrationPayload)
	if err := s.wallets.Open(ctx, p.AccountId); err != nil && !errors.Is(err, models.ErrAlreadyExists) {
		return fmt.Errorf("failed to open wallet: %w", err)
	}
	return s.tree.ActivateUnder(ctx, p.AccountId, p.ReferrerId)
}

func (s *Service) suspend(ctx context.Context, req models.ApprovalRequest) error {
	return s.tree.SetStatus(ctx, req.Payload.(models.RegistrationPayload).AccountId, models.AccountSuspended)
}

func (s *Service) cancelInvestment(ctx context.Context, req models.ApprovalRequest) error {
	return s.investments.Cancel(ctx, req.Payload.(models.InvestmentPayload).InvestmentId)
}

// move debits from and credits to. If the credit fails the debit is reversed.
// Each attempt has its own references so a retry after a reversal moves the
// funds again.
func (s *Service) move(ctx context.Context, req models.ApprovalRequest, from, to string, amount decimal.Decimal, reason models.Reason) error {
	ref := req.Id + ":" + uuid.New().String()

	if err := s.wallets.Debit(ctx, from, amount, reason, ref); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if err := s.wallets.Credit(ctx, to, amount, reason, ref); err != nil {
		if rbErr := s.wallets.Credit(ctx, from, amount, models.ReasonReversal, ref); rbErr != nil {
			s.logger.Error("CRITICAL: failed to reverse debit",
				zap.String("request_id", req.Id), zap.String("account_id", from), zap.Error(rbErr))
		}
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}
	return nil
}
