package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/referral-investments/pkg/metrics"
	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/notify"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/chris/referral-investments/pkg/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Distributor pays commission for an activated investment.
type Distributor interface {
	Distribute(ctx context.Context, investmentID string) error
}

// InvestmentRecorder folds an activated amount into the hierarchy aggregates.
type InvestmentRecorder interface {
	RecordInvestment(ctx context.Context, ownerID string, amount decimal.Decimal) error
}

// Ledger drives investments through PENDING_APPROVAL, ACTIVE, MATURED and
// WITHDRAWN, or PENDING_APPROVAL to CANCELLED. Every transition is a
// compare-and-swap on the stored status.
type Ledger struct {
	store       storage.InvestmentStore
	wallets     wallet.Ledger
	catalog     *Catalog
	policy      ReturnPolicy
	commissions Distributor
	hierarchy   InvestmentRecorder
	logger      *zap.Logger

	Notifier notify.Dispatcher
	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewLedger creates a Ledger.
func NewLedger(store storage.InvestmentStore, wallets wallet.Ledger, catalog *Catalog, policy ReturnPolicy, commissions Distributor, hierarchy InvestmentRecorder, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:       store,
		wallets:     wallets,
		catalog:     catalog,
		policy:      policy,
		commissions: commissions,
		hierarchy:   hierarchy,
		logger:      logger,
		Notifier:    notify.NoOp{},
		Now:         time.Now,
	}
}

// Create validates the request against the profile catalog and stores a
// PENDING_APPROVAL investment. No funds move until activation.
func (l *Ledger) Create(ctx context.Context, ownerID string, profile models.InvestmentProfile, amount decimal.Decimal, lockInMonths int) (*models.Investment, error) {
	band, err := l.catalog.Band(profile, amount, lockInMonths)
	if err != nil {
		return nil, err
	}

	now := l.Now().UTC()
	inv := &models.Investment{
		Id:            uuid.New().String(),
		OwnerId:       ownerID,
		Profile:       profile,
		Amount:        amount,
		LockInMonths:  lockInMonths,
		MinReturnRate: band.Min,
		MaxReturnRate: band.Max,
		Status:        models.PENDING_APPROVAL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.store.CreateInvestment(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}
	return inv, nil
}

// Get returns an investment. An ACTIVE investment past its maturity date is
// matured on the way out.
func (l *Ledger) Get(ctx context.Context, investmentID string) (*models.Investment, error) {
	inv, err := l.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if !inv.IsDue(l.Now()) {
		return inv, nil
	}

	matured, err := l.Mature(ctx, investmentID)
	switch {
	case err == nil:
		return matured, nil
	case errors.Is(err, models.ErrInvalidTransition):
		// Matured concurrently.
		return l.store.GetInvestment(ctx, investmentID)
	default:
		l.logger.Error("lazy maturity failed", zap.String("investment_id", investmentID), zap.Error(err))
		return inv, nil
	}
}

// ListByOwner returns the owner's investments, maturing any that are due.
func (l *Ledger) ListByOwner(ctx context.Context, ownerID string) ([]models.Investment, error) {
	investments, err := l.store.ListInvestmentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	now := l.Now()
	for i := range investments {
		if !investments[i].IsDue(now) {
			continue
		}
		if fresh, err := l.Get(ctx, investments[i].Id); err == nil {
			investments[i] = *fresh
		}
	}
	return investments, nil
}

// Activate locks the principal, fixes the maturity date, marks the investment
// ACTIVE and pays commission before returning. Distribute records every level
// before paying any, so when it fails nothing has been paid: the activation is
// undone and the error returned. Credits recorded by the failed attempt are
// reused by the next one.
func (l *Ledger) Activate(ctx context.Context, investmentID string) (*models.Investment, error) {
	// 1. Get the current state of the investment.
	inv, err := l.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.PENDING_APPROVAL {
		return nil, fmt.Errorf("activate investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}

	// 2. Lock the principal. The attempt id keeps a retried activation from
	// being mistaken for one that was rolled back.
	attempt := uuid.New().String()
	lockRef := "activate:" + inv.Id + ":" + attempt
	if err := l.wallets.Lock(ctx, inv.OwnerId, inv.Amount, lockRef); err != nil {
		return nil, fmt.Errorf("failed to lock principal: %w", err)
	}

	// 3. Transition to ACTIVE.
	now := l.Now().UTC()
	maturity := AddMonths(now, inv.LockInMonths)
	active := *inv
	active.Status = models.ACTIVE
	active.ActivatedAt = &now
	active.MaturityDate = &maturity
	active.UpdatedAt = now
	if err := l.store.UpdateInvestment(ctx, &active, models.PENDING_APPROVAL); err != nil {
		l.unlock(ctx, inv, "activate-rollback:"+inv.Id+":"+attempt)
		return nil, fmt.Errorf("failed to activate investment: %w", err)
	}

	// 4. Fan out commission.
	if err := l.commissions.Distribute(ctx, inv.Id); err != nil {
		pending := *inv
		pending.UpdatedAt = l.Now().UTC()
		if rbErr := l.store.UpdateInvestment(ctx, &pending, models.ACTIVE); rbErr != nil {
			l.logger.Error("CRITICAL: failed to roll back activation",
				zap.String("investment_id", inv.Id), zap.Error(rbErr))
		}
		l.unlock(ctx, inv, "activate-rollback:"+inv.Id+":"+attempt)
		return nil, fmt.Errorf("failed to distribute commission: %w", err)
	}

	// 5. Update hierarchy aggregates. They are derived, so a failure here is
	// logged rather than undoing a paid-out activation.
	if err := l.hierarchy.RecordInvestment(ctx, inv.OwnerId, inv.Amount); err != nil {
		l.logger.Error("failed to record investment in hierarchy",
			zap.String("investment_id", inv.Id), zap.Error(err))
	}

	metrics.RecordInvestment(string(inv.Profile), string(models.ACTIVE))
	l.notify(ctx, notify.InvestmentActivated, &active)
	return &active, nil
}

// AddMonths adds n calendar months to t. A day that does not exist in the
// target month is clamped to its last day, so Jan 31 plus one month is the
// end of February rather than early March.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func (l *Ledger) unlock(ctx context.Context, inv *models.Investment, ref string) {
	if err := l.wallets.Unlock(ctx, inv.OwnerId, inv.Amount, ref); err != nil {
		l.logger.Error("CRITICAL: failed to release locked principal",
			zap.String("investment_id", inv.Id), zap.String("owner_id", inv.OwnerId), zap.Error(err))
	}
}

// Cancel moves a PENDING_APPROVAL investment to CANCELLED.
func (l *Ledger) Cancel(ctx context.Context, investmentID string) error {
	inv, err := l.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return err
	}
	if inv.Status != models.PENDING_APPROVAL {
		return fmt.Errorf("cancel investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}

	inv.Status = models.CANCELLED
	inv.UpdatedAt = l.Now().UTC()
	if err := l.store.UpdateInvestment(ctx, inv, models.PENDING_APPROVAL); err != nil {
		return fmt.Errorf("failed to cancel investment: %w", err)
	}
	metrics.RecordInvestment(string(inv.Profile), string(models.CANCELLED))
	return nil
}

// Mature realizes the return of an ACTIVE investment whose lock-in has elapsed.
// The policy's rate must lie within the investment's band.
func (l *Ledger) Mature(ctx context.Context, investmentID string) (*models.Investment, error) {
	inv, err := l.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.ACTIVE {
		return nil, fmt.Errorf("mature investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}
	now := l.Now().UTC()
	if !inv.IsDue(now) {
		return nil, fmt.Errorf("investment %s matures at %s: %w", inv.Id, inv.MaturityDate, models.ErrInvalidTransition)
	}

	rate := l.policy.RealizedRate(*inv)
	band := Band{Min: inv.MinReturnRate, Max: inv.MaxReturnRate}
	if !band.Contains(rate) {
		return nil, fmt.Errorf("rate %s outside %s..%s: %w", rate, band.Min, band.Max, models.ErrRateOutOfBand)
	}
	payable := inv.Amount.Mul(rate)

	matured := *inv
	matured.Status = models.MATURED
	matured.RealizedRate = &rate
	matured.PayableReturn = &payable
	matured.UpdatedAt = now
	if err := l.store.UpdateInvestment(ctx, &matured, models.ACTIVE); err != nil {
		return nil, fmt.Errorf("failed to mature investment: %w", err)
	}

	metrics.RecordInvestment(string(inv.Profile), string(models.MATURED))
	l.notify(ctx, notify.InvestmentMatured, &matured)
	return &matured, nil
}

// SweepMatured matures every due investment. A failing investment is logged
// and skipped so the rest of the batch still completes.
func (l *Ledger) SweepMatured(ctx context.Context) (int, error) {
	due, err := l.store.ListDueInvestments(ctx, l.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due investments: %w", err)
	}

	matured := 0
	for _, inv := range due {
		if _, err := l.Mature(ctx, inv.Id); err != nil {
			if !errors.Is(err, models.ErrInvalidTransition) {
				l.logger.Error("failed to mature investment", zap.String("investment_id", inv.Id), zap.Error(err))
			}
			continue
		}
		matured++
	}
	return matured, nil
}

// Withdraw pays out a MATURED investment owned by requesterID: the principal
// is unlocked, the realized return credited and the investment marked
// WITHDRAWN. Any failure undoes the wallet moves already made.
func (l *Ledger) Withdraw(ctx context.Context, investmentID, requesterID string) (*models.Investment, error) {
	inv, err := l.Get(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.OwnerId != requesterID {
		return nil, models.ErrNotAuthorized
	}
	if inv.Status != models.MATURED {
		return nil, fmt.Errorf("withdraw investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}

	attempt := uuid.New().String()
	ref := func(step string) string { return step + ":" + inv.Id + ":" + attempt }

	// 1. Release the principal.
	if err := l.wallets.Unlock(ctx, inv.OwnerId, inv.Amount, ref("withdraw")); err != nil {
		return nil, fmt.Errorf("failed to unlock principal: %w", err)
	}

	// 2. Credit the realized return.
	payable := decimal.Zero
	if inv.PayableReturn != nil {
		payable = *inv.PayableReturn
	}
	if payable.IsPositive() {
		if err := l.wallets.Credit(ctx, inv.OwnerId, payable, models.ReasonReturn, ref("return")); err != nil {
			l.relock(ctx, inv, ref("withdraw-rollback"))
			return nil, fmt.Errorf("failed to credit return: %w", err)
		}
	}

	// 3. Transition to WITHDRAWN.
	withdrawn := *inv
	withdrawn.Status = models.WITHDRAWN
	withdrawn.UpdatedAt = l.Now().UTC()
	if err := l.store.UpdateInvestment(ctx, &withdrawn, models.MATURED); err != nil {
		if payable.IsPositive() {
			if rbErr := l.wallets.Debit(ctx, inv.OwnerId, payable, models.ReasonReversal, ref("return-rollback")); rbErr != nil {
				l.logger.Error("CRITICAL: failed to reverse return credit",
					zap.String("investment_id", inv.Id), zap.Error(rbErr))
			}
		}
		l.relock(ctx, inv, ref("withdraw-rollback"))
		return nil, fmt.Errorf("failed to withdraw investment: %w", err)
	}

	metrics.RecordInvestment(string(inv.Profile), string(models.WITHDRAWN))
	return &withdrawn, nil
}

func (l *Ledger) relock(ctx context.Context, inv *models.Investment, ref string) {
	if err := l.wallets.Lock(ctx, inv.OwnerId, inv.Amount, ref); err != nil {
		l.logger.Error("CRITICAL: failed to re-lock principal",
			zap.String("investment_id", inv.Id), zap.String("owner_id", inv.OwnerId), zap.Error(err))
	}
}

func (l *Ledger) notify(ctx context.Context, eventType notify.EventType, inv *models.Investment) {
	_ = l.Notifier.Notify(ctx, notify.Event{
		Type:       eventType,
		AccountId:  inv.OwnerId,
		Reference:  inv.Id,
		Data:       map[string]string{"profile": string(inv.Profile), "amount": inv.Amount.String()},
		OccurredAt: l.Now().UTC(),
	})
}
