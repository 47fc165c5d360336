package commission

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
	"go.uber.org/zap"
)

// AncestorSource lists an account's ancestors, nearest first.
type AncestorSource interface {
	AncestorsOf(ctx context.Context, accountID string, limit int) ([]string, error)
}

// Engine pays commission on activated investments. Each ancestor's credit is
// an independent unit keyed by investment and recipient: one ancestor's wallet
// failure never blocks the others.
type Engine struct {
	investments storage.InvestmentReader
	credits     storage.CommissionStore
	hierarchy   AncestorSource
	wallets     wallet.Ledger
	schedule    Schedule
	logger      *zap.Logger

	Notifier notify.Dispatcher
	// StaleAfter is how long a credit may stay PENDING before Reconcile
	// treats it as abandoned.
	StaleAfter time.Duration
	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// DefaultStaleAfter is the default StaleAfter.
const DefaultStaleAfter = 10 * time.Minute

// NewEngine creates an Engine.
func NewEngine(investments storage.InvestmentReader, credits storage.CommissionStore, hierarchy AncestorSource, wallets wallet.Ledger, schedule Schedule, logger *zap.Logger) *Engine {
	return &Engine{
		investments: investments,
		credits:     credits,
		hierarchy:   hierarchy,
		wallets:     wallets,
		schedule:    schedule,
		logger:      logger,
		Notifier:    notify.NoOp{},
		StaleAfter:  DefaultStaleAfter,
		Now:         time.Now,
	}
}

// Schedule returns the engine's rate schedule.
func (e *Engine) Schedule() Schedule {
	return e.schedule
}

// Distribute credits the investor's ancestors. Every level is recorded as a
// PENDING credit before any wallet is touched, so a storage error leaves
// nothing paid and a later call fills in the missing levels. Credits already
// recorded for a recipient are reused, never duplicated. Wallet failures are
// recorded on the credit for Reconcile and do not fail the call.
func (e *Engine) Distribute(ctx context.Context, investmentID string) error {
	// 1. Only ACTIVE investments earn commission.
	inv, err := e.investments.GetInvestment(ctx, investmentID)
	if err != nil {
		return fmt.Errorf("failed to get investment: %w", err)
	}
	if inv.Status != models.ACTIVE {
		return fmt.Errorf("distribute for investment in status %s: %w", inv.Status, models.ErrInvalidTransition)
	}

	// 2. Walk up to schedule depth ancestors. Shorter chains pay fewer levels.
	ancestors, err := e.hierarchy.AncestorsOf(ctx, inv.OwnerId, e.schedule.Depth())
	if err != nil {
		return fmt.Errorf("failed to get ancestors: %w", err)
	}

	existing, err := e.credits.ListCreditsByInvestment(ctx, investmentID)
	if err != nil {
		return fmt.Errorf("failed to list existing credits: %w", err)
	}
	recorded := make(map[string]models.CommissionCredit, len(existing))
	for _, c := range existing {
		recorded[c.RecipientId] = c
	}

	// 3. Record every level before paying any.
	var due []*models.CommissionCredit
	for i, recipientID := range ancestors {
		level := i + 1
		rate := e.schedule.Rate(level)
		if !rate.IsPositive() {
			continue
		}

		if c, ok := recorded[recipientID]; ok {
			if c.Status == models.CreditPending {
				due = append(due, &c)
			}
			continue
		}

		now := e.Now().UTC()
		credit := &models.CommissionCredit{
			Id:                 uuid.New().String(),
			SourceInvestmentId: inv.Id,
			RecipientId:        recipientID,
			Level:              level,
			Rate:               rate,
			Amount:             inv.Amount.Mul(rate),
			Status:             models.CreditPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := e.credits.CreateCredit(ctx, credit); err != nil {
			if errors.Is(err, models.ErrAlreadyExists) {
				// A concurrent Distribute owns this recipient.
				continue
			}
			return fmt.Errorf("failed to record level %d credit: %w", level, err)
		}
		due = append(due, credit)
	}

	// 4. Pay.
	for _, credit := range due {
		e.pay(ctx, credit, models.CreditPending)
	}
	return nil
}

// pay credits the recipient's wallet and records the outcome. The credit id
// is the wallet reference, so a repeat after a lost status update is applied once.
func (e *Engine) pay(ctx context.Context, credit *models.CommissionCredit, from models.CreditStatus) bool {
	credit.Attempts++
	walletErr := e.wallets.Credit(ctx, credit.RecipientId, credit.Amount, models.ReasonCommission, credit.Id)

	credit.UpdatedAt = e.Now().UTC()
	if walletErr != nil {
		credit.Status = models.CreditFailed
		if !wallet.IsRetryable(walletErr) {
			credit.Status = models.CreditVoid
		}
		credit.LastError = walletErr.Error()
		e.logger.Warn("commission credit failed",
			zap.String("status", string(credit.Status)),
			zap.String("credit_id", credit.Id),
			zap.String("investment_id", credit.SourceInvestmentId),
			zap.String("recipient_id", credit.RecipientId),
			zap.Int("level", credit.Level),
			zap.Int("attempts", credit.Attempts),
			zap.Error(walletErr))
	} else {
		credit.Status = models.CreditPaid
		credit.LastError = ""
	}

	if err := e.credits.UpdateCredit(ctx, credit, from); err != nil {
		e.logger.Error("failed to record credit outcome",
			zap.String("credit_id", credit.Id),
			zap.String("status", string(credit.Status)),
			zap.Error(err))
		return false
	}
	metrics.RecordCredit(credit.Level, string(credit.Status))

	if walletErr != nil {
		return false
	}
	_ = e.Notifier.Notify(ctx, notify.Event{
		Type:      notify.CommissionCredited,
		AccountId: credit.RecipientId,
		Reference: credit.SourceInvestmentId,
		Data: map[string]string{
			"level":  fmt.Sprintf("%d", credit.Level),
			"amount": credit.Amount.String(),
		},
		OccurredAt: credit.UpdatedAt,
	})
	return true
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Attempted int
	Paid      int
	Failed    int
	Voided    int
}

// Reconcile retries up to limit unpaid credits: FAILED ones first, then
// PENDING ones untouched for StaleAfter, which a crash or a lost status
// update can leave behind. Credits of a cancelled investment are voided, and
// credits of an investment still awaiting approval are left for Distribute.
// Each credit is handled on its own; one failure never stops the batch.
func (e *Engine) Reconcile(ctx context.Context, limit int32) (ReconcileResult, error) {
	var result ReconcileResult

	unpaid, err := e.credits.ListFailedCredits(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("failed to list failed credits: %w", err)
	}
	if remaining := limit - int32(len(unpaid)); remaining > 0 {
		stale, err := e.credits.ListStaleCredits(ctx, e.Now().UTC().Add(-e.StaleAfter), remaining)
		if err != nil {
			return result, fmt.Errorf("failed to list stale credits: %w", err)
		}
		unpaid = append(unpaid, stale...)
	}

	for i := range unpaid {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		credit := unpaid[i]
		from := credit.Status

		inv, err := e.investments.GetInvestment(ctx, credit.SourceInvestmentId)
		if err != nil {
			e.logger.Error("failed to get investment for credit",
				zap.String("credit_id", credit.Id), zap.Error(err))
			continue
		}
		switch inv.Status {
		case models.PENDING_APPROVAL:
			continue
		case models.CANCELLED:
			if e.void(ctx, &credit, from) {
				result.Voided++
			}
			continue
		}

		result.Attempted++
		if e.pay(ctx, &credit, from) {
			result.Paid++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// void closes a credit that must never be paid.
func (e *Engine) void(ctx context.Context, credit *models.CommissionCredit, from models.CreditStatus) bool {
	credit.Status = models.CreditVoid
	credit.LastError = "source investment cancelled"
	credit.UpdatedAt = e.Now().UTC()
	if err := e.credits.UpdateCredit(ctx, credit, from); err != nil {
		e.logger.Error("failed to void credit", zap.String("credit_id", credit.Id), zap.Error(err))
		return false
	}
	metrics.RecordCredit(credit.Level, string(credit.Status))
	return true
}

// CreditsFor returns the credits paid (or owed) to an account.
func (e *Engine) CreditsFor(ctx context.Context, recipientID string) ([]models.CommissionCredit, error) {
	credits, err := e.credits.ListCreditsByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return credits, nil
}
