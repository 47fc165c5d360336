package approval

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/notify"
	"github.com/chris/referral-investments/pkg/notify/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestQueue() *Queue {
	q := NewQueue(nil)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return q
}

func investmentPayload(id string) models.InvestmentPayload {
	return models.InvestmentPayload{
		InvestmentId: id,
		Profile:      models.SILVER,
		Amount:       decimal.NewFromInt(10000),
		LockInMonths: 6,
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		q := newTestQueue()

		req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))

		require.NoError(t, err)
		assert.Equal(t, models.PENDING, req.Status)
		assert.Equal(t, "user-a", req.AuthorityId)
		assert.Nil(t, req.DecidedAt)
		assert.Equal(t, 1, q.CountPending(ctx, models.INVESTMENT, "user-a"))
	})

	t.Run("Duplicate Pending", func(t *testing.T) {
		q := newTestQueue()
		_, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)

		_, err = q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))

		assert.ErrorIs(t, err, models.ErrDuplicatePendingRequest)
		assert.Equal(t, 1, q.CountPending(ctx, models.INVESTMENT, "user-a"))
	})

	t.Run("Different Target Is Not A Duplicate", func(t *testing.T) {
		q := newTestQueue()
		_, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)

		_, err = q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-2"))

		assert.NoError(t, err)
		assert.Equal(t, 2, q.CountPending(ctx, models.INVESTMENT, "user-a"))
	})

	t.Run("Payload Mismatch", func(t *testing.T) {
		q := newTestQueue()

		_, err := q.Submit(ctx, models.TRANSFER, "user-b", "user-a", models.KYCPayload{DocumentRef: "doc"})

		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		q := newTestQueue()

		_, err := q.Submit(ctx, models.ApprovalType("LOTTERY"), "user-b", "user-a", models.KYCPayload{})

		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve Runs Hook And Notifies", func(t *testing.T) {
		// Arrange
		dispatcher := new(mocks.Dispatcher)
		dispatcher.On("Notify", mock.Anything, mock.MatchedBy(func(e notify.Event) bool {
			return e.Type == notify.RequestDecided && e.AccountId == "user-b" && e.Data["status"] == "APPROVED"
		})).Return(nil)
		q := NewQueue(dispatcher)
		var approved []string
		q.Register(models.INVESTMENT, Hooks{OnApprove: func(_ context.Context, r models.ApprovalRequest) error {
			approved = append(approved, r.Payload.Target())
			return nil
		}})
		req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)

		// Act
		decided, err := q.Decide(ctx, req.Id, "user-a", models.OutcomeApprove)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.APPROVED, decided.Status)
		require.NotNil(t, decided.DecidedAt)
		assert.Equal(t, []string{"inv-1"}, approved)
		assert.Zero(t, q.CountPending(ctx, models.INVESTMENT, "user-a"))
		assert.Empty(t, q.ListPending(ctx, "user-a", ""))
		dispatcher.AssertExpectations(t)
	})

	t.Run("Registration Decision Uses Registration Event", func(t *testing.T) {
		dispatcher := new(mocks.Dispatcher)
		dispatcher.On("Notify", mock.Anything, mock.MatchedBy(func(e notify.Event) bool {
			return e.Type == notify.RegistrationDecided && e.Data["status"] == "REJECTED"
		})).Return(nil)
		q := NewQueue(dispatcher)
		req, err := q.Submit(ctx, models.USER_REGISTRATION, "user-c", "user-a", models.RegistrationPayload{AccountId: "user-c", ReferrerId: "user-a"})
		require.NoError(t, err)

		_, err = q.Decide(ctx, req.Id, "user-a", models.OutcomeReject)

		require.NoError(t, err)
		dispatcher.AssertExpectations(t)
	})

	t.Run("Wrong Authority", func(t *testing.T) {
		q := newTestQueue()
		req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)

		_, err = q.Decide(ctx, req.Id, "user-b", models.OutcomeApprove)

		assert.ErrorIs(t, err, models.ErrNotAuthorized)
		got, _ := q.Get(ctx, req.Id)
		assert.Equal(t, models.PENDING, got.Status)
	})

	t.Run("Unknown Request", func(t *testing.T) {
		q := newTestQueue()

		_, err := q.Decide(ctx, "missing", "user-a", models.OutcomeApprove)

		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	t.Run("Already Decided", func(t *testing.T) {
		q := newTestQueue()
		req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)
		_, err = q.Decide(ctx, req.Id, "user-a", models.OutcomeReject)
		require.NoError(t, err)

		_, err = q.Decide(ctx, req.Id, "user-a", models.OutcomeApprove)

		assert.ErrorIs(t, err, models.ErrAlreadyDecided)
		got, _ := q.Get(ctx, req.Id)
		assert.Equal(t, models.REJECTED, got.Status)
	})

	t.Run("Hook Failure Leaves Request Pending", func(t *testing.T) {
		// Arrange
		q := newTestQueue()
		calls := 0
		q.Register(models.INVESTMENT, Hooks{OnApprove: func(context.Context, models.ApprovalRequest) error {
			calls++
			if calls == 1 {
				return models.ErrInsufficientBalance
			}
			return nil
		}})
		req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
		require.NoError(t, err)

		// Act
		_, first := q.Decide(ctx, req.Id, "user-a", models.OutcomeApprove)
		pending, _ := q.Get(ctx, req.Id)
		decided, second := q.Decide(ctx, req.Id, "user-a", models.OutcomeApprove)

		// Assert
		assert.ErrorIs(t, first, models.ErrInsufficientBalance)
		assert.Equal(t, models.PENDING, pending.Status)
		require.NoError(t, second)
		assert.Equal(t, models.APPROVED, decided.Status)
	})

	t.Run("Invalid Outcome", func(t *testing.T) {
		q := newTestQueue()

		_, err := q.Decide(ctx, "any", "user-a", models.Outcome("MAYBE"))

		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	})
}

func TestConcurrentDecisionsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue()

	var activations, cancellations atomic.Int32
	q.Register(models.INVESTMENT, Hooks{
		OnApprove: func(context.Context, models.ApprovalRequest) error {
			activations.Add(1)
			time.Sleep(time.Millisecond)
			return nil
		},
		OnReject: func(context.Context, models.ApprovalRequest) error {
			cancellations.Add(1)
			time.Sleep(time.Millisecond)
			return nil
		},
	})
	req, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var wins, losses atomic.Int32
	for i := 0; i < 16; i++ {
		outcome := models.OutcomeApprove
		if i%2 == 1 {
			outcome = models.OutcomeReject
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Decide(ctx, req.Id, "user-a", outcome)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, models.ErrAlreadyDecided):
				losses.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), losses.Load())
	assert.Equal(t, int32(1), activations.Load()+cancellations.Load())
	assert.Zero(t, q.CountPending(ctx, models.INVESTMENT, "user-a"))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Requester Cancels", func(t *testing.T) {
		q := newTestQueue()
		var cancelled bool
		q.Register(models.WITHDRAWAL, Hooks{OnCancel: func(context.Context, models.ApprovalRequest) error {
			cancelled = true
			return nil
		}})
		req, err := q.Submit(ctx, models.WITHDRAWAL, "user-b", "user-a", models.WithdrawalPayload{InvestmentId: "inv-1"})
		require.NoError(t, err)

		got, err := q.Cancel(ctx, req.Id, "user-b")

		require.NoError(t, err)
		assert.Equal(t, models.REQUEST_CANCELLED, got.Status)
		assert.True(t, cancelled)

		// The slot frees up for a fresh request.
		_, err = q.Submit(ctx, models.WITHDRAWAL, "user-b", "user-a", models.WithdrawalPayload{InvestmentId: "inv-1"})
		assert.NoError(t, err)
	})

	t.Run("Only The Requester", func(t *testing.T) {
		q := newTestQueue()
		req, err := q.Submit(ctx, models.WITHDRAWAL, "user-b", "user-a", models.WithdrawalPayload{InvestmentId: "inv-1"})
		require.NoError(t, err)

		_, err = q.Cancel(ctx, req.Id, "user-a")

		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	t.Run("Decided Requests Cannot Be Cancelled", func(t *testing.T) {
		q := newTestQueue()
		req, err := q.Submit(ctx, models.KYC_VERIFICATION, "user-b", "user-a", models.KYCPayload{DocumentRef: "doc-1"})
		require.NoError(t, err)
		_, err = q.Decide(ctx, req.Id, "user-a", models.OutcomeApprove)
		require.NoError(t, err)

		_, err = q.Cancel(ctx, req.Id, "user-b")

		assert.ErrorIs(t, err, models.ErrAlreadyDecided)
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue()
	first, err := q.Submit(ctx, models.INVESTMENT, "user-b", "user-a", investmentPayload("inv-1"))
	require.NoError(t, err)
	second, err := q.Submit(ctx, models.KYC_VERIFICATION, "user-b", "user-a", models.KYCPayload{DocumentRef: "doc"})
	require.NoError(t, err)
	_, err = q.Submit(ctx, models.INVESTMENT, "user-c", "user-x", investmentPayload("inv-9"))
	require.NoError(t, err)

	all := q.ListPending(ctx, "user-a", "")
	kyc := q.ListPending(ctx, "user-a", models.KYC_VERIFICATION)

	require.Len(t, all, 2)
	assert.Equal(t, first.Id, all[0].Id)
	assert.Equal(t, second.Id, all[1].Id)
	require.Len(t, kyc, 1)
	assert.Equal(t, second.Id, kyc[0].Id)
	assert.Equal(t, 1, q.CountPending(ctx, models.INVESTMENT, "user-x"))
	assert.Zero(t, q.CountPending(ctx, models.TRANSFER, "user-a"))
}
