package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateInvestment(t *testing.T) {
	ctx := context.Background()
	s := New()
	inv := &models.Investment{
		Id:      "inv-1",
		OwnerId: "user-a",
		Amount:  decimal.NewFromInt(10000),
		Status:  models.PENDING_APPROVAL,
	}
	require.NoError(t, s.CreateInvestment(ctx, inv))

	t.Run("Duplicate Create", func(t *testing.T) {
		err := s.CreateInvestment(ctx, inv)
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("Success", func(t *testing.T) {
		activated := *inv
		activated.Status = models.ACTIVE
		require.NoError(t, s.UpdateInvestment(ctx, &activated, models.PENDING_APPROVAL))

		got, err := s.GetInvestment(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, models.ACTIVE, got.Status)
	})

	t.Run("Stale Status", func(t *testing.T) {
		cancelled := *inv
		cancelled.Status = models.CANCELLED
		err := s.UpdateInvestment(ctx, &cancelled, models.PENDING_APPROVAL)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := s.GetInvestment(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListDueInvestments(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, s.CreateInvestment(ctx, &models.Investment{Id: "due", Status: models.ACTIVE, MaturityDate: &past}))
	require.NoError(t, s.CreateInvestment(ctx, &models.Investment{Id: "exact", Status: models.ACTIVE, MaturityDate: &now}))
	require.NoError(t, s.CreateInvestment(ctx, &models.Investment{Id: "later", Status: models.ACTIVE, MaturityDate: &future}))
	require.NoError(t, s.CreateInvestment(ctx, &models.Investment{Id: "pending", Status: models.PENDING_APPROVAL}))

	due, err := s.ListDueInvestments(ctx, now)
	require.NoError(t, err)

	var ids []string
	for _, inv := range due {
		ids = append(ids, inv.Id)
	}
	assert.ElementsMatch(t, []string{"due", "exact"}, ids)
}

func TestGetInvestmentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	maturity := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateInvestment(ctx, &models.Investment{Id: "inv-1", Status: models.ACTIVE, MaturityDate: &maturity}))

	got, err := s.GetInvestment(ctx, "inv-1")
	require.NoError(t, err)
	*got.MaturityDate = maturity.AddDate(1, 0, 0)

	again, err := s.GetInvestment(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, maturity, *again.MaturityDate)
}

func TestCredits(t *testing.T) {
	ctx := context.Background()
	s := New()
	credit := &models.CommissionCredit{
		Id:                 "credit-1",
		SourceInvestmentId: "inv-1",
		RecipientId:        "user-a",
		Level:              1,
		Amount:             decimal.NewFromInt(500),
		Status:             models.CreditPending,
	}
	require.NoError(t, s.CreateCredit(ctx, credit))

	t.Run("One Credit Per Investment And Recipient", func(t *testing.T) {
		dup := *credit
		dup.Id = "credit-2"
		err := s.CreateCredit(ctx, &dup)
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("Failed Credits Listed", func(t *testing.T) {
		failed := *credit
		failed.Status = models.CreditFailed
		failed.LastError = "wallet frozen"
		require.NoError(t, s.UpdateCredit(ctx, &failed, models.CreditPending))

		list, err := s.ListFailedCredits(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "wallet frozen", list[0].LastError)
	})

	t.Run("Stale Status", func(t *testing.T) {
		paid := *credit
		paid.Status = models.CreditPaid
		err := s.UpdateCredit(ctx, &paid, models.CreditPending)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})

	t.Run("By Recipient And Investment", func(t *testing.T) {
		byRecipient, err := s.ListCreditsByRecipient(ctx, "user-a")
		require.NoError(t, err)
		assert.Len(t, byRecipient, 1)

		byInvestment, err := s.ListCreditsByInvestment(ctx, "inv-2")
		require.NoError(t, err)
		assert.Empty(t, byInvestment)
	})
}

func TestListStaleCredits(t *testing.T) {
	ctx := context.Background()
	s := New()
	cutoff := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for id, c := range map[string]struct {
		status  models.CreditStatus
		created time.Time
	}{
		"old-pending":   {models.CreditPending, cutoff.Add(-time.Hour)},
		"fresh-pending": {models.CreditPending, cutoff.Add(time.Minute)},
		"old-paid":      {models.CreditPaid, cutoff.Add(-time.Hour)},
	} {
		require.NoError(t, s.CreateCredit(ctx, &models.CommissionCredit{
			Id: id, SourceInvestmentId: "inv-" + id, RecipientId: "user-a", Status: c.status, CreatedAt: c.created,
		}))
	}

	stale, err := s.ListStaleCredits(ctx, cutoff, 10)

	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old-pending", stale[0].Id)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec := storage.AccountRecord{
		Account: models.Account{Id: "user-a", ReferralCode: "ABCD1234", Status: models.AccountPending},
		Version: 1,
	}
	require.NoError(t, s.CreateAccount(ctx, rec))

	t.Run("Duplicate Create", func(t *testing.T) {
		err := s.CreateAccount(ctx, rec)
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("Next Version Accepted", func(t *testing.T) {
		next := rec
		next.Account.Status = models.AccountActive
		next.Version = 2
		require.NoError(t, s.UpdateAccount(ctx, next))

		all, err := s.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, models.AccountActive, all[0].Account.Status)
	})

	t.Run("Stale Version Rejected", func(t *testing.T) {
		stale := rec
		stale.Version = 2
		err := s.UpdateAccount(ctx, stale)
		assert.ErrorIs(t, err, models.ErrVersionConflict)
	})

	t.Run("Unknown Account", func(t *testing.T) {
		err := s.UpdateAccount(ctx, storage.AccountRecord{Account: models.Account{Id: "missing"}, Version: 2})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRequests(t *testing.T) {
	ctx := context.Background()
	s := New()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	req := &models.ApprovalRequest{
		Id:          "req-1",
		Type:        models.WITHDRAWAL,
		Status:      models.PENDING,
		RequesterId: "user-b",
		AuthorityId: "user-a",
		Payload:     models.WithdrawalPayload{InvestmentId: "inv-1"},
		CreatedAt:   created,
	}
	require.NoError(t, s.CreateRequest(ctx, req))

	t.Run("Pending Listed", func(t *testing.T) {
		pending, err := s.ListPendingRequests(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, models.WithdrawalPayload{InvestmentId: "inv-1"}, pending[0].Payload)
	})

	t.Run("Decided Once", func(t *testing.T) {
		decided := *req
		decided.Status = models.APPROVED
		decided.DecidedAt = &created
		require.NoError(t, s.UpdateRequest(ctx, &decided, models.PENDING))

		again := decided
		again.Status = models.REJECTED
		err := s.UpdateRequest(ctx, &again, models.PENDING)
		assert.ErrorIs(t, err, models.ErrAlreadyDecided)

		got, err := s.GetRequest(ctx, "req-1")
		require.NoError(t, err)
		assert.Equal(t, models.APPROVED, got.Status)
		pending, _ := s.ListPendingRequests(ctx)
		assert.Empty(t, pending)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := s.GetRequest(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
