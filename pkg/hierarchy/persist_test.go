package hierarchy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/chris/referral-investments/pkg/storage"
	"github.com/chris/referral-investments/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unavailableAccounts refuses every account update.
type unavailableAccounts struct {
	*memory.Store
}

func (unavailableAccounts) UpdateAccount(context.Context, storage.AccountRecord) error {
	return errors.New("accounts table unavailable")
}

// ticking returns a clock that advances one second per call.
func ticking() func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("Rebuilds Links And Aggregates", func(t *testing.T) {
		// Arrange
		backend := memory.New()
		s := NewStore()
		s.Persister = backend
		s.Now = ticking()
		root, a, b := chain(t, s)
		c, err := s.Register(ctx)
		require.NoError(t, err)
		require.NoError(t, s.ActivateUnder(ctx, c.Id, root))
		require.NoError(t, s.RecordInvestment(ctx, b, decimal.NewFromInt(10000)))
		require.NoError(t, s.MarkKYCVerified(ctx, a))
		pending, err := s.Register(ctx)
		require.NoError(t, err)

		// Act
		restarted := NewStore()
		restarted.Persister = backend
		n, err := restarted.Restore(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, 5, restarted.Len())

		tree, err := restarted.Subtree(ctx, root, Unbounded)
		require.NoError(t, err)
		assert.Equal(t, 2, tree.DirectReferralCount)
		assert.Equal(t, 3, tree.TotalDownlineCount)
		assert.True(t, decimal.NewFromInt(10000).Equal(tree.TotalDownlineInvestment))
		require.Len(t, tree.Children, 2)
		assert.Equal(t, a, tree.Children[0].Account.Id)
		assert.Equal(t, c.Id, tree.Children[1].Account.Id)
		assert.True(t, tree.Children[0].Account.KYCVerified)

		ancestors, err := restarted.AncestorsOf(ctx, b, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{a, root}, ancestors)

		acct, err := restarted.ResolveReferralCode(ctx, pending.ReferralCode)
		require.NoError(t, err)
		assert.Equal(t, models.AccountPending, acct.Status)
	})

	t.Run("Restored Store Keeps Writing Through", func(t *testing.T) {
		backend := memory.New()
		s := NewStore()
		s.Persister = backend
		root, _, _ := chain(t, s)
		late, err := s.Register(ctx)
		require.NoError(t, err)

		restarted := NewStore()
		restarted.Persister = backend
		_, err = restarted.Restore(ctx)
		require.NoError(t, err)
		require.NoError(t, restarted.ActivateUnder(ctx, late.Id, root))

		again := NewStore()
		again.Persister = backend
		_, err = again.Restore(ctx)
		require.NoError(t, err)
		acct, err := again.Get(ctx, late.Id)
		require.NoError(t, err)
		assert.Equal(t, root, acct.ParentId)
		assert.Equal(t, models.AccountActive, acct.Status)
	})

	t.Run("Unknown Parent", func(t *testing.T) {
		backend := memory.New()
		require.NoError(t, backend.CreateAccount(ctx, storage.AccountRecord{
			Account: models.Account{Id: "orphan", ReferralCode: "ORPHAN01", ParentId: "gone", Status: models.AccountActive},
			Version: 1,
		}))
		s := NewStore()
		s.Persister = backend

		_, err := s.Restore(ctx)

		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("No Persister", func(t *testing.T) {
		s := NewStore()
		chain(t, s)

		n, err := s.Restore(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 3, s.Len())
	})
}

func TestWriteThroughFailureLeavesForestUnchanged(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := NewStore()
	s.Persister = unavailableAccounts{memory.New()}
	root, err := s.CreateRoot(ctx)
	require.NoError(t, err)
	child, err := s.Register(ctx)
	require.NoError(t, err)

	// Act
	err = s.ActivateUnder(ctx, child.Id, root.Id)

	// Assert
	require.Error(t, err)
	acct, _ := s.Get(ctx, child.Id)
	assert.Equal(t, models.AccountPending, acct.Status)
	assert.Empty(t, acct.ParentId)
	tree, _ := s.Subtree(ctx, root.Id, Unbounded)
	assert.Zero(t, tree.TotalDownlineCount)
	assert.Empty(t, tree.Children)
}
