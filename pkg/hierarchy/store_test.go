package hierarchy

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds root -> a -> b and returns their ids.
func chain(t *testing.T, s *Store) (string, string, string) {
	t.Helper()
	ctx := context.Background()

	root, err := s.CreateRoot(ctx)
	require.NoError(t, err)
	a, err := s.Register(ctx)
	require.NoError(t, err)
	b, err := s.Register(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ActivateUnder(ctx, a.Id, root.Id))
	require.NoError(t, s.ActivateUnder(ctx, b.Id, a.Id))
	return root.Id, a.Id, b.Id
}

func TestAttach(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := NewStore()
		root, a, b := chain(t, s)

		acct, err := s.Get(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, a, acct.ParentId)
		assert.Equal(t, models.AccountActive, acct.Status)

		tree, err := s.Subtree(ctx, root, Unbounded)
		require.NoError(t, err)
		assert.Equal(t, 1, tree.DirectReferralCount)
		assert.Equal(t, 2, tree.TotalDownlineCount)
	})

	t.Run("Cycle Rejected", func(t *testing.T) {
		s := NewStore()
		root, _, b := chain(t, s)
		before, err := s.Subtree(ctx, root, Unbounded)
		require.NoError(t, err)

		err = s.Attach(ctx, root, b)

		assert.ErrorIs(t, err, models.ErrCycle)
		after, err := s.Subtree(ctx, root, Unbounded)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		acct, _ := s.Get(ctx, root)
		assert.True(t, acct.IsRoot())
	})

	t.Run("Self Attach Rejected", func(t *testing.T) {
		s := NewStore()
		root, err := s.CreateRoot(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, s.Attach(ctx, root.Id, root.Id), models.ErrCycle)
	})

	t.Run("Already Attached", func(t *testing.T) {
		s := NewStore()
		root, a, b := chain(t, s)

		err := s.Attach(ctx, b, root)

		assert.ErrorIs(t, err, models.ErrAlreadyAttached)
		acct, _ := s.Get(ctx, b)
		assert.Equal(t, a, acct.ParentId)
	})

	t.Run("Unknown Account", func(t *testing.T) {
		s := NewStore()
		root, err := s.CreateRoot(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, s.Attach(ctx, "missing", root.Id), models.ErrNotFound)
		assert.ErrorIs(t, s.Attach(ctx, root.Id, "missing"), models.ErrNotFound)
	})

	t.Run("Activate Requires Pending", func(t *testing.T) {
		s := NewStore()
		root, err := s.CreateRoot(ctx)
		require.NoError(t, err)
		other, err := s.CreateRoot(ctx)
		require.NoError(t, err)

		err = s.ActivateUnder(ctx, other.Id, root.Id)

		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		acct, _ := s.Get(ctx, other.Id)
		assert.True(t, acct.IsRoot())
	})

	t.Run("Attaching A Subtree Carries Its Aggregates", func(t *testing.T) {
		s := NewStore()
		root, _, _ := chain(t, s)
		otherRoot, err := s.CreateRoot(ctx)
		require.NoError(t, err)
		child, err := s.Register(ctx)
		require.NoError(t, err)
		require.NoError(t, s.ActivateUnder(ctx, child.Id, otherRoot.Id))
		require.NoError(t, s.RecordInvestment(ctx, child.Id, decimal.NewFromInt(700)))

		require.NoError(t, s.Attach(ctx, otherRoot.Id, root))

		tree, err := s.Subtree(ctx, root, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, tree.TotalDownlineCount)
		assert.True(t, decimal.NewFromInt(700).Equal(tree.TotalDownlineInvestment))
	})
}

func TestAggregatesAfterRandomAttaches(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	rng := rand.New(rand.NewSource(42))

	var roots, ids []string
	for i := 0; i < 5; i++ {
		root, err := s.CreateRoot(ctx)
		require.NoError(t, err)
		roots = append(roots, root.Id)
		ids = append(ids, root.Id)
	}
	for i := 0; i < 200; i++ {
		acct, err := s.Register(ctx)
		require.NoError(t, err)
		parent := ids[rng.Intn(len(ids))]
		require.NoError(t, s.ActivateUnder(ctx, acct.Id, parent))
		require.NoError(t, s.RecordInvestment(ctx, acct.Id, decimal.NewFromInt(int64(rng.Intn(1000)))))
		ids = append(ids, acct.Id)
	}
	// Merge the extra trees under random nodes of the first one; cycles must be refused.
	for _, r := range roots[1:] {
		target := ids[rng.Intn(len(ids))]
		if err := s.Attach(ctx, r, target); err != nil {
			assert.ErrorIs(t, err, models.ErrCycle)
		}
	}

	// Forest invariant: every parent chain terminates within len(ids) steps.
	for _, id := range ids {
		steps := 0
		for cur := id; cur != ""; steps++ {
			require.Less(t, steps, len(ids))
			acct, err := s.Get(ctx, cur)
			require.NoError(t, err)
			cur = acct.ParentId
		}
	}

	// Aggregate correctness on every tree that is still a root.
	for _, r := range roots {
		acct, _ := s.Get(ctx, r)
		if !acct.IsRoot() {
			continue
		}
		tree, err := s.Subtree(ctx, r, Unbounded)
		require.NoError(t, err)
		tree.Walk(func(n *Node) {
			count := 0
			for _, c := range n.Children {
				count += 1 + c.TotalDownlineCount
			}
			assert.Equal(t, count, n.TotalDownlineCount)
			assert.Equal(t, len(n.Children), n.DirectReferralCount)
		})
	}
}

func TestSubtree(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, a, b := chain(t, s)
	c, err := s.Register(ctx)
	require.NoError(t, err)
	require.NoError(t, s.ActivateUnder(ctx, c.Id, root))

	t.Run("Depth Limited", func(t *testing.T) {
		tree, err := s.Subtree(ctx, root, 1)

		require.NoError(t, err)
		require.Len(t, tree.Children, 2)
		assert.Equal(t, a, tree.Children[0].Account.Id)
		assert.Equal(t, c.Id, tree.Children[1].Account.Id)
		assert.Empty(t, tree.Children[0].Children)
		assert.Equal(t, 1, tree.Children[0].TotalDownlineCount)
	})

	t.Run("Unbounded", func(t *testing.T) {
		tree, err := s.Subtree(ctx, root, Unbounded)

		require.NoError(t, err)
		require.Len(t, tree.Children[0].Children, 1)
		assert.Equal(t, b, tree.Children[0].Children[0].Account.Id)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := s.Subtree(ctx, "missing", Unbounded)

		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestFindByReferralCode(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, a, b := chain(t, s)
	bAcct, _ := s.Get(ctx, b)
	rootAcct, _ := s.Get(ctx, root)

	t.Run("Inside Own Subtree", func(t *testing.T) {
		found, path, err := s.FindByReferralCode(ctx, root, bAcct.ReferralCode)

		require.NoError(t, err)
		assert.Equal(t, b, found.Account.Id)
		assert.Equal(t, []string{root, a, b}, path)
	})

	t.Run("Outside Subtree Looks Missing", func(t *testing.T) {
		_, _, outsideErr := s.FindByReferralCode(ctx, b, rootAcct.ReferralCode)
		_, _, missingErr := s.FindByReferralCode(ctx, b, "ZZZZZZZZ")

		assert.ErrorIs(t, outsideErr, models.ErrNotFound)
		assert.ErrorIs(t, missingErr, models.ErrNotFound)
		assert.Equal(t, missingErr.Error(), outsideErr.Error())
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := s.FindByReferralCode(ctx, root, "bad code")

		assert.ErrorIs(t, err, models.ErrMalformedReferralCode)
	})
}

func TestAncestorsOf(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, a, b := chain(t, s)

	ancestors, err := s.AncestorsOf(ctx, b, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{a, root}, ancestors)

	ancestors, err = s.AncestorsOf(ctx, b, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, ancestors)

	ancestors, err = s.AncestorsOf(ctx, root, 3)
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestRecordInvestment(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, a, b := chain(t, s)

	require.NoError(t, s.RecordInvestment(ctx, b, decimal.NewFromInt(10000)))

	tree, err := s.Subtree(ctx, root, Unbounded)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10000).Equal(tree.TotalDownlineInvestment))
	assert.True(t, decimal.NewFromInt(10000).Equal(tree.Children[0].TotalDownlineInvestment))
	assert.True(t, tree.Children[0].Children[0].TotalDownlineInvestment.IsZero())

	require.NoError(t, s.RecordInvestment(ctx, b, decimal.NewFromInt(-10000)))
	tree, _ = s.Subtree(ctx, a, 0)
	assert.True(t, tree.TotalDownlineInvestment.IsZero())
}

func TestConcurrentAttachAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, err := s.CreateRoot(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			acct, err := s.Register(ctx)
			if assert.NoError(t, err) {
				assert.NoError(t, s.ActivateUnder(ctx, acct.Id, root.Id))
			}
		}()
		go func() {
			defer wg.Done()
			_, err := s.Subtree(ctx, root.Id, Unbounded)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tree, err := s.Subtree(ctx, root.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, tree.DirectReferralCount)
	assert.Equal(t, 50, tree.TotalDownlineCount)
}
