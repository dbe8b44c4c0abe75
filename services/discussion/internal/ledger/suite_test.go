package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// runLedgerSuite exercises a Ledger implementation. newLedger must return an
// empty ledger.
func runLedgerSuite(t *testing.T, newLedger func(t *testing.T) Ledger) {
	ctx := context.Background()

	t.Run("toggle twice restores state", func(t *testing.T) {
		l := newLedger(t)
		c1 := target.Of(target.Comment, 1)

		res, err := l.Toggle(ctx, 10, c1)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Liked: true, LikeCount: 1}, res)

		liked, err := l.HasLiked(ctx, 10, c1)
		require.NoError(t, err)
		assert.True(t, liked)

		res, err = l.Toggle(ctx, 10, c1)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Liked: false, LikeCount: 0}, res)

		liked, err = l.HasLiked(ctx, 10, c1)
		require.NoError(t, err)
		assert.False(t, liked)
	})

	t.Run("involution from liked state", func(t *testing.T) {
		l := newLedger(t)
		p := target.Of(target.Post, 3)
		_, err := l.Toggle(ctx, 1, p)
		require.NoError(t, err)
		_, err = l.Toggle(ctx, 2, p)
		require.NoError(t, err)

		before, err := l.Count(ctx, p)
		require.NoError(t, err)
		require.EqualValues(t, 2, before)

		_, err = l.Toggle(ctx, 1, p)
		require.NoError(t, err)
		res, err := l.Toggle(ctx, 1, p)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, before, res.LikeCount)
	})

	t.Run("kinds do not collide", func(t *testing.T) {
		l := newLedger(t)
		for _, k := range target.Kinds {
			_, err := l.Toggle(ctx, 1, target.Of(k, 5))
			require.NoError(t, err)
		}
		for _, k := range target.Kinds {
			n, err := l.Count(ctx, target.Of(k, 5))
			require.NoError(t, err)
			assert.EqualValues(t, 1, n, k)
		}
		_, err := l.Toggle(ctx, 1, target.Of(target.Reply, 5))
		require.NoError(t, err)
		n, err := l.Count(ctx, target.Of(target.Comment, 5))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("count matches listing", func(t *testing.T) {
		l := newLedger(t)
		r := target.Of(target.Reply, 7)
		for _, u := range []int64{1, 2, 3, 4} {
			_, err := l.Toggle(ctx, u, r)
			require.NoError(t, err)
		}
		_, err := l.Toggle(ctx, 3, r)
		require.NoError(t, err)

		n, err := l.Count(ctx, r)
		require.NoError(t, err)
		likes, err := l.LikesForTarget(ctx, r)
		require.NoError(t, err)
		assert.EqualValues(t, len(likes), n)
		assert.Equal(t, []int64{4, 2, 1}, likeUsers(likes))
		for _, like := range likes {
			assert.Equal(t, r, like.Target)
			assert.False(t, like.CreatedAt.IsZero())
		}
	})

	t.Run("likes for user newest first", func(t *testing.T) {
		l := newLedger(t)
		for _, tg := range []target.Target{
			target.Of(target.Comment, 1),
			target.Of(target.Post, 2),
			target.Of(target.Reply, 3),
		} {
			_, err := l.Toggle(ctx, 9, tg)
			require.NoError(t, err)
		}
		likes, err := l.LikesForUser(ctx, 9)
		require.NoError(t, err)
		require.Len(t, likes, 3)
		assert.Equal(t, target.Of(target.Reply, 3), likes[0].Target)
		assert.Equal(t, target.Of(target.Comment, 1), likes[2].Target)

		empty, err := l.LikesForUser(ctx, 8)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("batch counts cover every id", func(t *testing.T) {
		l := newLedger(t)
		_, _ = l.Toggle(ctx, 1, target.Of(target.Comment, 1))
		_, _ = l.Toggle(ctx, 2, target.Of(target.Comment, 1))
		_, _ = l.Toggle(ctx, 1, target.Of(target.Comment, 3))
		_, _ = l.Toggle(ctx, 1, target.Of(target.Reply, 2))

		counts, err := l.BatchCounts(ctx, target.Comment, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{1: 2, 2: 0, 3: 1}, counts)

		counts, err = l.BatchCounts(ctx, target.Comment, nil)
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("remove all for target", func(t *testing.T) {
		l := newLedger(t)
		p := target.Of(target.Post, 1)
		other := target.Of(target.Post, 2)
		for _, u := range []int64{1, 2, 3} {
			_, _ = l.Toggle(ctx, u, p)
		}
		_, _ = l.Toggle(ctx, 1, other)

		n, err := l.RemoveAllForTarget(ctx, p)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		count, err := l.Count(ctx, p)
		require.NoError(t, err)
		assert.Zero(t, count)

		likes, err := l.LikesForUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, other, likes[0].Target)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.Toggle(ctx, 0, target.Of(target.Post, 1))
		assert.True(t, errors.Is(err, ErrInvalidInput))
		_, err = l.Toggle(ctx, 1, target.Of(target.Kind("story"), 1))
		assert.True(t, errors.Is(err, ErrInvalidInput))
		_, err = l.Count(ctx, target.Of(target.Post, 0))
		assert.True(t, errors.Is(err, ErrInvalidInput))
		_, err = l.BatchCounts(ctx, target.Kind(""), []int64{1})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("concurrent toggles keep at most one record", func(t *testing.T) {
		l := newLedger(t)
		c1 := target.Of(target.Comment, 1)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Toggle(ctx, 42, c1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		n, err := l.Count(ctx, c1)
		require.NoError(t, err)
		likes, err := l.LikesForTarget(ctx, c1)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, int64(1))
		assert.EqualValues(t, len(likes), n)
	})
}

func likeUsers(likes []Like) []int64 {
	out := make([]int64, len(likes))
	for i, l := range likes {
		out[i] = l.UserID
	}
	return out
}
