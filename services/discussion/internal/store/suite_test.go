package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// runContentStoreSuite exercises a ContentStore implementation. newStore must
// return an empty store.
func runContentStoreSuite(t *testing.T, newStore func(t *testing.T) ContentStore) {
	t.Run("post lifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, err := s.CreatePost(ctx, Post{AuthorID: 7, Title: "hello", Content: "world", Published: true})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.True(t, p.Published)
		assert.Zero(t, p.ViewCount)
		assert.False(t, p.IsDeleted)

		got, err := s.GetPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Title)

		updated, err := s.UpdatePost(ctx, p.ID, "hi", "there")
		require.NoError(t, err)
		assert.Equal(t, "hi", updated.Title)
		assert.Equal(t, "there", updated.Content)

		unpublished, err := s.SetPublished(ctx, p.ID, false)
		require.NoError(t, err)
		assert.False(t, unpublished.Published)

		require.NoError(t, s.IncrementViews(ctx, p.ID))
		require.NoError(t, s.IncrementViews(ctx, p.ID))
		got, err = s.GetPost(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.ViewCount)

		_, err = s.UpdatePost(ctx, p.ID+1000, "x", "y")
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = s.SetPublished(ctx, p.ID+1000, true)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.NoError(t, s.IncrementViews(ctx, p.ID+1000))
	})

	t.Run("post listings", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.CreatePost(ctx, Post{AuthorID: 1, Title: "a", Content: "a", Published: true})
		require.NoError(t, err)
		second, err := s.CreatePost(ctx, Post{AuthorID: 2, Title: "b", Content: "b", Published: true})
		require.NoError(t, err)
		draft, err := s.CreatePost(ctx, Post{AuthorID: 1, Title: "c", Content: "c", Published: false})
		require.NoError(t, err)

		published, err := s.ListPublishedPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{second.ID, first.ID}, postIDs(published))

		byAuthor, err := s.ListPostsByAuthor(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{draft.ID, first.ID}, postIDs(byAuthor))
	})

	t.Run("permanent post delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, _ := s.CreatePost(ctx, Post{AuthorID: 1, Title: "t", Content: "c", Published: true})
		c, err := s.CreateComment(ctx, Comment{PostID: p.ID, AuthorID: 2, Content: "c"})
		require.NoError(t, err)
		r, err := s.CreateReply(ctx, Reply{PostID: p.ID, RootCommentID: c.ID, ParentCommentID: &c.ID, AuthorID: 3, Content: "r", Depth: 1}, nil)
		require.NoError(t, err)

		require.NoError(t, s.DeletePost(ctx, p.ID))
		_, err = s.GetPost(ctx, p.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = s.GetComment(ctx, c.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = s.GetReply(ctx, r.ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		assert.NoError(t, s.DeletePost(ctx, p.ID), "deleting an absent post is a no-op")
	})

	t.Run("comments", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, _ := s.CreatePost(ctx, Post{AuthorID: 1, Title: "t", Content: "c", Published: true})
		c1, err := s.CreateComment(ctx, Comment{PostID: p.ID, AuthorID: 5, Content: "first"})
		require.NoError(t, err)
		c2, err := s.CreateComment(ctx, Comment{PostID: p.ID, AuthorID: 5, Content: "second"})
		require.NoError(t, err)

		_, err = s.CreateComment(ctx, Comment{PostID: p.ID + 1000, AuthorID: 5, Content: "orphan"})
		assert.True(t, errors.Is(err, ErrNotFound))

		list, err := s.ListCommentsByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{c1.ID, c2.ID}, commentIDs(list))

		feed, err := s.ListCommentsByAuthor(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, []int64{c2.ID, c1.ID}, commentIDs(feed))

		updated, err := s.UpdateComment(ctx, c1.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
		_, err = s.UpdateComment(ctx, c1.ID+1000, "x")
		assert.True(t, errors.Is(err, ErrNotFound))

		require.NoError(t, s.SoftDeleteComment(ctx, c1.ID))
		require.NoError(t, s.SoftDeleteComment(ctx, c1.ID))
		assert.True(t, errors.Is(s.SoftDeleteComment(ctx, c1.ID+1000), ErrNotFound))

		list, err = s.ListCommentsByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{c2.ID}, commentIDs(list))

		deleted, err := s.GetComment(ctx, c1.ID)
		require.NoError(t, err)
		assert.True(t, deleted.IsDeleted)

		still, err := s.UpdateComment(ctx, c1.ID, "after delete")
		require.NoError(t, err)
		assert.True(t, still.IsDeleted, "update must not resurrect")

		counts, err := s.CountCommentsByPosts(ctx, []int64{p.ID, p.ID + 1000})
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{p.ID: 1, p.ID + 1000: 0}, counts)
	})

	t.Run("replies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, _ := s.CreatePost(ctx, Post{AuthorID: 1, Title: "t", Content: "c", Published: true})
		c, _ := s.CreateComment(ctx, Comment{PostID: p.ID, AuthorID: 1, Content: "c"})

		r1, err := s.CreateReply(ctx, Reply{PostID: p.ID, RootCommentID: c.ID, ParentCommentID: &c.ID, AuthorID: 9, Content: "r1", Depth: 1}, nil)
		require.NoError(t, err)
		assert.Equal(t, Path{r1.ID}, r1.Path)

		r2, err := s.CreateReply(ctx, Reply{PostID: p.ID, RootCommentID: c.ID, ParentReplyID: &r1.ID, AuthorID: 9, Content: "r2", Depth: 2}, r1.Path)
		require.NoError(t, err)
		assert.Equal(t, Path{r1.ID, r2.ID}, r2.Path)

		r3, err := s.CreateReply(ctx, Reply{PostID: p.ID, RootCommentID: c.ID, ParentCommentID: &c.ID, AuthorID: 9, Content: "r3", Depth: 1}, nil)
		require.NoError(t, err)

		got, err := s.GetReply(ctx, r2.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Depth)
		require.NotNil(t, got.ParentReplyID)
		assert.Equal(t, r1.ID, *got.ParentReplyID)
		assert.Nil(t, got.ParentCommentID)

		byPost, err := s.ListRepliesByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{r1.ID, r2.ID, r3.ID}, replyIDs(byPost))

		under, err := s.ListRepliesUnderComment(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{r1.ID, r2.ID, r3.ID}, replyIDs(under))

		direct, err := s.ListRepliesByComment(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{r1.ID, r3.ID}, replyIDs(direct))

		children, err := s.ListRepliesByParentReply(ctx, r1.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{r2.ID}, replyIDs(children))

		feed, err := s.ListRepliesByAuthor(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, []int64{r3.ID, r2.ID, r1.ID}, replyIDs(feed))

		require.NoError(t, s.SoftDeleteReply(ctx, r1.ID))
		byPost, err = s.ListRepliesByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{r2.ID, r3.ID}, replyIDs(byPost), "children of a deleted reply stay listed")

		edited, err := s.UpdateReply(ctx, r1.ID, "edited")
		require.NoError(t, err)
		assert.True(t, edited.IsDeleted)
		assert.Equal(t, Path{r1.ID}, edited.Path)

		_, err = s.UpdateReply(ctx, r1.ID+1000, "x")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(s.SoftDeleteReply(ctx, r1.ID+1000), ErrNotFound))
	})

	t.Run("exists", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, _ := s.CreatePost(ctx, Post{AuthorID: 1, Title: "t", Content: "c", Published: true})
		c, _ := s.CreateComment(ctx, Comment{PostID: p.ID, AuthorID: 1, Content: "c"})
		r, _ := s.CreateReply(ctx, Reply{PostID: p.ID, RootCommentID: c.ID, ParentCommentID: &c.ID, AuthorID: 1, Content: "r", Depth: 1}, nil)

		for _, tc := range []struct {
			kind target.Kind
			id   int64
		}{{target.Post, p.ID}, {target.Comment, c.ID}, {target.Reply, r.ID}} {
			ok, err := s.Exists(ctx, tc.kind, tc.id)
			require.NoError(t, err)
			assert.True(t, ok, tc.kind)

			ok, err = s.Exists(ctx, tc.kind, tc.id+1000)
			require.NoError(t, err)
			assert.False(t, ok, tc.kind)
		}

		require.NoError(t, s.SoftDeleteComment(ctx, c.ID))
		ok, err := s.Exists(ctx, target.Comment, c.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Exists(ctx, target.Kind("story"), 1)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func postIDs(ps []Post) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func commentIDs(cs []Comment) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func replyIDs(rs []Reply) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
