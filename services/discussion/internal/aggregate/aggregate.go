// Package aggregate builds like-decorated read models. Counts are always
// fetched with one batched ledger request per kind.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

type DecoratedReply struct {
	store.Reply
	LikeCount int64             `json:"likeCount"`
	Replies   []*DecoratedReply `json:"replies,omitempty"`
}

type DecoratedComment struct {
	store.Comment
	LikeCount int64             `json:"likeCount"`
	Replies   []*DecoratedReply `json:"replies,omitempty"`
}

// DecoratedPost is a post with its live comments, each carrying its reply
// tree. Replies whose every ancestor is soft-deleted land in DetachedReplies.
type DecoratedPost struct {
	store.Post
	LikeCount       int64              `json:"likeCount"`
	CommentCount    int64              `json:"commentCount"`
	Comments        []DecoratedComment `json:"comments"`
	DetachedReplies []*DecoratedReply  `json:"detachedReplies,omitempty"`
}

type PostSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorID     int64     `json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
}

type Service struct {
	content store.ContentStore
	likes   ledger.Ledger
}

func New(content store.ContentStore, likes ledger.Ledger) *Service {
	return &Service{content: content, likes: likes}
}

// DecoratePost returns ErrNotFound, wrapped, for an unknown post.
func (s *Service) DecoratePost(ctx context.Context, postID int64) (DecoratedPost, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return DecoratedPost{}, err
	}
	comments, err := s.content.ListCommentsByPost(ctx, postID)
	if err != nil {
		return DecoratedPost{}, fmt.Errorf("list comments: %w", err)
	}
	replies, err := s.content.ListRepliesByPost(ctx, postID)
	if err != nil {
		return DecoratedPost{}, fmt.Errorf("list replies: %w", err)
	}

	postCounts, err := s.likes.BatchCounts(ctx, target.Post, []int64{postID})
	if err != nil {
		return DecoratedPost{}, fmt.Errorf("post like counts: %w", err)
	}
	dc, err := s.DecorateComments(ctx, comments)
	if err != nil {
		return DecoratedPost{}, err
	}
	dr, err := s.DecorateReplies(ctx, replies)
	if err != nil {
		return DecoratedPost{}, err
	}

	out := DecoratedPost{
		Post:         post,
		LikeCount:    postCounts[postID],
		CommentCount: int64(len(dc)),
		Comments:     dc,
	}
	out.DetachedReplies = attachReplies(out.Comments, dr)
	return out, nil
}

func (s *Service) DecorateComments(ctx context.Context, comments []store.Comment) ([]DecoratedComment, error) {
	ids := make([]int64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	counts, err := s.likes.BatchCounts(ctx, target.Comment, ids)
	if err != nil {
		return nil, fmt.Errorf("comment like counts: %w", err)
	}
	out := make([]DecoratedComment, len(comments))
	for i, c := range comments {
		out[i] = DecoratedComment{Comment: c, LikeCount: counts[c.ID]}
	}
	return out, nil
}

// DecorateReplies keeps the input order and returns a flat list.
func (s *Service) DecorateReplies(ctx context.Context, replies []store.Reply) ([]*DecoratedReply, error) {
	ids := make([]int64, len(replies))
	for i, r := range replies {
		ids[i] = r.ID
	}
	counts, err := s.likes.BatchCounts(ctx, target.Reply, ids)
	if err != nil {
		return nil, fmt.Errorf("reply like counts: %w", err)
	}
	out := make([]*DecoratedReply, len(replies))
	for i, r := range replies {
		out[i] = &DecoratedReply{Reply: r, LikeCount: counts[r.ID]}
	}
	return out, nil
}

func (s *Service) DecorateComment(ctx context.Context, c store.Comment) (DecoratedComment, error) {
	out, err := s.DecorateComments(ctx, []store.Comment{c})
	if err != nil {
		return DecoratedComment{}, err
	}
	return out[0], nil
}

func (s *Service) DecorateReply(ctx context.Context, r store.Reply) (DecoratedReply, error) {
	out, err := s.DecorateReplies(ctx, []store.Reply{r})
	if err != nil {
		return DecoratedReply{}, err
	}
	return *out[0], nil
}

// Summaries uses one batched like count and one batched comment count.
func (s *Service) Summaries(ctx context.Context, posts []store.Post) ([]PostSummary, error) {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likes, err := s.likes.BatchCounts(ctx, target.Post, ids)
	if err != nil {
		return nil, fmt.Errorf("post like counts: %w", err)
	}
	comments, err := s.content.CountCommentsByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("comment counts: %w", err)
	}

	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{
			ID:           p.ID,
			Title:        p.Title,
			Content:      p.Content,
			AuthorID:     p.AuthorID,
			CreatedAt:    p.CreatedAt,
			LikeCount:    likes[p.ID],
			CommentCount: comments[p.ID],
		}
	}
	return out, nil
}

// attachReplies nests path-ordered replies in one pass. A reply hangs under
// its nearest listed ancestor reply, else under its root comment when that is
// listed. The rest are returned.
func attachReplies(comments []DecoratedComment, replies []*DecoratedReply) []*DecoratedReply {
	commentIdx := make(map[int64]int, len(comments))
	for i, c := range comments {
		commentIdx[c.ID] = i
	}
	byID := make(map[int64]*DecoratedReply, len(replies))

	var detached []*DecoratedReply
	for _, r := range replies {
		byID[r.ID] = r
		if parent := nearestListedAncestor(r.Path, byID); parent != nil {
			parent.Replies = append(parent.Replies, r)
			continue
		}
		if i, ok := commentIdx[r.RootCommentID]; ok {
			comments[i].Replies = append(comments[i].Replies, r)
			continue
		}
		detached = append(detached, r)
	}
	return detached
}

func nearestListedAncestor(path store.Path, byID map[int64]*DecoratedReply) *DecoratedReply {
	for i := len(path) - 2; i >= 0; i-- {
		if r, ok := byID[path[i]]; ok {
			return r
		}
	}
	return nil
}
