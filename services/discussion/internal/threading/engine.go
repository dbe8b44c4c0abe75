// Package threading maintains the post, comment and reply hierarchy on top of
// a ContentStore: creation preconditions, reply depth and materialized paths.
package threading

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/discussion-platform/internal/platform/metrics"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// Notifier hears about structural changes after they are stored.
type Notifier interface {
	ContentCreated(kind target.Kind, id, postID, authorID int64)
	ContentDeleted(kind target.Kind, id int64, permanent bool)
}

type Engine struct {
	store    store.ContentStore
	sanitize Sanitizer
	notify   Notifier
	log      *zap.Logger
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notify = n } }

func WithLogger(log *zap.Logger) Option { return func(e *Engine) { e.log = log } }

func WithSanitizer(s Sanitizer) Option { return func(e *Engine) { e.sanitize = s } }

func New(s store.ContentStore, opts ...Option) *Engine {
	e := &Engine{store: s, sanitize: NewHTMLSanitizer(), log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) created(kind target.Kind, id, postID, authorID int64) {
	metrics.NodesCreated.WithLabelValues(string(kind)).Inc()
	if e.notify != nil {
		e.notify.ContentCreated(kind, id, postID, authorID)
	}
}

func (e *Engine) deleted(kind target.Kind, id int64, permanent bool) {
	if e.notify != nil {
		e.notify.ContentDeleted(kind, id, permanent)
	}
}

// NewPost is the input to CreatePost. Published defaults to true.
type NewPost struct {
	AuthorID  int64
	Title     string
	Content   string
	Published *bool
}

func (e *Engine) CreatePost(ctx context.Context, in NewPost) (store.Post, error) {
	title, content := e.sanitize.Title(in.Title), e.sanitize.Content(in.Content)
	var c checker
	c.id("authorId", in.AuthorID)
	c.text("title", title)
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Post{}, err
	}

	published := true
	if in.Published != nil {
		published = *in.Published
	}
	p, err := e.store.CreatePost(ctx, store.Post{
		AuthorID:  in.AuthorID,
		Title:     title,
		Content:   content,
		Published: published,
	})
	if err != nil {
		return store.Post{}, fmt.Errorf("create post: %w", err)
	}
	e.created(target.Post, p.ID, p.ID, p.AuthorID)
	return p, nil
}

func (e *Engine) GetPost(ctx context.Context, id int64) (store.Post, error) {
	return e.store.GetPost(ctx, id)
}

func (e *Engine) PublishedPosts(ctx context.Context) ([]store.Post, error) {
	return e.store.ListPublishedPosts(ctx)
}

func (e *Engine) PostsByAuthor(ctx context.Context, authorID int64) ([]store.Post, error) {
	return e.store.ListPostsByAuthor(ctx, authorID)
}

func (e *Engine) UpdatePost(ctx context.Context, id int64, title, content string) (store.Post, error) {
	title, content = e.sanitize.Title(title), e.sanitize.Content(content)
	var c checker
	c.text("title", title)
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Post{}, err
	}
	return e.store.UpdatePost(ctx, id, title, content)
}

func (e *Engine) Publish(ctx context.Context, id int64) (store.Post, error) {
	return e.store.SetPublished(ctx, id, true)
}

func (e *Engine) Unpublish(ctx context.Context, id int64) (store.Post, error) {
	return e.store.SetPublished(ctx, id, false)
}

// RecordView bumps the view counter; unknown posts are ignored.
func (e *Engine) RecordView(ctx context.Context, id int64) error {
	return e.store.IncrementViews(ctx, id)
}

// DeletePost permanently removes the post and its subtree. Likes on the
// removed nodes are left in the ledger.
func (e *Engine) DeletePost(ctx context.Context, id int64) error {
	if err := e.store.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	e.deleted(target.Post, id, true)
	return nil
}

// CreateComment requires a live post.
func (e *Engine) CreateComment(ctx context.Context, postID, authorID int64, content string) (store.Comment, error) {
	content = e.sanitize.Content(content)
	var c checker
	c.id("postId", postID)
	c.id("authorId", authorID)
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Comment{}, err
	}

	if err := e.requireLive(ctx, target.Post, postID); err != nil {
		return store.Comment{}, err
	}
	out, err := e.store.CreateComment(ctx, store.Comment{PostID: postID, AuthorID: authorID, Content: content})
	if err != nil {
		return store.Comment{}, err
	}
	e.created(target.Comment, out.ID, postID, authorID)
	return out, nil
}

// requireLive reports ErrNotFound unless the node exists and is not soft-deleted.
func (e *Engine) requireLive(ctx context.Context, kind target.Kind, id int64) error {
	ok, err := e.store.Exists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
	}
	return nil
}

func (e *Engine) GetComment(ctx context.Context, id int64) (store.Comment, error) {
	return e.store.GetComment(ctx, id)
}

func (e *Engine) UpdateComment(ctx context.Context, id int64, content string) (store.Comment, error) {
	content = e.sanitize.Content(content)
	var c checker
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Comment{}, err
	}
	return e.store.UpdateComment(ctx, id, content)
}

// DeleteComment soft-deletes the comment only; its replies stay listed.
func (e *Engine) DeleteComment(ctx context.Context, id int64) error {
	err := e.store.SoftDeleteComment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	e.deleted(target.Comment, id, false)
	return nil
}

func (e *Engine) CommentsByPost(ctx context.Context, postID int64) ([]store.Comment, error) {
	return e.store.ListCommentsByPost(ctx, postID)
}

func (e *Engine) CommentsByAuthor(ctx context.Context, authorID int64) ([]store.Comment, error) {
	return e.store.ListCommentsByAuthor(ctx, authorID)
}

// CreateReplyToComment opens a thread under a live comment of the post.
func (e *Engine) CreateReplyToComment(ctx context.Context, postID, commentID, authorID int64, content string) (store.Reply, error) {
	content = e.sanitize.Content(content)
	var c checker
	c.id("postId", postID)
	c.id("commentId", commentID)
	c.id("authorId", authorID)
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Reply{}, err
	}

	if err := e.requireLive(ctx, target.Post, postID); err != nil {
		return store.Reply{}, err
	}
	comment, err := e.store.GetComment(ctx, commentID)
	if err != nil {
		return store.Reply{}, err
	}
	if comment.IsDeleted || comment.PostID != postID {
		return store.Reply{}, fmt.Errorf("comment %d on post %d: %w", commentID, postID, store.ErrNotFound)
	}

	return e.insertReply(ctx, store.Reply{
		PostID:          postID,
		RootCommentID:   commentID,
		ParentCommentID: &commentID,
		AuthorID:        authorID,
		Content:         content,
		Depth:           1,
	}, nil)
}

// CreateReplyToReply nests under a live reply of the post, one level deeper.
func (e *Engine) CreateReplyToReply(ctx context.Context, postID, parentReplyID, authorID int64, content string) (store.Reply, error) {
	content = e.sanitize.Content(content)
	var c checker
	c.id("postId", postID)
	c.id("parentReplyId", parentReplyID)
	c.id("authorId", authorID)
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Reply{}, err
	}

	if err := e.requireLive(ctx, target.Post, postID); err != nil {
		return store.Reply{}, err
	}
	parent, err := e.store.GetReply(ctx, parentReplyID)
	if err != nil {
		return store.Reply{}, err
	}
	if parent.IsDeleted || parent.PostID != postID {
		return store.Reply{}, fmt.Errorf("reply %d on post %d: %w", parentReplyID, postID, store.ErrNotFound)
	}

	return e.insertReply(ctx, store.Reply{
		PostID:        postID,
		RootCommentID: parent.RootCommentID,
		ParentReplyID: &parentReplyID,
		AuthorID:      authorID,
		Content:       content,
		Depth:         parent.Depth + 1,
	}, parent.Path)
}

func (e *Engine) insertReply(ctx context.Context, r store.Reply, parentPath store.Path) (store.Reply, error) {
	out, err := e.store.CreateReply(ctx, r, parentPath)
	if err != nil {
		return store.Reply{}, err
	}
	e.log.Debug("reply created",
		zap.Int64("id", out.ID),
		zap.Int64("post_id", out.PostID),
		zap.Int("depth", out.Depth),
	)
	e.created(target.Reply, out.ID, out.PostID, out.AuthorID)
	return out, nil
}

func (e *Engine) GetReply(ctx context.Context, id int64) (store.Reply, error) {
	return e.store.GetReply(ctx, id)
}

func (e *Engine) UpdateReply(ctx context.Context, id int64, content string) (store.Reply, error) {
	content = e.sanitize.Content(content)
	var c checker
	c.text("content", content)
	if err := c.result(); err != nil {
		return store.Reply{}, err
	}
	return e.store.UpdateReply(ctx, id, content)
}

// DeleteReply soft-deletes the reply only; its descendants stay listed.
func (e *Engine) DeleteReply(ctx context.Context, id int64) error {
	err := e.store.SoftDeleteReply(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	e.deleted(target.Reply, id, false)
	return nil
}

// RepliesByPost lists the whole reply forest of a post in pre-order.
func (e *Engine) RepliesByPost(ctx context.Context, postID int64) ([]store.Reply, error) {
	return e.store.ListRepliesByPost(ctx, postID)
}

// RepliesUnderComment lists every reply in the comment's thread in pre-order.
func (e *Engine) RepliesUnderComment(ctx context.Context, commentID int64) ([]store.Reply, error) {
	return e.store.ListRepliesUnderComment(ctx, commentID)
}

func (e *Engine) RepliesByComment(ctx context.Context, commentID int64) ([]store.Reply, error) {
	return e.store.ListRepliesByComment(ctx, commentID)
}

func (e *Engine) RepliesByParentReply(ctx context.Context, parentReplyID int64) ([]store.Reply, error) {
	return e.store.ListRepliesByParentReply(ctx, parentReplyID)
}

func (e *Engine) RepliesByAuthor(ctx context.Context, authorID int64) ([]store.Reply, error) {
	return e.store.ListRepliesByAuthor(ctx, authorID)
}

func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}
