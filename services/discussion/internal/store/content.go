package store

import (
	"context"
	"time"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// Post is a top-level discussion entry.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	ViewCount int64     `json:"viewCount"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment hangs directly off a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reply has exactly one parent: a comment (ParentCommentID) or another reply
// (ParentReplyID). RootCommentID is the comment at the top of its thread.
type Reply struct {
	ID              int64     `json:"id"`
	PostID          int64     `json:"postId"`
	RootCommentID   int64     `json:"rootCommentId"`
	ParentCommentID *int64    `json:"parentCommentId,omitempty"`
	ParentReplyID   *int64    `json:"parentReplyId,omitempty"`
	AuthorID        int64     `json:"authorId"`
	Content         string    `json:"content"`
	Depth           int       `json:"depth"`
	Path            Path      `json:"path"`
	IsDeleted       bool      `json:"isDeleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (r Reply) clone() Reply {
	r.Path = r.Path.Clone()
	if r.ParentCommentID != nil {
		v := *r.ParentCommentID
		r.ParentCommentID = &v
	}
	if r.ParentReplyID != nil {
		v := *r.ParentReplyID
		r.ParentReplyID = &v
	}
	return r
}

// ContentStore persists posts, comments and replies. Every mutation touches a
// single node and is atomic. Listings never include soft-deleted nodes.
type ContentStore interface {
	CreatePost(ctx context.Context, p Post) (Post, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	ListPublishedPosts(ctx context.Context) ([]Post, error)
	ListPostsByAuthor(ctx context.Context, authorID int64) ([]Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (Post, error)
	SetPublished(ctx context.Context, id int64, published bool) (Post, error)
	IncrementViews(ctx context.Context, id int64) error
	// DeletePost permanently removes a post with its comments and replies.
	DeletePost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, c Comment) (Comment, error)
	GetComment(ctx context.Context, id int64) (Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (Comment, error)
	SoftDeleteComment(ctx context.Context, id int64) error
	ListCommentsByPost(ctx context.Context, postID int64) ([]Comment, error)
	ListCommentsByAuthor(ctx context.Context, authorID int64) ([]Comment, error)
	CountCommentsByPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error)

	// CreateReply inserts r and sets its path to parentPath plus the assigned
	// id in the same atomic unit.
	CreateReply(ctx context.Context, r Reply, parentPath Path) (Reply, error)
	GetReply(ctx context.Context, id int64) (Reply, error)
	UpdateReply(ctx context.Context, id int64, content string) (Reply, error)
	SoftDeleteReply(ctx context.Context, id int64) error
	ListRepliesByPost(ctx context.Context, postID int64) ([]Reply, error)
	ListRepliesUnderComment(ctx context.Context, commentID int64) ([]Reply, error)
	ListRepliesByComment(ctx context.Context, commentID int64) ([]Reply, error)
	ListRepliesByParentReply(ctx context.Context, parentReplyID int64) ([]Reply, error)
	ListRepliesByAuthor(ctx context.Context, authorID int64) ([]Reply, error)

	// Exists reports whether the node is present and not soft-deleted.
	Exists(ctx context.Context, kind target.Kind, id int64) (bool, error)
	Ping(ctx context.Context) error
}
