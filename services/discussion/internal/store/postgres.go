package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// PostgresContentStore persists content in Postgres.
type PostgresContentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresContentStore creates a store backed by Postgres.
func NewPostgresContentStore(pool *pgxpool.Pool) *PostgresContentStore {
	return &PostgresContentStore{pool: pool}
}

func (s *PostgresContentStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const postColumns = `id, author_id, title, content, published, view_count, is_deleted, created_at, updated_at`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Published,
		&p.ViewCount, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *PostgresContentStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	const q = `INSERT INTO posts (author_id, title, content, published)
	           VALUES ($1, $2, $3, $4)
	           RETURNING ` + postColumns
	return scanPost(s.pool.QueryRow(ctx, q, p.AuthorID, p.Title, p.Content, p.Published))
}

func (s *PostgresContentStore) GetPost(ctx context.Context, id int64) (Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, notFound("post", id)
	}
	return p, err
}

func (s *PostgresContentStore) ListPublishedPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
		WHERE published AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresContentStore) ListPostsByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
		WHERE author_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`, authorID)
}

func (s *PostgresContentStore) queryPosts(ctx context.Context, q string, args ...any) ([]Post, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresContentStore) UpdatePost(ctx context.Context, id int64, title, content string) (Post, error) {
	const q = `UPDATE posts SET title = $2, content = $3, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + postColumns
	p, err := scanPost(s.pool.QueryRow(ctx, q, id, title, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, notFound("post", id)
	}
	return p, err
}

func (s *PostgresContentStore) SetPublished(ctx context.Context, id int64, published bool) (Post, error) {
	const q = `UPDATE posts SET published = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + postColumns
	p, err := scanPost(s.pool.QueryRow(ctx, q, id, published))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, notFound("post", id)
	}
	return p, err
}

func (s *PostgresContentStore) IncrementViews(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// DeletePost relies on ON DELETE CASCADE for comments and replies.
func (s *PostgresContentStore) DeletePost(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

const commentColumns = `id, post_id, author_id, content, is_deleted, created_at, updated_at`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *PostgresContentStore) CreateComment(ctx context.Context, c Comment) (Comment, error) {
	const q = `INSERT INTO comments (post_id, author_id, content)
	           VALUES ($1, $2, $3)
	           RETURNING ` + commentColumns
	out, err := scanComment(s.pool.QueryRow(ctx, q, c.PostID, c.AuthorID, c.Content))
	if isForeignKeyViolation(err) {
		return Comment{}, notFound("post", c.PostID)
	}
	return out, err
}

func (s *PostgresContentStore) GetComment(ctx context.Context, id int64) (Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, notFound("comment", id)
	}
	return c, err
}

func (s *PostgresContentStore) UpdateComment(ctx context.Context, id int64, content string) (Comment, error) {
	const q = `UPDATE comments SET content = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + commentColumns
	c, err := scanComment(s.pool.QueryRow(ctx, q, id, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, notFound("comment", id)
	}
	return c, err
}

func (s *PostgresContentStore) SoftDeleteComment(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "comments", "comment", id)
}

func (s *PostgresContentStore) ListCommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	return s.queryComments(ctx, `SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1 AND NOT is_deleted
		ORDER BY created_at ASC, id ASC`, postID)
}

func (s *PostgresContentStore) ListCommentsByAuthor(ctx context.Context, authorID int64) ([]Comment, error) {
	return s.queryComments(ctx, `SELECT `+commentColumns+` FROM comments
		WHERE author_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`, authorID)
}

func (s *PostgresContentStore) queryComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresContentStore) CountCommentsByPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	for _, id := range postIDs {
		out[id] = 0
	}

	rows, err := s.pool.Query(ctx, `SELECT post_id, count(*) FROM comments
		WHERE post_id = ANY($1) AND NOT is_deleted
		GROUP BY post_id`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

const replyColumns = `id, post_id, root_comment_id, parent_comment_id, parent_reply_id,
	author_id, content, depth, path, is_deleted, created_at, updated_at`

func scanReply(row pgx.Row) (Reply, error) {
	var (
		r    Reply
		path []int64
	)
	err := row.Scan(&r.ID, &r.PostID, &r.RootCommentID, &r.ParentCommentID, &r.ParentReplyID,
		&r.AuthorID, &r.Content, &r.Depth, &path, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt)
	r.Path = Path(path)
	return r, err
}

// CreateReply inserts the row and then stamps the path, which needs the
// sequence-assigned id, inside one transaction.
func (s *PostgresContentStore) CreateReply(ctx context.Context, r Reply, parentPath Path) (Reply, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO replies (post_id, root_comment_id, parent_comment_id, parent_reply_id, author_id, content, depth)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		r.PostID, r.RootCommentID, r.ParentCommentID, r.ParentReplyID, r.AuthorID, r.Content, r.Depth,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return Reply{}, fmt.Errorf("reply anchor: %w", ErrNotFound)
	}
	if err != nil {
		return Reply{}, err
	}

	out, err := scanReply(tx.QueryRow(ctx,
		`UPDATE replies SET path = $2 WHERE id = $1 RETURNING `+replyColumns,
		id, []int64(parentPath.Append(id))))
	if err != nil {
		return Reply{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Reply{}, err
	}
	return out, nil
}

func (s *PostgresContentStore) GetReply(ctx context.Context, id int64) (Reply, error) {
	r, err := scanReply(s.pool.QueryRow(ctx, `SELECT `+replyColumns+` FROM replies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reply{}, notFound("reply", id)
	}
	return r, err
}

func (s *PostgresContentStore) UpdateReply(ctx context.Context, id int64, content string) (Reply, error) {
	const q = `UPDATE replies SET content = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + replyColumns
	r, err := scanReply(s.pool.QueryRow(ctx, q, id, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reply{}, notFound("reply", id)
	}
	return r, err
}

func (s *PostgresContentStore) SoftDeleteReply(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "replies", "reply", id)
}

func (s *PostgresContentStore) ListRepliesByPost(ctx context.Context, postID int64) ([]Reply, error) {
	return s.queryReplies(ctx, `SELECT `+replyColumns+` FROM replies
		WHERE post_id = $1 AND NOT is_deleted
		ORDER BY path`, postID)
}

func (s *PostgresContentStore) ListRepliesUnderComment(ctx context.Context, commentID int64) ([]Reply, error) {
	return s.queryReplies(ctx, `SELECT `+replyColumns+` FROM replies
		WHERE root_comment_id = $1 AND NOT is_deleted
		ORDER BY path`, commentID)
}

func (s *PostgresContentStore) ListRepliesByComment(ctx context.Context, commentID int64) ([]Reply, error) {
	return s.queryReplies(ctx, `SELECT `+replyColumns+` FROM replies
		WHERE parent_comment_id = $1 AND NOT is_deleted
		ORDER BY created_at ASC, id ASC`, commentID)
}

func (s *PostgresContentStore) ListRepliesByParentReply(ctx context.Context, parentReplyID int64) ([]Reply, error) {
	return s.queryReplies(ctx, `SELECT `+replyColumns+` FROM replies
		WHERE parent_reply_id = $1 AND NOT is_deleted
		ORDER BY created_at ASC, id ASC`, parentReplyID)
}

func (s *PostgresContentStore) ListRepliesByAuthor(ctx context.Context, authorID int64) ([]Reply, error) {
	return s.queryReplies(ctx, `SELECT `+replyColumns+` FROM replies
		WHERE author_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`, authorID)
}

func (s *PostgresContentStore) queryReplies(ctx context.Context, q string, args ...any) ([]Reply, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reply{}
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresContentStore) Exists(ctx context.Context, kind target.Kind, id int64) (bool, error) {
	var table string
	switch kind {
	case target.Post:
		table = "posts"
	case target.Comment:
		table = "comments"
	case target.Reply:
		table = "replies"
	default:
		return false, NewValidationError("kind", "unknown target kind")
	}
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1 AND NOT is_deleted)`, id).Scan(&ok)
	return ok, err
}

// softDelete is idempotent for already-deleted rows.
func (s *PostgresContentStore) softDelete(ctx context.Context, table, kind string, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE `+table+` SET is_deleted = TRUE,
		        updated_at = CASE WHEN is_deleted THEN updated_at ELSE now() END
		 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(kind, id)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
