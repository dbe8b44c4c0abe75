package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// PostgresLedger stores likes in the likes table; the unique
// (user_id, target_kind, target_id) constraint backs the one-like rule.
type PostgresLedger struct {
	pool *pgxpool.Pool

	// afterProbe runs between the delete and insert statements of Toggle.
	afterProbe func()
}

func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

func (l *PostgresLedger) Toggle(ctx context.Context, userID int64, t target.Target) (ToggleResult, error) {
	if err := validate(userID, t); err != nil {
		return ToggleResult{}, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return ToggleResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND target_kind = $2 AND target_id = $3`,
		userID, string(t.Kind), t.ID)
	if err != nil {
		return ToggleResult{}, err
	}
	liked := tag.RowsAffected() == 0
	if l.afterProbe != nil {
		l.afterProbe()
	}
	if liked {
		// A concurrent insert of the same row makes this a no-op; still liked.
		if _, err := tx.Exec(ctx,
			`INSERT INTO likes (user_id, target_kind, target_id) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, target_kind, target_id) DO NOTHING`,
			userID, string(t.Kind), t.ID); err != nil {
			return ToggleResult{}, err
		}
	}

	var n int64
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM likes WHERE target_kind = $1 AND target_id = $2`,
		string(t.Kind), t.ID).Scan(&n); err != nil {
		return ToggleResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Liked: liked, LikeCount: n}, nil
}

func (l *PostgresLedger) Count(ctx context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	var n int64
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM likes WHERE target_kind = $1 AND target_id = $2`,
		string(t.Kind), t.ID).Scan(&n)
	return n, err
}

func (l *PostgresLedger) HasLiked(ctx context.Context, userID int64, t target.Target) (bool, error) {
	if err := validate(userID, t); err != nil {
		return false, err
	}
	var ok bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND target_kind = $2 AND target_id = $3)`,
		userID, string(t.Kind), t.ID).Scan(&ok)
	return ok, err
}

func (l *PostgresLedger) LikesForUser(ctx context.Context, userID int64) ([]Like, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	return l.queryLikes(ctx, `SELECT user_id, target_kind, target_id, created_at FROM likes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
}

func (l *PostgresLedger) LikesForTarget(ctx context.Context, t target.Target) ([]Like, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	return l.queryLikes(ctx, `SELECT user_id, target_kind, target_id, created_at FROM likes
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at DESC, id DESC`, string(t.Kind), t.ID)
}

func (l *PostgresLedger) queryLikes(ctx context.Context, q string, args ...any) ([]Like, error) {
	rows, err := l.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Like{}
	for rows.Next() {
		var (
			like Like
			kind string
		)
		if err := rows.Scan(&like.UserID, &kind, &like.Target.ID, &like.CreatedAt); err != nil {
			return nil, err
		}
		like.Target.Kind = target.Kind(kind)
		out = append(out, like)
	}
	return out, rows.Err()
}

func (l *PostgresLedger) RemoveAllForTarget(ctx context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	tag, err := l.pool.Exec(ctx,
		`DELETE FROM likes WHERE target_kind = $1 AND target_id = $2`, string(t.Kind), t.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (l *PostgresLedger) BatchCounts(ctx context.Context, kind target.Kind, ids []int64) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, validateTarget(target.Target{Kind: kind, ID: 1})
	}
	out := zeroCounts(ids)
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := l.pool.Query(ctx,
		`SELECT target_id, count(*) FROM likes
		 WHERE target_kind = $1 AND target_id = ANY($2)
		 GROUP BY target_id`, string(kind), ids)
	if err != nil {
		return nil, err
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]int64, error) {
		var pair [2]int64
		err := row.Scan(&pair[0], &pair[1])
		return pair, err
	})
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		out[c[0]] = c[1]
	}
	return out, nil
}
