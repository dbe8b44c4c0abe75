// Package ledger records likes against any content target. It does not check
// that targets exist and never follows content lifecycle.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// ErrInvalidInput is returned, wrapped, for a malformed user id or target.
var ErrInvalidInput = errors.New("invalid like input")

// Like is one engagement record. At most one exists per (user, target).
type Like struct {
	UserID    int64         `json:"userId"`
	Target    target.Target `json:"target"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ToggleResult is the state after a toggle, with the count read in the same unit.
type ToggleResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// Ledger is the engagement store. Listings are newest first.
type Ledger interface {
	// Toggle removes the caller's like if present and adds it otherwise. A
	// concurrent insert of the same like resolves to liked, never to an error.
	Toggle(ctx context.Context, userID int64, t target.Target) (ToggleResult, error)
	Count(ctx context.Context, t target.Target) (int64, error)
	HasLiked(ctx context.Context, userID int64, t target.Target) (bool, error)
	LikesForUser(ctx context.Context, userID int64) ([]Like, error)
	LikesForTarget(ctx context.Context, t target.Target) ([]Like, error)
	// RemoveAllForTarget deletes every like on t and reports how many were removed.
	RemoveAllForTarget(ctx context.Context, t target.Target) (int64, error)
	// BatchCounts returns a count for every requested id, zero when unliked.
	BatchCounts(ctx context.Context, kind target.Kind, ids []int64) (map[int64]int64, error)
	Ping(ctx context.Context) error
}

func validateTarget(t target.Target) error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown target kind %q", ErrInvalidInput, t.Kind)
	}
	if t.ID <= 0 {
		return fmt.Errorf("%w: target id must be positive", ErrInvalidInput)
	}
	return nil
}

func validateUser(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	return nil
}

func validate(userID int64, t target.Target) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	return validateTarget(t)
}

func zeroCounts(ids []int64) map[int64]int64 {
	out := make(map[int64]int64, len(ids))
	for _, id := range ids {
		out[id] = 0
	}
	return out
}
