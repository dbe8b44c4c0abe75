package ledger

import (
	"context"

	"github.com/example/discussion-platform/internal/platform/metrics"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// ToggleObserver is told about every successful toggle.
type ToggleObserver interface {
	LikeToggled(userID int64, t target.Target, res ToggleResult)
}

// Observed wraps a Ledger, counting toggles and notifying an observer.
type Observed struct {
	Ledger
	obs ToggleObserver
}

// WithObserver decorates l. obs may be nil.
func WithObserver(l Ledger, obs ToggleObserver) *Observed {
	return &Observed{Ledger: l, obs: obs}
}

func (o *Observed) Toggle(ctx context.Context, userID int64, t target.Target) (ToggleResult, error) {
	res, err := o.Ledger.Toggle(ctx, userID, t)
	if err != nil {
		return res, err
	}
	metrics.ObserveToggle(string(t.Kind), res.Liked)
	if o.obs != nil {
		o.obs.LikeToggled(userID, t, res)
	}
	return res, nil
}
