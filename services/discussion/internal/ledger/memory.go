package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// InMemoryLedger is a development-only ledger indexed by target and by user.
type InMemoryLedger struct {
	mu       sync.Mutex
	byTarget map[target.Target]map[int64]time.Time // target -> user -> liked at
	byUser   map[int64]map[target.Target]time.Time

	now func() time.Time
	// afterProbe runs between the remove and insert phases of Toggle.
	afterProbe func()
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		byTarget: make(map[target.Target]map[int64]time.Time),
		byUser:   make(map[int64]map[target.Target]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *InMemoryLedger) Ping(context.Context) error { return nil }

// Toggle runs as two short critical sections, the same shape as the SQL
// backend: delete-if-present, then insert-if-absent.
func (l *InMemoryLedger) Toggle(_ context.Context, userID int64, t target.Target) (ToggleResult, error) {
	if err := validate(userID, t); err != nil {
		return ToggleResult{}, err
	}

	l.mu.Lock()
	if _, ok := l.byTarget[t][userID]; ok {
		l.removeLocked(userID, t)
		n := int64(len(l.byTarget[t]))
		l.mu.Unlock()
		return ToggleResult{Liked: false, LikeCount: n}, nil
	}
	l.mu.Unlock()

	if l.afterProbe != nil {
		l.afterProbe()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byTarget[t][userID]; !ok {
		l.insertLocked(userID, t, l.now())
	}
	return ToggleResult{Liked: true, LikeCount: int64(len(l.byTarget[t]))}, nil
}

func (l *InMemoryLedger) insertLocked(userID int64, t target.Target, at time.Time) {
	if l.byTarget[t] == nil {
		l.byTarget[t] = make(map[int64]time.Time)
	}
	if l.byUser[userID] == nil {
		l.byUser[userID] = make(map[target.Target]time.Time)
	}
	l.byTarget[t][userID] = at
	l.byUser[userID][t] = at
}

func (l *InMemoryLedger) removeLocked(userID int64, t target.Target) {
	delete(l.byTarget[t], userID)
	if len(l.byTarget[t]) == 0 {
		delete(l.byTarget, t)
	}
	delete(l.byUser[userID], t)
	if len(l.byUser[userID]) == 0 {
		delete(l.byUser, userID)
	}
}

func (l *InMemoryLedger) Count(_ context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.byTarget[t])), nil
}

func (l *InMemoryLedger) HasLiked(_ context.Context, userID int64, t target.Target) (bool, error) {
	if err := validate(userID, t); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byTarget[t][userID]
	return ok, nil
}

func (l *InMemoryLedger) LikesForUser(_ context.Context, userID int64) ([]Like, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	l.mu.Lock()
	out := make([]Like, 0, len(l.byUser[userID]))
	for t, at := range l.byUser[userID] {
		out = append(out, Like{UserID: userID, Target: t, CreatedAt: at})
	}
	l.mu.Unlock()

	sortNewestFirst(out)
	return out, nil
}

func (l *InMemoryLedger) LikesForTarget(_ context.Context, t target.Target) ([]Like, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	l.mu.Lock()
	out := make([]Like, 0, len(l.byTarget[t]))
	for userID, at := range l.byTarget[t] {
		out = append(out, Like{UserID: userID, Target: t, CreatedAt: at})
	}
	l.mu.Unlock()

	sortNewestFirst(out)
	return out, nil
}

func (l *InMemoryLedger) RemoveAllForTarget(_ context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n := int64(len(l.byTarget[t]))
	for userID := range l.byTarget[t] {
		l.removeLocked(userID, t)
	}
	return n, nil
}

func (l *InMemoryLedger) BatchCounts(_ context.Context, kind target.Kind, ids []int64) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, validateTarget(target.Target{Kind: kind, ID: 1})
	}
	out := zeroCounts(ids)

	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range out {
		out[id] = int64(len(l.byTarget[target.Of(kind, id)]))
	}
	return out, nil
}

// Equal timestamps fall back to a stable order on user then target.
func sortNewestFirst(likes []Like) {
	sort.Slice(likes, func(i, j int) bool {
		a, b := likes[i], likes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.UserID != b.UserID {
			return a.UserID > b.UserID
		}
		if a.Target.Kind != b.Target.Kind {
			return a.Target.Kind > b.Target.Kind
		}
		return a.Target.ID > b.Target.ID
	})
}
