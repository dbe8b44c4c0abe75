package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

func newRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLedger(rdb), mr
}

func TestRedisLedger(t *testing.T) {
	runLedgerSuite(t, func(t *testing.T) Ledger {
		l, _ := newRedisLedger(t)
		return l
	})
}

func TestRedisLedger_KeysAndScores(t *testing.T) {
	l, mr := newRedisLedger(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 123000, time.UTC)
	l.now = func() time.Time { return at }
	ctx := context.Background()

	_, err := l.Toggle(ctx, 3, target.Of(target.Reply, 11))
	require.NoError(t, err)

	members, err := mr.ZMembers("likes:target:reply:11")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, members)

	members, err = mr.ZMembers("likes:user:3")
	require.NoError(t, err)
	assert.Equal(t, []string{"reply:11"}, members)

	likes, err := l.LikesForTarget(ctx, target.Of(target.Reply, 11))
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.True(t, at.Equal(likes[0].CreatedAt))
}

func TestRedisLedger_StorageError(t *testing.T) {
	l, mr := newRedisLedger(t)
	mr.Close()

	_, err := l.Toggle(context.Background(), 1, target.Of(target.Post, 1))
	assert.Error(t, err)
	_, err = l.BatchCounts(context.Background(), target.Post, []int64{1, 2})
	assert.Error(t, err)
}
