package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// RedisLedger keeps a sorted set of user ids per target and a sorted set of
// targets per user, both scored by like time in microseconds.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// KEYS[1] target set, KEYS[2] user set; ARGV[1] user id, ARGV[2] target member, ARGV[3] score.
var toggleScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 1 then
  redis.call('ZREM', KEYS[2], ARGV[2])
  return {0, redis.call('ZCARD', KEYS[1])}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[2])
return {1, redis.call('ZCARD', KEYS[1])}
`)

// KEYS[1] target set; ARGV[1] user key prefix, ARGV[2] target member.
var removeAllScript = redis.NewScript(`
local users = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, u in ipairs(users) do
  redis.call('ZREM', ARGV[1] .. u, ARGV[2])
end
redis.call('DEL', KEYS[1])
return #users
`)

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{
		rdb:    rdb,
		prefix: "likes:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *RedisLedger) targetKey(t target.Target) string {
	return l.prefix + "target:" + t.String()
}

func (l *RedisLedger) userKeyPrefix() string { return l.prefix + "user:" }

func (l *RedisLedger) userKey(userID int64) string {
	return l.userKeyPrefix() + strconv.FormatInt(userID, 10)
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

func (l *RedisLedger) Toggle(ctx context.Context, userID int64, t target.Target) (ToggleResult, error) {
	if err := validate(userID, t); err != nil {
		return ToggleResult{}, err
	}
	res, err := toggleScript.Run(ctx, l.rdb,
		[]string{l.targetKey(t), l.userKey(userID)},
		userID, t.String(), l.now().UnixMicro(),
	).Int64Slice()
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle like: %w", err)
	}
	if len(res) != 2 {
		return ToggleResult{}, fmt.Errorf("toggle like: unexpected script reply %v", res)
	}
	return ToggleResult{Liked: res[0] == 1, LikeCount: res[1]}, nil
}

func (l *RedisLedger) Count(ctx context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	return l.rdb.ZCard(ctx, l.targetKey(t)).Result()
}

func (l *RedisLedger) HasLiked(ctx context.Context, userID int64, t target.Target) (bool, error) {
	if err := validate(userID, t); err != nil {
		return false, err
	}
	err := l.rdb.ZScore(ctx, l.targetKey(t), strconv.FormatInt(userID, 10)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return err == nil, err
}

func (l *RedisLedger) LikesForUser(ctx context.Context, userID int64) ([]Like, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, l.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Like, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		t, err := target.Parse(member)
		if err != nil {
			return nil, fmt.Errorf("likes for user %d: %w", userID, err)
		}
		out = append(out, Like{UserID: userID, Target: t, CreatedAt: scoreTime(z.Score)})
	}
	return out, nil
}

func (l *RedisLedger) LikesForTarget(ctx context.Context, t target.Target) ([]Like, error) {
	if err := validateTarget(t); err != nil {
		return nil, err
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, l.targetKey(t), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Like, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("likes for %s: %w", t, err)
		}
		out = append(out, Like{UserID: userID, Target: t, CreatedAt: scoreTime(z.Score)})
	}
	return out, nil
}

func (l *RedisLedger) RemoveAllForTarget(ctx context.Context, t target.Target) (int64, error) {
	if err := validateTarget(t); err != nil {
		return 0, err
	}
	return removeAllScript.Run(ctx, l.rdb,
		[]string{l.targetKey(t)},
		l.userKeyPrefix(), t.String(),
	).Int64()
}

// BatchCounts pipelines one ZCARD per id.
func (l *RedisLedger) BatchCounts(ctx context.Context, kind target.Kind, ids []int64) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, validateTarget(target.Target{Kind: kind, ID: 1})
	}
	out := zeroCounts(ids)
	if len(ids) == 0 {
		return out, nil
	}

	pipe := l.rdb.Pipeline()
	cmds := make(map[int64]*redis.IntCmd, len(out))
	for id := range out {
		cmds[id] = pipe.ZCard(ctx, l.targetKey(target.Of(kind, id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("batch like counts: %w", err)
	}
	for id, cmd := range cmds {
		out[id] = cmd.Val()
	}
	return out, nil
}

func scoreTime(score float64) time.Time {
	return time.UnixMicro(int64(score)).UTC()
}
