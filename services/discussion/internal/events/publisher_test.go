package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/discussion-platform/internal/platform/metrics"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

type published struct {
	subject string
	event   Event
}

type fakeJetStream struct {
	mu    sync.Mutex
	err   error
	calls int
	out   []published
}

func (f *fakeJetStream) Publish(subj string, data []byte, _ ...nats.PubOpt) (*nats.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	f.out = append(f.out, published{subject: subj, event: ev})
	return &nats.PubAck{Stream: StreamName, Sequence: uint64(len(f.out))}, nil
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.ContentCreated(target.Post, 1, 1, 1)
		p.LikeToggled(1, target.Of(target.Post, 1), ledger.ToggleResult{Liked: true, LikeCount: 1})
	})
	assert.NotPanics(t, func() { New(nil).ContentDeleted(target.Reply, 1, false) })
}

func TestPublisher_Envelope(t *testing.T) {
	js := &fakeJetStream{}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := New(js, WithLogger(zap.NewNop()))
	p.now = func() time.Time { return at }

	p.LikeToggled(7, target.Of(target.Comment, 3), ledger.ToggleResult{Liked: true, LikeCount: 2})

	require.Len(t, js.out, 1)
	got := js.out[0]
	assert.Equal(t, SubjectLikeToggled, got.subject)
	assert.Equal(t, "like_toggled", got.event.EventName)
	assert.NotEmpty(t, got.event.EventID)
	assert.True(t, at.Equal(got.event.OccurredAt))
	assert.Equal(t, "comment", got.event.Properties["kind"])
	assert.Equal(t, true, got.event.Properties["liked"])
	assert.EqualValues(t, 2, got.event.Properties["like_count"])
}

func TestPublisher_ContentSubjects(t *testing.T) {
	js := &fakeJetStream{}
	p := New(js)

	p.ContentCreated(target.Reply, 5, 1, 9)
	p.ContentDeleted(target.Post, 1, true)

	require.Len(t, js.out, 2)
	assert.Equal(t, SubjectContentCreated, js.out[0].subject)
	assert.EqualValues(t, 9, js.out[0].event.Properties["author_id"])
	assert.Equal(t, SubjectContentDeleted, js.out[1].subject)
	assert.Equal(t, true, js.out[1].event.Properties["permanent"])
}

func TestPublisher_BreakerStopsAttempts(t *testing.T) {
	js := &fakeJetStream{err: errors.New("nats down")}
	cb := NewBreaker(BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 3}, zap.NewNop())
	p := New(js, WithCircuitBreaker(cb))

	openBefore := testutil.ToFloat64(metrics.EventsDropped.WithLabelValues(SubjectContentCreated, "breaker_open"))
	for i := 0; i < 10; i++ {
		p.ContentCreated(target.Comment, int64(i+1), 1, 1)
	}

	assert.Equal(t, 3, js.calls, "breaker opens after three consecutive failures")
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, openBefore+7, testutil.ToFloat64(metrics.EventsDropped.WithLabelValues(SubjectContentCreated, "breaker_open")))
}
