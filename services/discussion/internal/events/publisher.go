// Package events publishes discussion domain events to NATS JetStream.
// Publishing is fire-and-forget: failures are logged and counted, never returned.
package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/example/discussion-platform/internal/platform/metrics"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

const (
	SubjectContentCreated = "discussion.content.created"
	SubjectContentDeleted = "discussion.content.deleted"
	SubjectLikeToggled    = "discussion.likes.toggled"

	StreamName = "DISCUSSION"
)

// Event is the envelope sent to every discussion.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// JetStream is the subset of nats.JetStreamContext used here.
type JetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher is safe to use as a nil pointer or zero value; both drop events.
type Publisher struct {
	js  JetStream
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
	now func() time.Time
}

type Option func(*Publisher)

// WithCircuitBreaker stops publish attempts while NATS keeps failing.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(p *Publisher) { p.cb = cb }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Publisher) { p.log = log }
}

// New returns a publisher over js. A nil js yields a stub.
func New(js JetStream, opts ...Option) *Publisher {
	p := &Publisher{js: js, log: zap.NewNop(), now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(p)
	}
	return p
}

// EnsureStream creates the DISCUSSION stream if it is missing.
func EnsureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"discussion.>"},
		Storage:  nats.FileStorage,
	})
	return err
}

// BreakerConfig mirrors gobreaker.Settings for the knobs exposed in config.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func NewBreaker(cfg BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nats-events",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit-breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
}

// Publish sends one event. It never returns an error.
func (p *Publisher) Publish(subject, eventName string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		OccurredAt: p.now(),
		Properties: props,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.drop(subject, "marshal_failed", err)
		return
	}

	publish := func() (interface{}, error) { return p.js.Publish(subject, data) }
	if p.cb != nil {
		_, err = p.cb.Execute(publish)
	} else {
		_, err = publish()
	}
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		p.drop(subject, "breaker_open", err)
	case err != nil:
		p.drop(subject, "publish_failed", err)
	}
}

func (p *Publisher) drop(subject, reason string, err error) {
	metrics.EventsDropped.WithLabelValues(subject, reason).Inc()
	p.log.Warn("events: publish failed", zap.String("subject", subject), zap.String("reason", reason), zap.Error(err))
}

func (p *Publisher) ContentCreated(kind target.Kind, id, postID, authorID int64) {
	p.Publish(SubjectContentCreated, "content_created", map[string]any{
		"kind":      string(kind),
		"id":        id,
		"post_id":   postID,
		"author_id": authorID,
	})
}

func (p *Publisher) ContentDeleted(kind target.Kind, id int64, permanent bool) {
	p.Publish(SubjectContentDeleted, "content_deleted", map[string]any{
		"kind":      string(kind),
		"id":        id,
		"permanent": permanent,
	})
}

func (p *Publisher) LikeToggled(userID int64, t target.Target, res ledger.ToggleResult) {
	p.Publish(SubjectLikeToggled, "like_toggled", map[string]any{
		"user_id":    userID,
		"kind":       string(t.Kind),
		"target_id":  t.ID,
		"liked":      res.Liked,
		"like_count": res.LikeCount,
	})
}
