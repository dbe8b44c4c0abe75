// Package seed fills a discussion backend with fake threads and likes for
// development and demos.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/target"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

// Options sizes a seeding run. Comments and Replies are per post and per
// comment respectively; Likes is the total across all nodes.
type Options struct {
	Posts    int
	Comments int
	Replies  int
	Likes    int
	Users    int
	// Seed makes the generated text reproducible; zero picks a random seed.
	Seed int64
}

type Result struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
	Replies  int `json:"replies"`
	Likes    int `json:"likes"`
}

type Seeder struct {
	engine *threading.Engine
	likes  ledger.Ledger
	log    *zap.Logger
}

func New(engine *threading.Engine, likes ledger.Ledger, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{engine: engine, likes: likes, log: log}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Users <= 0 {
		opts.Users = 10
	}
	faker := gofakeit.New(opts.Seed)
	user := func() int64 { return int64(faker.Number(1, opts.Users)) }

	var res Result
	var nodes []target.Target

	for i := 0; i < opts.Posts; i++ {
		p, err := s.engine.CreatePost(ctx, threading.NewPost{
			AuthorID: user(),
			Title:    faker.Sentence(5),
			Content:  faker.Paragraph(1, 3, 8, "\n"),
		})
		if err != nil {
			return res, fmt.Errorf("seed post: %w", err)
		}
		res.Posts++
		nodes = append(nodes, target.Of(target.Post, p.ID))

		for j := 0; j < opts.Comments; j++ {
			c, err := s.engine.CreateComment(ctx, p.ID, user(), faker.Sentence(12))
			if err != nil {
				return res, fmt.Errorf("seed comment: %w", err)
			}
			res.Comments++
			nodes = append(nodes, target.Of(target.Comment, c.ID))

			n, err := s.thread(ctx, faker, user, p.ID, c.ID, opts.Replies)
			res.Replies += len(n)
			nodes = append(nodes, n...)
			if err != nil {
				return res, err
			}
		}
	}

	liked, err := s.like(ctx, faker, nodes, opts)
	res.Likes = liked
	if err != nil {
		return res, err
	}

	s.log.Info("seed complete",
		zap.Int("posts", res.Posts),
		zap.Int("comments", res.Comments),
		zap.Int("replies", res.Replies),
		zap.Int("likes", res.Likes),
	)
	return res, nil
}

// thread adds n replies under a comment, each answering either the comment
// or a reply created earlier in the same thread.
func (s *Seeder) thread(ctx context.Context, faker *gofakeit.Faker, user func() int64, postID, commentID int64, n int) ([]target.Target, error) {
	var replies []store.Reply
	out := make([]target.Target, 0, n)
	for k := 0; k < n; k++ {
		var (
			r   store.Reply
			err error
		)
		pick := faker.Number(0, len(replies))
		if pick == len(replies) {
			r, err = s.engine.CreateReplyToComment(ctx, postID, commentID, user(), faker.Sentence(8))
		} else {
			r, err = s.engine.CreateReplyToReply(ctx, postID, replies[pick].ID, user(), faker.Sentence(8))
		}
		if err != nil {
			return out, fmt.Errorf("seed reply: %w", err)
		}
		replies = append(replies, r)
		out = append(out, target.Of(target.Reply, r.ID))
	}
	return out, nil
}

// like records up to opts.Likes distinct likes; it stops early once every
// user has liked every node.
func (s *Seeder) like(ctx context.Context, faker *gofakeit.Faker, nodes []target.Target, opts Options) (int, error) {
	if len(nodes) == 0 || opts.Likes <= 0 {
		return 0, nil
	}
	type pair struct {
		user int64
		t    target.Target
	}
	want := opts.Likes
	if max := len(nodes) * opts.Users; want > max {
		want = max
	}

	seen := make(map[pair]struct{}, want)
	for len(seen) < want {
		p := pair{user: int64(faker.Number(1, opts.Users)), t: nodes[faker.Number(0, len(nodes)-1)]}
		if _, ok := seen[p]; ok {
			continue
		}
		if _, err := s.likes.Toggle(ctx, p.user, p.t); err != nil {
			return len(seen), fmt.Errorf("seed like: %w", err)
		}
		seen[p] = struct{}{}
	}
	return len(seen), nil
}
