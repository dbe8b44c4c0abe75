package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// InMemoryContentStore is a development-only in-memory implementation.
type InMemoryContentStore struct {
	mu       sync.RWMutex
	posts    map[int64]Post
	comments map[int64]Comment
	replies  map[int64]Reply

	nextPost, nextComment, nextReply int64
	now                              func() time.Time
}

func NewInMemoryContentStore() *InMemoryContentStore {
	return &InMemoryContentStore{
		posts:    make(map[int64]Post),
		comments: make(map[int64]Comment),
		replies:  make(map[int64]Reply),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryContentStore) Ping(context.Context) error { return nil }

// Posts

func (s *InMemoryContentStore) CreatePost(_ context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPost++
	now := s.now()
	p.ID = s.nextPost
	p.ViewCount = 0
	p.IsDeleted = false
	p.CreatedAt, p.UpdatedAt = now, now
	s.posts[p.ID] = p
	return p, nil
}

func (s *InMemoryContentStore) GetPost(_ context.Context, id int64) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, notFound("post", id)
	}
	return p, nil
}

func (s *InMemoryContentStore) ListPublishedPosts(_ context.Context) ([]Post, error) {
	return s.filterPosts(func(p Post) bool { return p.Published }), nil
}

func (s *InMemoryContentStore) ListPostsByAuthor(_ context.Context, authorID int64) ([]Post, error) {
	return s.filterPosts(func(p Post) bool { return p.AuthorID == authorID }), nil
}

// filterPosts returns non-deleted matches, newest first.
func (s *InMemoryContentStore) filterPosts(match func(Post) bool) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Post{}
	for _, p := range s.posts {
		if !p.IsDeleted && match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out
}

func (s *InMemoryContentStore) UpdatePost(_ context.Context, id int64, title, content string) (Post, error) {
	return s.mutatePost(id, func(p *Post) {
		p.Title = title
		p.Content = content
	})
}

func (s *InMemoryContentStore) SetPublished(_ context.Context, id int64, published bool) (Post, error) {
	return s.mutatePost(id, func(p *Post) { p.Published = published })
}

func (s *InMemoryContentStore) mutatePost(id int64, fn func(*Post)) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, notFound("post", id)
	}
	fn(&p)
	p.UpdatedAt = s.now()
	s.posts[id] = p
	return p, nil
}

func (s *InMemoryContentStore) IncrementViews(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.posts[id]; ok {
		p.ViewCount++
		s.posts[id] = p
	}
	return nil
}

func (s *InMemoryContentStore) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for rid, r := range s.replies {
		if r.PostID == id {
			delete(s.replies, rid)
		}
	}
	return nil
}

// Comments

func (s *InMemoryContentStore) CreateComment(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[c.PostID]; !ok {
		return Comment{}, notFound("post", c.PostID)
	}
	s.nextComment++
	now := s.now()
	c.ID = s.nextComment
	c.IsDeleted = false
	c.CreatedAt, c.UpdatedAt = now, now
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemoryContentStore) GetComment(_ context.Context, id int64) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, notFound("comment", id)
	}
	return c, nil
}

func (s *InMemoryContentStore) UpdateComment(_ context.Context, id int64, content string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, notFound("comment", id)
	}
	c.Content = content
	c.UpdatedAt = s.now()
	s.comments[id] = c
	return c, nil
}

func (s *InMemoryContentStore) SoftDeleteComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return notFound("comment", id)
	}
	if !c.IsDeleted {
		c.IsDeleted = true
		c.UpdatedAt = s.now()
		s.comments[id] = c
	}
	return nil
}

func (s *InMemoryContentStore) ListCommentsByPost(_ context.Context, postID int64) ([]Comment, error) {
	out := s.filterComments(func(c Comment) bool { return c.PostID == postID })
	sort.Slice(out, func(i, j int) bool {
		return olderFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *InMemoryContentStore) ListCommentsByAuthor(_ context.Context, authorID int64) ([]Comment, error) {
	out := s.filterComments(func(c Comment) bool { return c.AuthorID == authorID })
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *InMemoryContentStore) filterComments(match func(Comment) bool) []Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Comment{}
	for _, c := range s.comments {
		if !c.IsDeleted && match(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *InMemoryContentStore) CountCommentsByPosts(_ context.Context, postIDs []int64) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int64, len(postIDs))
	for _, id := range postIDs {
		out[id] = 0
	}
	for _, c := range s.comments {
		if _, want := out[c.PostID]; want && !c.IsDeleted {
			out[c.PostID]++
		}
	}
	return out, nil
}

// Replies

func (s *InMemoryContentStore) CreateReply(_ context.Context, r Reply, parentPath Path) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[r.PostID]; !ok {
		return Reply{}, notFound("post", r.PostID)
	}
	s.nextReply++
	now := s.now()
	r.ID = s.nextReply
	r.Path = parentPath.Append(r.ID)
	r.IsDeleted = false
	r.CreatedAt, r.UpdatedAt = now, now
	s.replies[r.ID] = r.clone()
	return r, nil
}

func (s *InMemoryContentStore) GetReply(_ context.Context, id int64) (Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.replies[id]
	if !ok {
		return Reply{}, notFound("reply", id)
	}
	return r.clone(), nil
}

func (s *InMemoryContentStore) UpdateReply(_ context.Context, id int64, content string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.replies[id]
	if !ok {
		return Reply{}, notFound("reply", id)
	}
	r.Content = content
	r.UpdatedAt = s.now()
	s.replies[id] = r
	return r.clone(), nil
}

func (s *InMemoryContentStore) SoftDeleteReply(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.replies[id]
	if !ok {
		return notFound("reply", id)
	}
	if !r.IsDeleted {
		r.IsDeleted = true
		r.UpdatedAt = s.now()
		s.replies[id] = r
	}
	return nil
}

func (s *InMemoryContentStore) ListRepliesByPost(_ context.Context, postID int64) ([]Reply, error) {
	out := s.filterReplies(func(r Reply) bool { return r.PostID == postID })
	SortByPath(out)
	return out, nil
}

func (s *InMemoryContentStore) ListRepliesUnderComment(_ context.Context, commentID int64) ([]Reply, error) {
	out := s.filterReplies(func(r Reply) bool { return r.RootCommentID == commentID })
	SortByPath(out)
	return out, nil
}

func (s *InMemoryContentStore) ListRepliesByComment(_ context.Context, commentID int64) ([]Reply, error) {
	out := s.filterReplies(func(r Reply) bool {
		return r.ParentCommentID != nil && *r.ParentCommentID == commentID
	})
	sortChronological(out)
	return out, nil
}

func (s *InMemoryContentStore) ListRepliesByParentReply(_ context.Context, parentReplyID int64) ([]Reply, error) {
	out := s.filterReplies(func(r Reply) bool {
		return r.ParentReplyID != nil && *r.ParentReplyID == parentReplyID
	})
	sortChronological(out)
	return out, nil
}

func (s *InMemoryContentStore) ListRepliesByAuthor(_ context.Context, authorID int64) ([]Reply, error) {
	out := s.filterReplies(func(r Reply) bool { return r.AuthorID == authorID })
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *InMemoryContentStore) filterReplies(match func(Reply) bool) []Reply {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Reply{}
	for _, r := range s.replies {
		if !r.IsDeleted && match(r) {
			out = append(out, r.clone())
		}
	}
	return out
}

func (s *InMemoryContentStore) Exists(_ context.Context, kind target.Kind, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case target.Post:
		p, ok := s.posts[id]
		return ok && !p.IsDeleted, nil
	case target.Comment:
		c, ok := s.comments[id]
		return ok && !c.IsDeleted, nil
	case target.Reply:
		r, ok := s.replies[id]
		return ok && !r.IsDeleted, nil
	default:
		return false, NewValidationError("kind", "unknown target kind")
	}
}

func sortChronological(replies []Reply) {
	sort.Slice(replies, func(i, j int) bool {
		return olderFirst(replies[i].CreatedAt, replies[i].ID, replies[j].CreatedAt, replies[j].ID)
	})
}

// Ties on timestamp fall back to id, which follows insertion order.
func olderFirst(a time.Time, aID int64, b time.Time, bID int64) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}

func newerFirst(a time.Time, aID int64, b time.Time, bID int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}
