package handlers

import (
	"net/http"

	"github.com/example/discussion-platform/internal/platform/api"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

type createPostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  int64  `json:"authorId"`
	Published *bool  `json:"published,omitempty"`
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePost handles POST /posts
func CreatePost(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := d.Engine.CreatePost(r.Context(), threading.NewPost{
			AuthorID:  req.AuthorID,
			Title:     req.Title,
			Content:   req.Content,
			Published: req.Published,
		})
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// ListPosts handles GET /posts
func ListPosts(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := d.Engine.PublishedPosts(r.Context())
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		out, err := d.Views.Summaries(r.Context(), posts)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetPost handles GET /posts/{postId}
func GetPost(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		out, err := d.Views.DecoratePost(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// UpdatePost handles PUT /posts/{postId}
func UpdatePost(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		var req updatePostRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := d.Engine.UpdatePost(r.Context(), id, req.Title, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// DeletePost handles DELETE /posts/{postId}. The removal is permanent.
func DeletePost(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		if err := d.Engine.DeletePost(r.Context(), id); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.NoContent(w)
	}
}

// SetPublished handles POST /posts/{postId}/publish and /unpublish
func SetPublished(d Deps, published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		set := d.Engine.Unpublish
		if published {
			set = d.Engine.Publish
		}
		p, err := set(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// RecordView handles POST /posts/{postId}/views
func RecordView(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		if err := d.Engine.RecordView(r.Context(), id); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.NoContent(w)
	}
}

// RepliesByPost handles GET /posts/{postId}/replies in pre-order.
func RepliesByPost(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		replies, err := d.Engine.RepliesByPost(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		out, err := d.Views.DecorateReplies(r.Context(), replies)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}
