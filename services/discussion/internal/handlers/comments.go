package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/discussion-platform/internal/platform/api"
	"github.com/example/discussion-platform/services/discussion/internal/store"
)

// scopedComment loads a live comment and reports ErrNotFound when it is
// soft-deleted or lives under another post.
func scopedComment(ctx context.Context, d Deps, postID, commentID int64) (store.Comment, error) {
	c, err := d.Engine.GetComment(ctx, commentID)
	if err != nil {
		return store.Comment{}, err
	}
	if c.IsDeleted || c.PostID != postID {
		return store.Comment{}, fmt.Errorf("comment %d on post %d: %w", commentID, postID, store.ErrNotFound)
	}
	return c, nil
}

// CreateComment handles POST /posts/{postId}/comments
func CreateComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		var req createNodeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := d.Engine.CreateComment(r.Context(), postID, req.AuthorID, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// ListComments handles GET /posts/{postId}/comments
func ListComments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		comments, err := d.Engine.CommentsByPost(r.Context(), postID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		out, err := d.Views.DecorateComments(r.Context(), comments)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetComment handles GET /posts/{postId}/comments/{commentId}
func GetComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "commentId")
		if !ok {
			return
		}
		c, err := scopedComment(r.Context(), d, postID, commentID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		out, err := d.Views.DecorateComment(r.Context(), c)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// UpdateComment handles PUT /posts/{postId}/comments/{commentId}
func UpdateComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "commentId")
		if !ok {
			return
		}
		var req contentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := scopedComment(r.Context(), d, postID, commentID); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		c, err := d.Engine.UpdateComment(r.Context(), commentID, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// DeleteComment handles DELETE /posts/{postId}/comments/{commentId}.
// Replies underneath stay listable.
func DeleteComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "postId")
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "commentId")
		if !ok {
			return
		}
		if _, err := scopedComment(r.Context(), d, postID, commentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NoContent(w)
				return
			}
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		if err := d.Engine.DeleteComment(r.Context(), commentID); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.NoContent(w)
	}
}

// CommentThread handles GET /posts/{postId}/comments/{commentId}/thread: every
// reply under the comment at any depth, in path order.
func CommentThread(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := pathID(w, r, "postId"); !ok {
			return
		}
		commentID, ok := pathID(w, r, "commentId")
		if !ok {
			return
		}
		replies, err := d.Engine.RepliesUnderComment(r.Context(), commentID)
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
