package handlers

import (
	"net/http"

	"github.com/example/discussion-platform/internal/platform/api"
)

// UserPosts handles GET /users/{userId}/posts, drafts included.
func UserPosts(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		posts, err := d.Engine.PostsByAuthor(r.Context(), userID)
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

// UserComments handles GET /users/{userId}/comments
func UserComments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		comments, err := d.Engine.CommentsByAuthor(r.Context(), userID)
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

// UserReplies handles GET /users/{userId}/replies
func UserReplies(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		replies, err := d.Engine.RepliesByAuthor(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		writeDecoratedReplies(w, r, d, replies)
	}
}

// UserLikes handles GET /users/{userId}/likes
func UserLikes(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		likes, err := d.Likes.LikesForUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, likes)
	}
}
