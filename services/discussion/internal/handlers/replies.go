package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/discussion-platform/internal/platform/api"
	"github.com/example/discussion-platform/services/discussion/internal/store"
)

// scopedReply loads a live reply and reports ErrNotFound unless it belongs to
// the given post and comment thread.
func scopedReply(ctx context.Context, d Deps, postID, commentID, replyID int64) (store.Reply, error) {
	rep, err := d.Engine.GetReply(ctx, replyID)
	if err != nil {
		return store.Reply{}, err
	}
	if rep.IsDeleted || rep.PostID != postID || rep.RootCommentID != commentID {
		return store.Reply{}, fmt.Errorf("reply %d under comment %d: %w", replyID, commentID, store.ErrNotFound)
	}
	return rep, nil
}

type replyRoute struct {
	postID, commentID, replyID int64
}

// replyIDs reads {postId}, {commentId} and, when withReply is set, {replyId}.
func replyIDs(w http.ResponseWriter, r *http.Request, withReply bool) (replyRoute, bool) {
	var rt replyRoute
	var ok bool
	if rt.postID, ok = pathID(w, r, "postId"); !ok {
		return rt, false
	}
	if rt.commentID, ok = pathID(w, r, "commentId"); !ok {
		return rt, false
	}
	if withReply {
		if rt.replyID, ok = pathID(w, r, "replyId"); !ok {
			return rt, false
		}
	}
	return rt, true
}

// CreateReplyToComment handles POST /posts/{postId}/comments/{commentId}/replies
func CreateReplyToComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, false)
		if !ok {
			return
		}
		var req createNodeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		rep, err := d.Engine.CreateReplyToComment(r.Context(), rt.postID, rt.commentID, req.AuthorID, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	}
}

// CreateReplyToReply handles POST /posts/{postId}/comments/{commentId}/replies/{replyId}/replies
func CreateReplyToReply(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, true)
		if !ok {
			return
		}
		var req createNodeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := scopedReply(r.Context(), d, rt.postID, rt.commentID, rt.replyID); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		rep, err := d.Engine.CreateReplyToReply(r.Context(), rt.postID, rt.replyID, req.AuthorID, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	}
}

// ListRepliesByComment handles GET /posts/{postId}/comments/{commentId}/replies:
// direct children of the comment only.
func ListRepliesByComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, false)
		if !ok {
			return
		}
		replies, err := d.Engine.RepliesByComment(r.Context(), rt.commentID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		writeDecoratedReplies(w, r, d, replies)
	}
}

// ListRepliesByParentReply handles GET .../replies/{replyId}/replies
func ListRepliesByParentReply(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, true)
		if !ok {
			return
		}
		replies, err := d.Engine.RepliesByParentReply(r.Context(), rt.replyID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		writeDecoratedReplies(w, r, d, replies)
	}
}

func writeDecoratedReplies(w http.ResponseWriter, r *http.Request, d Deps, replies []store.Reply) {
	out, err := d.Views.DecorateReplies(r.Context(), replies)
	if err != nil {
		writeServiceError(w, r, d, err, notFoundAs404)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}

// GetReply handles GET /posts/{postId}/comments/{commentId}/replies/{replyId}
func GetReply(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, true)
		if !ok {
			return
		}
		rep, err := scopedReply(r.Context(), d, rt.postID, rt.commentID, rt.replyID)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		out, err := d.Views.DecorateReply(r.Context(), rep)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs404)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// UpdateReply handles PUT /posts/{postId}/comments/{commentId}/replies/{replyId}
func UpdateReply(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, true)
		if !ok {
			return
		}
		var req contentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := scopedReply(r.Context(), d, rt.postID, rt.commentID, rt.replyID); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		rep, err := d.Engine.UpdateReply(r.Context(), rt.replyID, req.Content)
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	}
}

// DeleteReply handles DELETE /posts/{postId}/comments/{commentId}/replies/{replyId}
func DeleteReply(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, ok := replyIDs(w, r, true)
		if !ok {
			return
		}
		if _, err := scopedReply(r.Context(), d, rt.postID, rt.commentID, rt.replyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NoContent(w)
				return
			}
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		if err := d.Engine.DeleteReply(r.Context(), rt.replyID); err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.NoContent(w)
	}
}
