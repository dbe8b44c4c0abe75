package handlers

import (
	"net/http"

	"github.com/example/discussion-platform/internal/platform/api"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// ToggleLike handles POST .../like?userId= for any target kind. idParam names
// the URL parameter carrying the target id.
func ToggleLike(d Deps, kind target.Kind, idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, idParam)
		if !ok {
			return
		}
		userID, ok := queryID(w, r, "userId")
		if !ok {
			return
		}
		res, err := d.Likes.Toggle(r.Context(), userID, target.Of(kind, id))
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, res)
	}
}

// ListLikes handles GET .../likes, newest first.
func ListLikes(d Deps, kind target.Kind, idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, idParam)
		if !ok {
			return
		}
		likes, err := d.Likes.LikesForTarget(r.Context(), target.Of(kind, id))
		if err != nil {
			writeServiceError(w, r, d, err, notFoundAs400)
			return
		}
		api.WriteJSON(w, http.StatusOK, likes)
	}
}
