// Package handlers exposes the discussion service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/discussion-platform/internal/platform/api"
	"github.com/example/discussion-platform/internal/platform/httpserver"
	"github.com/example/discussion-platform/services/discussion/internal/aggregate"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

// Deps are the collaborators every handler needs.
type Deps struct {
	Engine *threading.Engine
	Likes  ledger.Ledger
	Views  *aggregate.Service
	Log    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// notFoundStatus picks how ErrNotFound surfaces: direct lookups answer 404,
// while a missing creation anchor or update target is a bad request.
type notFoundStatus int

const (
	notFoundAs404 notFoundStatus = iota
	notFoundAs400
)

func writeServiceError(w http.ResponseWriter, r *http.Request, d Deps, err error, nf notFoundStatus) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		api.ValidationFailed(w, rid, verr.Fields)
	case errors.Is(err, ledger.ErrInvalidInput):
		api.BadRequest(w, api.CodeInvalidInput, err.Error(), rid, nil)
	case errors.Is(err, store.ErrNotFound) && nf == notFoundAs404:
		api.NotFound(w, err.Error(), rid)
	case errors.Is(err, store.ErrNotFound):
		api.MissingReference(w, err.Error(), rid)
	default:
		d.logger().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", rid),
			zap.Error(err),
		)
		api.Internal(w, rid)
	}
}

// pathID reads a positive int64 URL parameter, answering 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.InvalidID(w, httpserver.RequestIDFromContext(r.Context()), name)
		return 0, false
	}
	return id, true
}

// queryID reads a required positive int64 query parameter.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.ValidationFailed(w, httpserver.RequestIDFromContext(r.Context()), map[string]string{name: "is required"})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		api.InvalidJSON(w, httpserver.RequestIDFromContext(r.Context()))
		return false
	}
	return true
}

type contentRequest struct {
	Content string `json:"content"`
}

type createNodeRequest struct {
	AuthorID int64  `json:"authorId"`
	Content  string `json:"content"`
}
