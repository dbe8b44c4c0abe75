package api

import (
	"net/http"
)

// Error codes returned in the envelope.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidID        = "INVALID_ID"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeNotFound         = "NOT_FOUND"
	CodeNotReady         = "NOT_READY"
	CodeInternal         = "INTERNAL"
)

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message, requestID string, details map[string]any) {
	WriteJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: message, Details: details, RequestID: requestID}})
}

func BadRequest(w http.ResponseWriter, code, message, requestID string, details map[string]any) {
	WriteError(w, http.StatusBadRequest, code, message, requestID, details)
}

// ValidationFailed reports per-field problems, keyed by field name.
func ValidationFailed(w http.ResponseWriter, requestID string, fields map[string]string) {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	BadRequest(w, CodeValidationFailed, "request validation failed", requestID, details)
}

func InvalidID(w http.ResponseWriter, requestID, param string) {
	BadRequest(w, CodeInvalidID, param+" must be a positive integer", requestID, map[string]any{"param": param})
}

func InvalidJSON(w http.ResponseWriter, requestID string) {
	BadRequest(w, CodeInvalidJSON, "invalid JSON", requestID, nil)
}

// MissingReference is the 400 form of NOT_FOUND: the request names a parent
// or target that does not resolve.
func MissingReference(w http.ResponseWriter, message, requestID string) {
	BadRequest(w, CodeNotFound, message, requestID, nil)
}

func NotFound(w http.ResponseWriter, message, requestID string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message, requestID, nil)
}

func NotReady(w http.ResponseWriter, message, requestID string) {
	WriteError(w, http.StatusServiceUnavailable, CodeNotReady, message, requestID, nil)
}

func Internal(w http.ResponseWriter, requestID string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", requestID, nil)
}
