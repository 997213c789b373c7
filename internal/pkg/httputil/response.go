package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

// ErrorResponse is the error envelope every API error uses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data with the given status and a JSON content type.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("response encode failed", "error", err.Error())
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 response with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes a JSON error response for client errors.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 with a generic message. The real error is
// logged, never sent to the client.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("internal error", "error", err.Error())
	Error(w, http.StatusInternalServerError, "internal server error")
}

// DomainError maps the shared error taxonomy onto HTTP statuses:
// validation 400, not found 404, version conflict 409, rate limited
// 429, generation failed 502, storage and anything unrecognized 500.
// Rate-limit responses carry a code so UIs can show "try later"
// instead of a generic failure.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrVersionConflict):
		JSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "version_conflict"})
	case errors.Is(err, domain.ErrRateLimited):
		JSON(w, http.StatusTooManyRequests, ErrorResponse{Error: err.Error(), Code: "rate_limited"})
	case errors.Is(err, domain.ErrGenerationFailed):
		JSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "generation_failed"})
	default:
		InternalError(w, err)
	}
}

// Decode reads JSON from the request body into dst. On a parse failure
// it writes a 400 and returns false.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
