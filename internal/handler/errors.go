package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
)

// ErrorDetail is the body of every error response. The limit fields are
// only set for limit_exceeded so the client can render an upgrade prompt.
type ErrorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	Current  *int64 `json:"current,omitempty"`
	Limit    *int64 `json:"limit,omitempty"`
}

// ErrorResponse wraps ErrorDetail under an "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// writeError maps a service error onto a status code and error body.
// Anything that is not a known domain error is logged and answered with 500
// without leaking the message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *domain.LimitExceededError
	switch {
	case errors.As(err, &limitErr):
		current, limit := limitErr.Current, int64(limitErr.Limit)
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorDetail{
			Code:     "limit_exceeded",
			Message:  limitErr.Error(),
			Resource: string(limitErr.Resource),
			Current:  &current,
			Limit:    &limit,
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", unwrapMessage(err, domain.ErrNotFound)))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden", "you do not have access to this resource"))
	case errors.Is(err, domain.ErrExpired):
		writeJSON(w, http.StatusGone, errorBody("invitation_expired", "the invitation has expired"))
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorBody("invalid_state", unwrapMessage(err, domain.ErrInvalidState)))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", unwrapMessage(err, domain.ErrConflict)))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err, domain.ErrValidation)))
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// writeDecodeError answers a body that could not be decoded: 413 when the
// body-size middleware cut it off, 422 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("body_too_large", "request body too large"))
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", err.Error()))
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.ListService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 && i+len(prefix) < len(msg) {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}
