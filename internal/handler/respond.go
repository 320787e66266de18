package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/service"
)

// envelope is the body shape of every JSON response.
type envelope map[string]any

// failure is the body of every non-2xx JSON response.
type failure struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// requestError marks a request rejected before reaching a service, such as
// a malformed body or path parameter. It maps to 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// writeJSON writes payload with "success": true merged in.
func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	payload["success"] = true
	writeBody(w, status, payload)
}

func writeFailure(w http.ResponseWriter, status int, message string, fields []domain.FieldError) {
	writeBody(w, status, failure{Success: false, Message: message, Errors: fields})
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode error cannot change the response.
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON decodes the request body into dst. An empty body, malformed JSON
// or a body over the size limit each produce a distinct error.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &maxErr):
		return maxErr
	case errors.Is(err, io.EOF):
		return badRequest("Request body is required")
	default:
		return badRequest("Invalid request body: %v", err)
	}
}

// writeError maps err to a status code and failure envelope. Unexpected
// errors are logged and reported as a bare 500 so internals never leak.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs  domain.ValidationErrors
		perr   *domain.ParamError
		reqErr *requestError
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		writeFailure(w, http.StatusBadRequest, "Validation failed", verrs)
	case errors.As(err, &perr):
		writeFailure(w, http.StatusBadRequest, perr.Error(), nil)
	case errors.As(err, &reqErr):
		writeFailure(w, http.StatusBadRequest, reqErr.msg, nil)
	case errors.As(err, &maxErr):
		writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidParameter):
		writeFailure(w, http.StatusBadRequest, "Validation failed", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
	case errors.Is(err, domain.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "Not authorized to access this resource", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, domain.ErrConflict):
		writeFailure(w, http.StatusConflict, "Resource already exists", nil)
	case errors.Is(err, service.ErrUploadsDisabled):
		writeFailure(w, http.StatusServiceUnavailable, service.ErrUploadsDisabled.Error(), nil)
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeFailure(w, http.StatusInternalServerError, "Server error", nil)
	}
}

// writeTripError is writeError with trip-specific wording for 403 and 404.
// verb completes "Not authorized to <verb> this trip".
func (s *Server) writeTripError(w http.ResponseWriter, r *http.Request, err error, verb string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "Not authorized to "+verb+" this trip", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Trip not found", nil)
	default:
		s.writeError(w, r, err)
	}
}
