package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/adapters/middleware"
	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// generateRequestID generates a unique request ID for tracing
func generateRequestID() string {
	return uuid.NewString()
}

// caller is the authenticated user of one request
type caller struct {
	requestID string
	userID    uuid.UUID
	isAdmin   bool
	start     time.Time
}

func (c caller) role() string {
	if c.isAdmin {
		return middleware.RoleAdmin
	}
	return "USER"
}

// identify reads the caller from the request context, answering 401/400 itself
func identify(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (caller, bool) {
	c := caller{requestID: generateRequestID(), start: time.Now()}

	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Warn().Str("request_id", c.requestID).Msg("failed to get user ID from context")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return c, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Warn().Str("request_id", c.requestID).Err(err).Msg("invalid user ID")
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return c, false
	}

	c.userID = userID
	c.isAdmin = middleware.IsAdmin(r.Context())
	return c, true
}

// pathUUID parses a path wildcard, answering 400 when it is not a UUID
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// logStructured logs one request with its caller metadata
func logStructured(logger zerolog.Logger, c caller, r *http.Request, statusCode int) {
	logger.Info().
		Str("request_id", c.requestID).
		Str("user_id", c.userID.String()).
		Str("role", c.role()).
		Str("method", r.Method).
		Str("endpoint", r.URL.Path).
		Int("status_code", statusCode).
		Int64("duration_ms", time.Since(c.start).Milliseconds()).
		Msg("request handled")
}

// statusForError maps core errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateWeek), errors.Is(err, domain.ErrDuplicateProfile):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the mapped status; internal errors are not echoed
func writeError(w http.ResponseWriter, logger zerolog.Logger, c caller, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("request_id", c.requestID).Str("endpoint", r.URL.Path).Msg("request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
	logStructured(logger, c, r, status)
}

// decodeBody decodes a JSON request body, rejecting unknown fields
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
