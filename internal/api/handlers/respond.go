package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/api/problem"
	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/domain/authz"
	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/events"
	"github.com/nitty-hq/server/internal/domain/users"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a JSON request body, rejecting unknown fields. The caller
// handles the false return; the error response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeValidation, "Request body too large", err, env)
			return false
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, env)
		return false
	}
	return true
}

// pathID parses a UUID path parameter, writing a 400 when it is missing or
// malformed.
func pathID(w http.ResponseWriter, r *http.Request, name, env string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", nil, env,
			problem.WithErrors(map[string]interface{}{name: "is required"}))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{name: "must be a UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps domain errors onto problem+json responses. Unmapped
// errors become 500s so internals never leak as client errors.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var forbidden authz.Forbidden
	var communityFilter communities.FilterError
	var eventFilter events.FilterError
	var pageField pagination.FieldError

	switch {
	case errors.As(err, &forbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, env)
	case errors.Is(err, users.ErrNotFound),
		errors.Is(err, communities.ErrNotFound),
		errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
	case errors.As(err, &communityFilter):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{communityFilter.Field: communityFilter.Message}))
	case errors.As(err, &eventFilter):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{eventFilter.Field: eventFilter.Message}))
	case errors.As(err, &pageField):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{pageField.Field: pageField.Message}))
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Email already registered", err, env)
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, users.ErrInactiveUser),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenSignatureInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}
