// Package handlers contains the HTTP handlers for the newsroom API.
// Handlers are grouped by concern (auth, articles, categories, tags,
// accounts, reports, public) and receive their dependencies through the
// handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"newsroom/internal/store"
)

// maxBodyBytes caps request bodies; article bodies are at most 4000
// characters so this is generous.
const maxBodyBytes = 1 << 20

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response failed", "error", err)
		}
	}
}

// errorBody is the uniform error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// respondError maps store sentinel errors onto HTTP statuses: validation
// failures become 422, conflicts 409, missing records 404, anything else
// an opaque 500. Internal details are logged, never sent to the client.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		slog.Error("internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// respondNotFound writes a 404 for lookups that returned nil.
func respondNotFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
}

// invalidQuery reports a malformed query parameter as a validation error.
func invalidQuery(key string) error {
	return fmt.Errorf("%w: invalid %q query parameter", store.ErrValidation, key)
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", store.ErrValidation)
	}
	return nil
}
