// Package api provides HTTP handlers for the wellness companion API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/go-chi/chi/v5"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// userIDParam parses the {user_id} route parameter. Non-positive and
// non-numeric values are rejected before any store access.
func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, &domain.ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	return userID, nil
}
