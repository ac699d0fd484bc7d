package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/store"
	"github.com/go-chi/chi/v5"
)

// ProfileHandler is a thin pass-through to the profile store adapter.
type ProfileHandler struct {
	profiles store.ProfileStore
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(profiles store.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes registers profile routes.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/profile/{user_id}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.PutProfile)
		r.Delete("/", h.DeleteProfile)
	})
}

// GetProfile returns the stored profile. A missing profile is a 404, never a
// synthesized default.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get profile", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to retrieve profile")
		return
	}

	JSON(w, http.StatusOK, profile)
}

// PutProfile creates or merges a profile.
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := upd.Validate(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profiles.PutProfile(r.Context(), userID, upd)
	if err != nil {
		slog.Error("Failed to update profile", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "Profile updated successfully",
		"user_id":    userID,
		"updated_at": profile.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// DeleteProfile removes the profile. Conversation history is untouched.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	existed, err := h.profiles.DeleteProfile(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to delete profile", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	if !existed {
		Error(w, http.StatusNotFound, "profile not found")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Profile deleted successfully",
		"user_id": userID,
	})
}
