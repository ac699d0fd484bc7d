package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amreeva/wellness-companion/internal/chat"
	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/store"
	"github.com/go-chi/chi/v5"
)

// ChatHandler serves the chat turn and conversation history endpoints.
type ChatHandler struct {
	service    *chat.Service
	summarizer *chat.Summarizer
	history    store.HistoryStore
}

// NewChatHandler creates a chat handler over the given collaborators.
func NewChatHandler(service *chat.Service, summarizer *chat.Summarizer, history store.HistoryStore) *ChatHandler {
	return &ChatHandler{service: service, summarizer: summarizer, history: history}
}

// RegisterRoutes registers chat and history routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat/{user_id}", h.Chat)
		r.Get("/history/{user_id}", h.GetHistory)
		r.Delete("/history/{user_id}", h.ClearHistory)
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	Timestamp string `json:"timestamp"`
}

// Chat runs one assistant turn for the user.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Respond(r.Context(), userID, req.Message)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		slog.Error("Chat turn failed", "error", err, "user_id", userID)
		var uerr *chat.UpstreamError
		if errors.As(err, &uerr) {
			Error(w, http.StatusBadGateway, "ai service unavailable")
			return
		}
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Reply:     result.Reply,
		Timestamp: result.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

type historyItem struct {
	UserID    int64    `json:"user_id"`
	Timestamp string   `json:"timestamp"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Keywords  []string `json:"keywords"`
}

type historyResponse struct {
	UserID     int64         `json:"user_id"`
	Items      []historyItem `json:"items"`
	TotalCount int           `json:"total_count"`
}

// GetHistory returns the newest messages up to limit, chronologically ordered.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 100 {
			Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
	}

	msgs, err := h.history.QueryMessages(r.Context(), userID, limit)
	if err != nil {
		slog.Error("Failed to query history", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	items := make([]historyItem, 0, len(msgs))
	for _, m := range msgs {
		kw := m.Keywords
		if kw == nil {
			kw = []string{}
		}
		items = append(items, historyItem{
			UserID:    m.UserID,
			Timestamp: m.SortKey,
			Role:      string(m.Role),
			Content:   m.Content,
			Keywords:  kw,
		})
	}

	JSON(w, http.StatusOK, historyResponse{
		UserID:     userID,
		Items:      items,
		TotalCount: len(items),
	})
}

type clearHistoryResponse struct {
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	UserID       int64           `json:"user_id"`
	DeletedCount int64           `json:"deleted_count"`
	Summary      *domain.Summary `json:"summary"`
}

// ClearHistory summarizes and deletes the user's conversation. An empty
// history is a success with a zero count and a null summary.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.summarizer.ClearHistory(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to clear history", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	msg := "No conversation history to clear"
	if result.Summary != nil {
		msg = "Cleared " + strconv.FormatInt(result.DeletedCount, 10) + " messages and saved conversation summary"
	}
	JSON(w, http.StatusOK, clearHistoryResponse{
		Status:       "success",
		Message:      msg,
		UserID:       userID,
		DeletedCount: result.DeletedCount,
		Summary:      result.Summary,
	})
}
