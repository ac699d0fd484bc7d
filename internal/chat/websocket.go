package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/coder/websocket"
)

// WebSocketHandler serves an interactive chat session over one WebSocket.
// Turn semantics are identical to the HTTP chat endpoint; only the transport
// differs.
type WebSocketHandler struct {
	service *Service
}

// NewWebSocketHandler creates a WebSocket chat handler.
func NewWebSocketHandler(service *Service) *WebSocketHandler {
	return &WebSocketHandler{service: service}
}

// wsRequest is one inbound client frame.
type wsRequest struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// wsResponse is one outbound server frame.
type wsResponse struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "user_id must be a positive integer", http.StatusBadRequest)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	slog.Info("WebSocket chat session started", "user_id", userID, "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		var req wsRequest
		if err := readJSON(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return
			}
			slog.Debug("WebSocket read error", "error", err, "user_id", userID)
			return
		}
		if req.Type != "chat" {
			h.write(ctx, ws, userID, wsResponse{Type: "error", Error: "unsupported frame type"})
			continue
		}

		result, err := h.service.Respond(ctx, userID, req.Content)
		if err != nil {
			var verr *domain.ValidationError
			msg := "chat turn failed"
			if errors.As(err, &verr) {
				msg = verr.Error()
			} else {
				slog.Error("WebSocket chat turn failed", "error", err, "user_id", userID)
			}
			h.write(ctx, ws, userID, wsResponse{Type: "error", Error: msg})
			continue
		}

		h.write(ctx, ws, userID, wsResponse{
			Type:      "reply",
			Content:   result.Reply,
			Timestamp: result.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
}

func (h *WebSocketHandler) write(ctx context.Context, ws *websocket.Conn, userID int64, resp wsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode WebSocket response", "error", err, "user_id", userID)
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err, "user_id", userID)
	}
}

func readJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	_, data, err := ws.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
