package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/keywords"
	"github.com/amreeva/wellness-companion/internal/llm"
	"github.com/amreeva/wellness-companion/internal/store"
)

const (
	maxMessageLen = 5000
	snippetLen    = 100
)

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Reply     string
	Timestamp time.Time
}

// UpstreamError reports a failure of the external AI model. Callers map it
// to a gateway-class response instead of an internal one.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "ai generate: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Service runs chat turns: assemble context, call the model, persist both
// sides of the exchange.
type Service struct {
	profiles  store.ProfileStore
	history   store.HistoryStore
	model     llm.Client
	assembler *Assembler
}

// NewService creates a chat service over explicit adapter instances.
func NewService(profiles store.ProfileStore, history store.HistoryStore, model llm.Client) *Service {
	return &Service{
		profiles:  profiles,
		history:   history,
		model:     model,
		assembler: NewAssembler(profiles, history),
	}
}

// ValidateMessage rejects malformed chat input before any store access.
func ValidateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return &domain.ValidationError{Field: "message", Reason: "must not be empty"}
	}
	if len(text) > maxMessageLen {
		return &domain.ValidationError{Field: "message", Reason: fmt.Sprintf("must be at most %d characters", maxMessageLen)}
	}
	return nil
}

// ValidateUserID rejects non-positive user identities.
func ValidateUserID(userID int64) error {
	if userID <= 0 {
		return &domain.ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	return nil
}

// Respond executes one chat turn for userID. A model failure is fatal for
// the turn; nothing is persisted in that case.
func (s *Service) Respond(ctx context.Context, userID int64, text string) (*TurnResult, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := ValidateMessage(text); err != nil {
		return nil, err
	}

	bundle, err := s.assembler.Assemble(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.model.Generate(ctx, []llm.Message{
		{Role: "system", Content: renderSystemPrompt(bundle)},
		{Role: "user", Content: bundle.Incoming},
	})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	reply = strings.TrimSpace(reply)

	kw := keywords.Extract(text)
	userMsg, err := s.history.AppendMessage(ctx, userID, domain.RoleUser, text, kw)
	if err != nil {
		return nil, fmt.Errorf("history store: append user message: %w", err)
	}
	assistantMsg, err := s.history.AppendMessage(ctx, userID, domain.RoleAssistant, reply, nil)
	if err != nil {
		return nil, fmt.Errorf("history store: append assistant message: %w", err)
	}

	// Rolling profile trace of what the user talks about. Not critical for
	// the turn, so a failure here only logs.
	if len(kw) > 0 {
		entry := domain.HistoryEntry{
			Timestamp: userMsg.Time(),
			Keywords:  kw,
			Snippet:   snippet(text),
		}
		if err := s.profiles.AppendHistoryEntry(ctx, userID, entry); err != nil {
			slog.Warn("failed to append profile history entry", "user_id", userID, "error", err)
		}
	}

	return &TurnResult{Reply: reply, Timestamp: assistantMsg.Time()}, nil
}

func snippet(text string) string {
	if len(text) <= snippetLen {
		return text
	}
	return text[:snippetLen]
}
