package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/keywords"
	"github.com/amreeva/wellness-companion/internal/llm"
	"github.com/amreeva/wellness-companion/internal/store"
)

// fallbackTopicCap bounds the topics a fallback summary aggregates.
const fallbackTopicCap = 5

// ClearResult is the outcome of a clear-history run.
type ClearResult struct {
	DeletedCount int64
	Summary      *domain.Summary
}

// Summarizer folds a user's full conversation into a durable summary and
// clears the message set. Model or parse failures degrade to a deterministic
// fallback summary; they never block deletion. A store failure while
// persisting the summary is fatal, so a reported success always means the
// summary was durably appended before any message was deleted.
type Summarizer struct {
	profiles store.ProfileStore
	history  store.HistoryStore
	model    llm.Client
}

// NewSummarizer creates a summarizer over explicit adapter instances.
func NewSummarizer(profiles store.ProfileStore, history store.HistoryStore, model llm.Client) *Summarizer {
	return &Summarizer{profiles: profiles, history: history, model: model}
}

// ClearHistory runs the full clear: fetch everything, summarize (or fall
// back), persist the summary, then delete. An empty history is a success
// with a zero count and no summary.
func (s *Summarizer) ClearHistory(ctx context.Context, userID int64) (*ClearResult, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	// The summary must reflect the whole conversation since the last clear,
	// not the chat-turn read window.
	msgs, err := s.history.AllMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if len(msgs) == 0 {
		deleted, err := s.history.DeleteAllMessages(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		return &ClearResult{DeletedCount: deleted}, nil
	}

	summary := s.summarize(ctx, msgs)

	// Append before delete: a crash between the two steps leaves messages
	// undeleted alongside a saved summary, never the reverse.
	if err := s.profiles.AppendSummary(ctx, userID, summary); err != nil {
		return nil, fmt.Errorf("profile store: append summary: %w", err)
	}

	deleted, err := s.history.DeleteAllMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history store: delete messages: %w", err)
	}

	return &ClearResult{DeletedCount: deleted, Summary: &summary}, nil
}

// summarize produces the structured summary for a non-empty message set,
// falling back to a deterministic summary when the model or parsing fails.
func (s *Summarizer) summarize(ctx context.Context, msgs []domain.Message) domain.Summary {
	summary, err := s.modelSummary(ctx, msgs)
	if err != nil {
		slog.Warn("summarization degraded to fallback", "error", err)
		summary = fallbackSummary(msgs)
	}

	summary.MessageCount = len(msgs)
	summary.CreatedAt = time.Now().UTC()
	summary.DateRange = domain.DateRange{
		Start: msgs[0].Time(),
		End:   msgs[len(msgs)-1].Time(),
	}
	return summary
}

// modelSummaryPayload is the JSON shape requested from the model.
type modelSummaryPayload struct {
	Summary   string   `json:"summary"`
	KeyTopics []string `json:"key_topics"`
	Sentiment string   `json:"sentiment"`
	Insights  string   `json:"insights"`
}

func (s *Summarizer) modelSummary(ctx context.Context, msgs []domain.Message) (domain.Summary, error) {
	raw, err := s.model.Summarize(ctx, renderTranscript(msgs))
	if err != nil {
		return domain.Summary{}, fmt.Errorf("ai summarize: %w", err)
	}

	var payload modelSummaryPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return domain.Summary{}, fmt.Errorf("parse summary payload: %w", err)
	}

	narrative := strings.TrimSpace(payload.Summary)
	if narrative == "" {
		narrative = "Previous wellness conversation"
	}

	return domain.Summary{
		Summary:   narrative,
		KeyTopics: dedupeTopics(payload.KeyTopics),
		Sentiment: domain.ParseSentiment(payload.Sentiment),
		Insights:  strings.TrimSpace(payload.Insights),
	}, nil
}

// fallbackSummary is fully deterministic: neutral sentiment and topics
// aggregated from keyword extraction across the whole conversation.
func fallbackSummary(msgs []domain.Message) domain.Summary {
	var topics []string
	for _, m := range msgs {
		topics = append(topics, keywords.Extract(m.Content)...)
	}
	topics = dedupeTopics(topics)
	if len(topics) > fallbackTopicCap {
		topics = topics[:fallbackTopicCap]
	}

	return domain.Summary{
		Summary:   "Previous wellness conversation",
		KeyTopics: topics,
		Sentiment: domain.SentimentNeutral,
		Insights:  fmt.Sprintf("Conversation with %d messages", len(msgs)),
	}
}

// stripCodeFences unwraps a markdown-fenced payload, a common model habit.
func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if after, found := strings.CutPrefix(raw, "```json"); found {
		raw = after
	} else if after, found := strings.CutPrefix(raw, "```"); found {
		raw = after
	} else {
		return raw
	}
	if before, _, found := strings.Cut(raw, "```"); found {
		raw = before
	}
	return strings.TrimSpace(raw)
}

func dedupeTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
