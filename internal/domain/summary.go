package domain

import (
	"strings"
	"time"
)

// Sentiment classifies the overall tone of a cleared conversation.
// The enum is closed: anything the model emits outside it is coerced to neutral.
type Sentiment string

const (
	SentimentPositive  Sentiment = "positive"
	SentimentNeutral   Sentiment = "neutral"
	SentimentConcerned Sentiment = "concerned"
)

// ParseSentiment coerces free-form model output onto the closed enum.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentConcerned:
		return SentimentConcerned
	default:
		return SentimentNeutral
	}
}

// DateRange spans the messages folded into a summary. Start <= End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary is the structured distillation of a cleared conversation, folded
// back into the owning profile for future context. Summaries are created
// exactly once per clear and never mutated.
type Summary struct {
	Summary      string    `json:"summary"`
	KeyTopics    []string  `json:"key_topics"`
	Sentiment    Sentiment `json:"sentiment"`
	Insights     string    `json:"insights,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	DateRange    DateRange `json:"date_range"`
}
