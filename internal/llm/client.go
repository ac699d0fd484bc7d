// Package llm provides the AI model collaborator behind a narrow interface.
package llm

import "context"

// Message is one prompt message handed to the model.
type Message struct {
	Role    string
	Content string
}

// Client abstracts the external AI model. Implementations are polymorphic
// over provider; tests substitute a fake.
type Client interface {
	// Generate produces the assistant reply for one chat turn.
	Generate(ctx context.Context, messages []Message) (string, error)

	// Summarize condenses a conversation transcript. The model is asked for
	// structured JSON but the raw text is returned as-is; callers own parsing
	// and any fallback.
	Summarize(ctx context.Context, transcript string) (string, error)
}
