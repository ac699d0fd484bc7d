package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
)

func TestAssembleBrandNewUser(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	a := NewAssembler(st, st)

	bundle, err := a.Assemble(context.Background(), 7, "I feel anxious about work")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if bundle.Profile != nil {
		t.Errorf("expected nil profile, got %+v", bundle.Profile)
	}
	if len(bundle.History) != 0 || len(bundle.Summaries) != 0 {
		t.Errorf("expected empty history and summaries, got %d/%d", len(bundle.History), len(bundle.Summaries))
	}
	if bundle.Incoming != "I feel anxious about work" {
		t.Errorf("incoming message not carried: %q", bundle.Incoming)
	}

	prompt := renderSystemPrompt(bundle)
	for _, placeholder := range []string{"User Profile:", "Not specified", "Past Conversation Summaries:", "Recent Conversation Context:"} {
		if strings.Contains(prompt, placeholder) {
			t.Errorf("prompt for new user contains %q", placeholder)
		}
	}
}

func TestAssembleHistoryWindow(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	a := NewAssembler(st, st)
	ctx := context.Background()

	for i := 0; i < historyWindow+5; i++ {
		if _, err := st.AppendMessage(ctx, 1, domain.RoleUser, fmt.Sprintf("msg %d", i), nil); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	bundle, err := a.Assemble(ctx, 1, "latest")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(bundle.History) != historyWindow {
		t.Fatalf("history window = %d, want %d", len(bundle.History), historyWindow)
	}
	if bundle.History[0].Content != "msg 5" {
		t.Errorf("window does not start at the oldest retained turn: %q", bundle.History[0].Content)
	}
	if last := bundle.History[len(bundle.History)-1]; last.Content != fmt.Sprintf("msg %d", historyWindow+4) {
		t.Errorf("window does not end at the newest turn: %q", last.Content)
	}
}

func TestAssembleSummariesNewestFirst(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	a := NewAssembler(st, st)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := st.AppendSummary(ctx, 2, domain.Summary{
			Summary:      fmt.Sprintf("summary %d", i),
			KeyTopics:    []string{"sleep"},
			Sentiment:    domain.SentimentNeutral,
			MessageCount: i,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("AppendSummary failed: %v", err)
		}
	}

	bundle, err := a.Assemble(ctx, 2, "hello")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(bundle.Summaries) != maxBundleSummaries {
		t.Fatalf("got %d summaries, want %d", len(bundle.Summaries), maxBundleSummaries)
	}
	want := []string{"summary 5", "summary 4", "summary 3"}
	for i, s := range bundle.Summaries {
		if s.Summary != want[i] {
			t.Errorf("summaries[%d] = %q, want %q", i, s.Summary, want[i])
		}
	}

	prompt := renderSystemPrompt(bundle)
	if !strings.Contains(prompt, "summary 5") || !strings.Contains(prompt, "Topics: sleep") {
		t.Errorf("prompt missing summary content:\n%s", prompt)
	}
}

func TestRenderSystemPromptProfileScalars(t *testing.T) {
	t.Parallel()

	age := 30
	bundle := &domain.ContextBundle{
		Profile: &domain.Profile{
			UserID:      1,
			Age:         &age,
			Background:  "Software Engineer",
			Preferences: map[string]any{"meditation": true, "exercise": false},
		},
		Incoming: "hi",
	}

	prompt := renderSystemPrompt(bundle)
	if !strings.Contains(prompt, "- Age: 30") {
		t.Errorf("prompt missing age:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Background: Software Engineer") {
		t.Errorf("prompt missing background:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Preferences: meditation") {
		t.Errorf("prompt missing enabled preference:\n%s", prompt)
	}
	if strings.Contains(prompt, "exercise") {
		t.Errorf("prompt includes disabled preference:\n%s", prompt)
	}
}
