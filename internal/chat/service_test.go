package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amreeva/wellness-companion/internal/domain"
)

func TestRespondRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	model := &fakeLLM{generateReply: "hi"}
	svc := NewService(st, st, model)
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int64
		text   string
	}{
		{"empty message", 1, "   "},
		{"oversized message", 1, strings.Repeat("a", maxMessageLen+1)},
		{"zero user id", 0, "hello"},
		{"negative user id", -3, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Respond(ctx, tc.userID, tc.text)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if len(st.ops) != 0 {
		t.Errorf("validation failures touched the store: %v", st.ops)
	}
}

func TestRespondAppendsBothTurns(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	model := &fakeLLM{generateReply: "  Try a short breathing exercise.  "}
	svc := NewService(st, st, model)
	ctx := context.Background()

	result, err := svc.Respond(ctx, 7, "work stress is ruining my sleep")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if result.Reply != "Try a short breathing exercise." {
		t.Errorf("reply not trimmed: %q", result.Reply)
	}
	if result.Timestamp.IsZero() {
		t.Error("result timestamp not set")
	}

	msgs, err := st.QueryMessages(ctx, 7, 10)
	if err != nil {
		t.Fatalf("QueryMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[1].Role != domain.RoleAssistant {
		t.Errorf("roles out of order: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if len(msgs[0].Keywords) == 0 {
		t.Error("user message stored without extracted keywords")
	}
	if len(msgs[1].Keywords) != 0 {
		t.Errorf("assistant message stored with keywords: %v", msgs[1].Keywords)
	}

	// Keyword-bearing turn leaves a rolling trace on the profile.
	p, err := st.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if len(p.History) != 1 {
		t.Fatalf("expected 1 profile history entry, got %d", len(p.History))
	}
	if p.History[0].Snippet != "work stress is ruining my sleep" {
		t.Errorf("unexpected snippet: %q", p.History[0].Snippet)
	}
}

func TestRespondSendsContextToModel(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	model := &fakeLLM{generateReply: "ok"}
	svc := NewService(st, st, model)
	ctx := context.Background()

	if _, err := svc.Respond(ctx, 3, "I started daily meditation"); err != nil {
		t.Fatalf("first Respond failed: %v", err)
	}
	if _, err := svc.Respond(ctx, 3, "it is helping with focus"); err != nil {
		t.Fatalf("second Respond failed: %v", err)
	}

	if len(model.lastMessages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(model.lastMessages))
	}
	system := model.lastMessages[0]
	if system.Role != "system" || !strings.Contains(system.Content, "I started daily meditation") {
		t.Errorf("system prompt missing prior history:\n%s", system.Content)
	}
	if model.lastMessages[1].Content != "it is helping with focus" {
		t.Errorf("user message not forwarded: %q", model.lastMessages[1].Content)
	}
}

func TestRespondModelFailureIsFatal(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	model := &fakeLLM{generateErr: errors.New("model unavailable")}
	svc := NewService(st, st, model)
	ctx := context.Background()

	_, err := svc.Respond(ctx, 5, "hello there")
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ai generate") {
		t.Errorf("error does not name the collaborator: %v", err)
	}

	msgs, _ := st.QueryMessages(ctx, 5, 10)
	if len(msgs) != 0 {
		t.Errorf("failed turn persisted %d messages", len(msgs))
	}
}
