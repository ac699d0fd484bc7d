package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amreeva/wellness-companion/internal/domain"
)

const systemPromptHeader = `You are an AI wellness companion focused on mental wellness and cognitive enhancement.

Your core responsibilities:
1. Provide supportive, warm, and professional responses
2. Stay strictly within wellness and cognitive enhancement domains
3. Consider the user's profile and conversation history for personalized responses
4. For off-topic questions, gently redirect to wellness topics
5. NEVER provide medical diagnosis or treatment advice - always suggest consulting healthcare professionals`

const systemPromptFooter = `Guidelines:
- Use empathetic and encouraging language
- Suggest evidence-based wellness practices
- Encourage healthy habits and self-care
- Recognize when professional help may be needed
- Keep responses concise but meaningful (2-4 paragraphs)

Remember: You're a supportive companion, not a medical professional.`

// renderSystemPrompt turns a context bundle into the model's system prompt.
// Absent profile fields are omitted entirely, never padded with placeholders.
func renderSystemPrompt(b *domain.ContextBundle) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	sb.WriteString("\n\n")

	if section := renderProfile(b.Profile); section != "" {
		sb.WriteString("User Profile:\n")
		sb.WriteString(section)
		sb.WriteString("\n")
	}

	if len(b.Summaries) > 0 {
		sb.WriteString("Past Conversation Summaries:\n")
		for i, s := range b.Summaries {
			fmt.Fprintf(&sb, "Summary %d:\n- %s\n- Topics: %s\n- Sentiment: %s\n",
				i+1, s.Summary, strings.Join(s.KeyTopics, ", "), s.Sentiment)
		}
		sb.WriteString("\n")
	}

	if len(b.History) > 0 {
		sb.WriteString("Recent Conversation Context:\n")
		for _, m := range b.History {
			fmt.Fprintf(&sb, "%s: %s\n", titleRole(m.Role), m.Content)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(systemPromptFooter)
	return sb.String()
}

func renderProfile(p *domain.Profile) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	if p.Age != nil {
		fmt.Fprintf(&sb, "- Age: %d\n", *p.Age)
	}
	if p.Background != "" {
		fmt.Fprintf(&sb, "- Background: %s\n", p.Background)
	}
	if prefs := enabledPreferences(p.Preferences); len(prefs) > 0 {
		fmt.Fprintf(&sb, "- Preferences: %s\n", strings.Join(prefs, ", "))
	}
	return sb.String()
}

// enabledPreferences lists preference keys with truthy values, sorted for
// deterministic prompts.
func enabledPreferences(prefs map[string]any) []string {
	var out []string
	for k, v := range prefs {
		if enabled, ok := v.(bool); ok && !enabled {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func titleRole(r domain.Role) string {
	switch r {
	case domain.RoleUser:
		return "User"
	case domain.RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// renderTranscript flattens the full message set for summarization.
func renderTranscript(msgs []domain.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&sb, "%s: %s\n", titleRole(m.Role), m.Content)
	}
	return sb.String()
}
