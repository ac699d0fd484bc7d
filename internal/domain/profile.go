// Package domain contains core domain types for the wellness companion.
package domain

import (
	"time"
)

// Profile is the durable per-user record of preferences, rolling history
// snippets, and accumulated conversation summaries.
type Profile struct {
	UserID      int64          `json:"user_id"`
	Age         *int           `json:"age,omitempty"`
	Background  string         `json:"background,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
	History     []HistoryEntry `json:"history"`
	Summaries   []Summary      `json:"summaries"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// HistoryEntry is a lightweight trace of one user message: the keywords it
// carried and a short snippet. Entries are append-only and trimmed to the
// most recent HistoryRetention.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Keywords  []string  `json:"keywords"`
	Snippet   string    `json:"snippet"`
}

// HistoryRetention bounds the rolling history kept on a profile.
const HistoryRetention = 50

// RecentSummaries returns up to n summaries, newest first.
func (p *Profile) RecentSummaries(n int) []Summary {
	if p == nil || n <= 0 || len(p.Summaries) == 0 {
		return nil
	}
	if n > len(p.Summaries) {
		n = len(p.Summaries)
	}
	out := make([]Summary, 0, n)
	for i := len(p.Summaries) - 1; i >= len(p.Summaries)-n; i-- {
		out = append(out, p.Summaries[i])
	}
	return out
}

// ProfileUpdate carries the optional scalar fields of a profile write.
// Nil pointers leave the stored value untouched; history and summaries are
// never writable through an update.
type ProfileUpdate struct {
	Age         *int           `json:"age,omitempty"`
	Background  *string        `json:"background,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// Validate checks update field bounds before any store access.
func (u ProfileUpdate) Validate() error {
	if u.Age != nil && (*u.Age < 1 || *u.Age > 150) {
		return &ValidationError{Field: "age", Reason: "must be between 1 and 150"}
	}
	if u.Background != nil && len(*u.Background) > 500 {
		return &ValidationError{Field: "background", Reason: "must be at most 500 characters"}
	}
	return nil
}
