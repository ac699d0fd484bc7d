package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role tags a message as user- or assistant-sent.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// sortKeyTimeLayout is fixed-width so that keys sort lexicographically in
// creation order. Timestamps are always UTC; the layout carries no zone.
const sortKeyTimeLayout = "2006-01-02T15:04:05.000000000"

// Message is one immutable conversation turn. SortKey is the composite
// ordering key `<utc-timestamp>#<role>#<uuid>`: the fixed-width timestamp
// prefix gives chronological range reads, the uuid suffix gives uniqueness
// per (user, message).
type Message struct {
	UserID   int64    `json:"user_id"`
	SortKey  string   `json:"timestamp"`
	Role     Role     `json:"role"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords,omitempty"`
}

// NewSortKey builds the composite ordering key for a message created at t.
func NewSortKey(t time.Time, role Role) string {
	return t.UTC().Format(sortKeyTimeLayout) + "#" + string(role) + "#" + uuid.NewString()
}

// Time extracts the creation timestamp from the composite key.
// Returns the zero time if the key prefix is malformed.
func (m Message) Time() time.Time {
	prefix, _, ok := strings.Cut(m.SortKey, "#")
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(sortKeyTimeLayout, prefix)
	if err != nil {
		return time.Time{}
	}
	return t
}
