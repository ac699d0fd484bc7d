// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/amreeva/wellness-companion/internal/domain"
)

// ErrNotFound reports an absent profile. Callers surface it as a not-found
// signal; missing records are never synthesized with default values.
var ErrNotFound = errors.New("not found")

// ProfileStore is the typed read/write adapter for user profiles.
type ProfileStore interface {
	// GetProfile retrieves a profile. Returns ErrNotFound when absent.
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)

	// PutProfile creates the profile if absent (setting created_at) or merges
	// the supplied scalar fields, refreshing updated_at. History and summaries
	// are never replaced by this operation.
	PutProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error)

	// DeleteProfile removes a profile, reporting whether one existed.
	DeleteProfile(ctx context.Context, userID int64) (bool, error)

	// AppendSummary appends a conversation summary to the profile, creating
	// the profile when absent so a summary is never dropped.
	AppendSummary(ctx context.Context, userID int64, s domain.Summary) error

	// AppendHistoryEntry appends a keyword/snippet trace, trimming the stored
	// sequence to the most recent domain.HistoryRetention entries.
	AppendHistoryEntry(ctx context.Context, userID int64, e domain.HistoryEntry) error
}

// HistoryStore is the typed append/query/delete adapter for the timestamped
// message records of a conversation.
type HistoryStore interface {
	// AppendMessage stores one turn, assigning the composite ordering key at
	// write time so messages are retrievable in creation order.
	AppendMessage(ctx context.Context, userID int64, role domain.Role, content string, kw []string) (*domain.Message, error)

	// QueryMessages returns the newest messages up to limit, in chronological
	// order. A non-positive limit falls back to a bounded default.
	QueryMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error)

	// AllMessages returns the full message set in chronological order.
	AllMessages(ctx context.Context, userID int64) ([]domain.Message, error)

	// DeleteAllMessages removes every message for the user. Idempotent:
	// deleting an empty history returns 0 without error.
	DeleteAllMessages(ctx context.Context, userID int64) (int64, error)
}

// Store combines both adapters with connection lifecycle operations.
type Store interface {
	ProfileStore
	HistoryStore

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
