// Package chat implements the context assembly and summarization engine.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/store"
)

const (
	// historyWindow bounds how many recent turns feed one chat turn.
	historyWindow = 20
	// maxBundleSummaries bounds how many past summaries feed one chat turn.
	maxBundleSummaries = 3
)

// Assembler builds the context bundle handed to the AI model for one turn.
// It is a pure assembly step: no AI invocation, no writes.
type Assembler struct {
	profiles store.ProfileStore
	history  store.HistoryStore
}

// NewAssembler creates an assembler over the given adapters.
func NewAssembler(profiles store.ProfileStore, history store.HistoryStore) *Assembler {
	return &Assembler{profiles: profiles, history: history}
}

// Assemble gathers profile scalars, the recent history window, and the
// newest summaries for userID. A brand-new user yields a bundle carrying
// only the incoming message.
func (a *Assembler) Assemble(ctx context.Context, userID int64, incoming string) (*domain.ContextBundle, error) {
	bundle := &domain.ContextBundle{Incoming: incoming}

	profile, err := a.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("profile store: %w", err)
	}
	if profile != nil {
		bundle.Profile = profile
		bundle.Summaries = profile.RecentSummaries(maxBundleSummaries)
	}

	msgs, err := a.history.QueryMessages(ctx, userID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	bundle.History = msgs

	return bundle, nil
}
