package chat

import (
	"context"
	"sync"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	"github.com/amreeva/wellness-companion/internal/llm"
	"github.com/amreeva/wellness-companion/internal/store"
)

// fakeStore implements store.ProfileStore and store.HistoryStore in memory,
// recording operation order for persistence-ordering assertions.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[int64]*domain.Profile
	messages map[int64][]domain.Message
	ops      []string

	appendSummaryErr error
	allMessagesErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[int64]*domain.Profile),
		messages: make(map[int64][]domain.Message),
	}
}

func (f *fakeStore) record(op string) { f.ops = append(f.ops, op) }

func (f *fakeStore) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) PutProfile(_ context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		p = &domain.Profile{UserID: userID, CreatedAt: time.Now().UTC()}
		f.profiles[userID] = p
	}
	if upd.Age != nil {
		p.Age = upd.Age
	}
	if upd.Background != nil {
		p.Background = *upd.Background
	}
	if upd.Preferences != nil {
		p.Preferences = upd.Preferences
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DeleteProfile(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.profiles[userID]
	delete(f.profiles, userID)
	return ok, nil
}

func (f *fakeStore) AppendSummary(_ context.Context, userID int64, s domain.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendSummary")
	if f.appendSummaryErr != nil {
		return f.appendSummaryErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		p = &domain.Profile{UserID: userID, CreatedAt: time.Now().UTC()}
		f.profiles[userID] = p
	}
	p.Summaries = append(p.Summaries, s)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) AppendHistoryEntry(_ context.Context, userID int64, e domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendHistoryEntry")
	p, ok := f.profiles[userID]
	if !ok {
		p = &domain.Profile{UserID: userID, CreatedAt: time.Now().UTC()}
		f.profiles[userID] = p
	}
	p.History = append(p.History, e)
	return nil
}

func (f *fakeStore) AppendMessage(_ context.Context, userID int64, role domain.Role, content string, kw []string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendMessage")
	m := domain.Message{
		UserID:   userID,
		SortKey:  domain.NewSortKey(time.Now(), role),
		Role:     role,
		Content:  content,
		Keywords: kw,
	}
	f.messages[userID] = append(f.messages[userID], m)
	return &m, nil
}

func (f *fakeStore) QueryMessages(_ context.Context, userID int64, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[userID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeStore) AllMessages(_ context.Context, userID int64) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allMessagesErr != nil {
		return nil, f.allMessagesErr
	}
	out := make([]domain.Message, len(f.messages[userID]))
	copy(out, f.messages[userID])
	return out, nil
}

func (f *fakeStore) DeleteAllMessages(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteAllMessages")
	n := int64(len(f.messages[userID]))
	delete(f.messages, userID)
	return n, nil
}

// fakeLLM implements llm.Client with canned responses.
type fakeLLM struct {
	generateReply string
	generateErr   error
	summarizeRaw  string
	summarizeErr  error

	lastMessages   []llm.Message
	lastTranscript string
}

func (f *fakeLLM) Generate(_ context.Context, messages []llm.Message) (string, error) {
	f.lastMessages = messages
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateReply, nil
}

func (f *fakeLLM) Summarize(_ context.Context, transcript string) (string, error) {
	f.lastTranscript = transcript
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summarizeRaw, nil
}
