package repo

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

var ErrTxDone = errors.New("transaction already committed or rolled back")

// MemoryStore keeps every record in process memory. Writes made through a Tx
// are staged and only become visible on Commit.
type MemoryStore struct {
	mu            sync.RWMutex
	seq           int64
	conversations map[string]model.Conversation
	messages      map[string][]model.Message
	suggestions   map[string][]model.Suggestion
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]model.Conversation),
		messages:      make(map[string][]model.Message),
		suggestions:   make(map[string][]model.Suggestion),
		now:           time.Now,
	}
}

func (m *MemoryStore) nextSeq() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

func (m *MemoryStore) CreateConversation(_ context.Context, userID string) (*model.Conversation, error) {
	now := m.now().UTC()
	conv := model.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.conversations[conv.ID] = conv
	m.mu.Unlock()
	return &conv, nil
}

func (m *MemoryStore) GetConversation(_ context.Context, conversationID string) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[conversationID]
	if !ok {
		return nil, model.ErrConversationNotFound
	}
	return &conv, nil
}

func (m *MemoryStore) ListSuggestions(_ context.Context, conversationID string) ([]model.Suggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSuggestions(m.suggestions[conversationID]), nil
}

func (m *MemoryStore) Begin(_ context.Context) (model.Tx, error) {
	return &memoryTx{store: m}, nil
}

type memoryTx struct {
	store         *MemoryStore
	done          bool
	conversations map[string]model.Conversation
	messages      []model.Message
	suggestions   []model.Suggestion
}

func (t *memoryTx) GetConversationForUpdate(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if t.done {
		return nil, ErrTxDone
	}
	if conv, ok := t.conversations[conversationID]; ok {
		return &conv, nil
	}
	return t.store.GetConversation(ctx, conversationID)
}

func (t *memoryTx) UpdateConversation(ctx context.Context, conv *model.Conversation) error {
	if t.done {
		return ErrTxDone
	}
	if _, err := t.GetConversationForUpdate(ctx, conv.ID); err != nil {
		return err
	}
	if t.conversations == nil {
		t.conversations = make(map[string]model.Conversation)
	}
	t.conversations[conv.ID] = *conv
	return nil
}

func (t *memoryTx) AddMessage(_ context.Context, msg *model.Message) error {
	if t.done {
		return ErrTxDone
	}
	msg.ID = uuid.NewString()
	msg.Seq = t.store.nextSeq()
	msg.CreatedAt = t.store.now().UTC()
	t.messages = append(t.messages, *msg)
	return nil
}

func (t *memoryTx) ListMessages(_ context.Context, conversationID string, limit int) ([]model.Message, error) {
	if t.done {
		return nil, ErrTxDone
	}
	t.store.mu.RLock()
	out := slices.Clone(t.store.messages[conversationID])
	t.store.mu.RUnlock()

	for _, msg := range t.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	slices.SortFunc(out, func(a, b model.Message) int { return cmp.Compare(a.Seq, b.Seq) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (t *memoryTx) InsertSuggestion(_ context.Context, s *model.Suggestion) error {
	if t.done {
		return ErrTxDone
	}
	s.ID = uuid.NewString()
	s.Seq = t.store.nextSeq()
	s.CreatedAt = t.store.now().UTC()
	stored := *s
	stored.Location = maps.Clone(s.Location)
	t.suggestions = append(t.suggestions, stored)
	return nil
}

func (t *memoryTx) ListSuggestions(ctx context.Context, conversationID string) ([]model.Suggestion, error) {
	if t.done {
		return nil, ErrTxDone
	}
	out, _ := t.store.ListSuggestions(ctx, conversationID)
	for _, s := range t.suggestions {
		if s.ConversationID == conversationID {
			out = append(out, s)
		}
	}
	return cloneSuggestions(out), nil
}

func (t *memoryTx) SuggestionExists(ctx context.Context, conversationID string, kind model.SuggestionType, title string) (bool, error) {
	rows, err := t.ListSuggestions(ctx, conversationID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(rows, func(s model.Suggestion) bool {
		return s.Type == kind && s.Title == title
	}), nil
}

func (t *memoryTx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	m := t.store
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conv := range t.conversations {
		m.conversations[id] = conv
	}
	for _, msg := range t.messages {
		m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	}
	for _, s := range t.suggestions {
		m.suggestions[s.ConversationID] = append(m.suggestions[s.ConversationID], s)
	}
	return nil
}

// Rollback discards staged writes. It is a no-op after Commit so callers can
// defer it unconditionally.
func (t *memoryTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.conversations = nil
	t.messages = nil
	t.suggestions = nil
	return nil
}

func cloneSuggestions(in []model.Suggestion) []model.Suggestion {
	out := make([]model.Suggestion, len(in))
	for i, s := range in {
		s.Location = maps.Clone(s.Location)
		out[i] = s
	}
	return out
}
