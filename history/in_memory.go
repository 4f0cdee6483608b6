package history

import (
	"sync"

	"github.com/hupe1980/copilotmesh/core"
)

// InMemoryStore is a volatile Store keeping conversations in a process local
// map. It is safe for concurrent access and best suited for tests or a
// single interactive session. Returned slices are copies.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]core.Message
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string][]core.Message)}
}

// Append adds a message to the conversation, creating it lazily.
func (s *InMemoryStore) Append(conversationID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationID] = append(s.conversations[conversationID], msg)
	return nil
}

// Messages returns a copy of the conversation's messages.
func (s *InMemoryStore) Messages(conversationID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.conversations[conversationID]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear removes all messages of a conversation.
func (s *InMemoryStore) Clear(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}
