package history

import (
	"errors"

	"github.com/hupe1980/copilotmesh/core"
)

// ErrIndexOutOfRange is returned by Get for indexes outside the history.
var ErrIndexOutOfRange = errors.New("message index out of range")

// Store persists the message history of conversations.
type Store interface {
	Append(conversationID string, msg core.Message) error
	Messages(conversationID string) ([]core.Message, error)
	Clear(conversationID string) error
}

// Lines renders messages as "<ROLE>: <text>" lines.
func Lines(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.String()
	}
	return out
}

// Get returns the message at index i of a conversation.
func Get(s Store, conversationID string, i int) (core.Message, error) {
	msgs, err := s.Messages(conversationID)
	if err != nil {
		return core.Message{}, err
	}
	if i < 0 || i >= len(msgs) {
		return core.Message{}, ErrIndexOutOfRange
	}
	return msgs[i], nil
}
