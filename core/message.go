package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/copilotmesh/internal/util"
)

// Role identifies the author of a history message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "USER"
	// RoleAgent marks messages produced by the primary agent.
	RoleAgent Role = "AGENT"
)

// Message is a single entry of the conversation history. Its String form
// ("USER: ...", "AGENT: ...") is what gets persisted.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a generated ID and current UTC timestamp.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        util.NewID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage is a convenience wrapper for a user-authored message.
func NewUserMessage(text string) Message { return NewMessage(RoleUser, text) }

// NewAgentMessage is a convenience wrapper for an agent-authored message.
func NewAgentMessage(text string) Message { return NewMessage(RoleAgent, text) }

// String renders the message as "<ROLE>: <text>".
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Text)
}

// ParseMessage parses a "<ROLE>: <text>" line. Lines without a known role
// prefix are treated as agent output.
func ParseMessage(line string) Message {
	for _, role := range []Role{RoleUser, RoleAgent} {
		prefix := string(role) + ": "
		if strings.HasPrefix(line, prefix) {
			return Message{Role: role, Text: strings.TrimPrefix(line, prefix)}
		}
	}
	return Message{Role: RoleAgent, Text: line}
}
