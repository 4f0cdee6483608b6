package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/copilotmesh/core"
)

// ErrScripted is returned by ScriptedResponder for copilots scripted to fail.
var ErrScripted = errors.New("scripted failure")

// Call records one Respond invocation.
type Call struct {
	Copilot string
	Prompt  string
	History []string
}

// ScriptedResponder replies from fixed per-copilot scripts. Each copilot's
// replies are consumed in order and the last one repeats once exhausted.
// Copilots without a script answer with Default (or "<name> has nothing to add").
type ScriptedResponder struct {
	mu      sync.Mutex
	scripts map[string][]string
	pos     map[string]int
	failing map[string]bool
	hang    map[string]bool
	calls   []Call

	// Default is used for copilots without a script.
	Default string
}

var _ core.Responder = (*ScriptedResponder)(nil)

// NewScriptedResponder creates an empty scripted responder.
func NewScriptedResponder() *ScriptedResponder {
	return &ScriptedResponder{
		scripts: map[string][]string{},
		pos:     map[string]int{},
		failing: map[string]bool{},
		hang:    map[string]bool{},
	}
}

// Script sets the replies of a copilot (chainable).
func (s *ScriptedResponder) Script(copilot string, replies ...string) *ScriptedResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[copilot] = replies
	s.pos[copilot] = 0
	return s
}

// Fail makes every call for the copilot return ErrScripted (chainable).
func (s *ScriptedResponder) Fail(copilot string) *ScriptedResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[copilot] = true
	return s
}

// Hang makes calls for the copilot block until the context ends (chainable).
func (s *ScriptedResponder) Hang(copilot string) *ScriptedResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hang[copilot] = true
	return s
}

// Respond implements core.Responder.
func (s *ScriptedResponder) Respond(ctx context.Context, copilot, prompt string, history []string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Copilot: copilot, Prompt: prompt, History: append([]string(nil), history...)})
	hang := s.hang[copilot]
	fail := s.failing[copilot]
	s.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if fail {
		return "", fmt.Errorf("%s: %w", copilot, ErrScripted)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	script, ok := s.scripts[copilot]
	if !ok || len(script) == 0 {
		if s.Default != "" {
			return s.Default, nil
		}
		return copilot + " has nothing to add", nil
	}

	i := s.pos[copilot]
	if i >= len(script) {
		i = len(script) - 1
	}
	s.pos[copilot]++
	return script[i], nil
}

// Calls returns the recorded invocations in order.
func (s *ScriptedResponder) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Echo is a responder that answers with a fixed reply for every copilot.
func Echo(reply string) core.Responder {
	return core.ResponderFunc(func(context.Context, string, string, []string) (string, error) {
		return reply, nil
	})
}
