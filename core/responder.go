package core

import "context"

// Responder is the capability that produces a copilot's textual reply.
//
// Implementations receive the copilot identifier, the prompt for this step and
// the chronological transcript of the session so far. They may block; callers
// bound them with a context deadline. Implementations must not retain or
// mutate the history slice.
type Responder interface {
	Respond(ctx context.Context, copilotID, prompt string, history []string) (string, error)
}

// ResponderFunc adapts an ordinary function to the Responder interface.
type ResponderFunc func(ctx context.Context, copilotID, prompt string, history []string) (string, error)

// Respond calls f(ctx, copilotID, prompt, history).
func (f ResponderFunc) Respond(ctx context.Context, copilotID, prompt string, history []string) (string, error) {
	return f(ctx, copilotID, prompt, history)
}
