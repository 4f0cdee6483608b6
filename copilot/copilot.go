// Package copilot turns language models into copilots: it implements the
// core.Responder capability on top of model.Model, giving every copilot a
// persona instruction and the recent deliberation transcript as context.
package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/internal/util"
	"github.com/hupe1980/copilotmesh/model"
)

// DefaultInstruction is the persona template for ordinary copilots.
const DefaultInstruction = `You are {{.name}}, one of the copilots ({{join ", " .peers}}) helping {{.agent}} answer the user.
Build on the discussion, keep your reply to a few sentences and say explicitly when you agree with another copilot.
Call out a solution, insight or breakthrough when you have one.`

// DefaultAdvocateInstruction is the persona template for the devil's advocate.
const DefaultAdvocateInstruction = `You are {{.name}}, the devil's advocate among the copilots ({{join ", " .peers}}) helping {{.agent}}.
Challenge assumptions, point out risks and weak arguments, and only agree when the case is convincing.
Keep your reply to a few sentences.`

// Options configures a ModelResponder.
type Options struct {
	// AgentName is the primary agent the copilots work for.
	AgentName string
	// Roster is rendered into the persona as the list of peers.
	Roster core.Roster
	// DevilsAdvocate receives AdvocateInstruction instead of Instruction.
	DevilsAdvocate string
	// Instruction and AdvocateInstruction are text/template persona templates
	// with the variables name, peers and agent.
	Instruction         string
	AdvocateInstruction string
	// MaxHistoryLines bounds the transcript lines sent as context (0 = all).
	MaxHistoryLines int
	// Stream requests streaming generation from the model.
	Stream bool
	// Models overrides the model for individual copilots.
	Models map[string]model.Model
}

// ModelResponder implements core.Responder by prompting a model.Model.
type ModelResponder struct {
	model model.Model
	opts  Options
}

var _ core.Responder = (*ModelResponder)(nil)

// NewModelResponder creates a responder backed by m.
func NewModelResponder(m model.Model, optFns ...func(o *Options)) *ModelResponder {
	opts := Options{
		AgentName:           "Ai PALS",
		Roster:              core.DefaultRoster.Clone(),
		Instruction:         DefaultInstruction,
		AdvocateInstruction: DefaultAdvocateInstruction,
		MaxHistoryLines:     20,
		Models:              map[string]model.Model{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelResponder{model: m, opts: opts}
}

// Respond asks the copilot's model for a reply to prompt given the transcript.
func (r *ModelResponder) Respond(ctx context.Context, copilotID, prompt string, history []string) (string, error) {
	m := r.modelFor(copilotID)
	if m == nil {
		return "", fmt.Errorf("no model configured for copilot %q", copilotID)
	}

	req, err := r.BuildRequest(copilotID, prompt, history)
	if err != nil {
		return "", err
	}

	text, _, err := model.Collect(ctx, m, req)
	if err != nil {
		return "", fmt.Errorf("copilot %s: %w", copilotID, err)
	}

	return strings.TrimSpace(text), nil
}

// BuildRequest renders the persona and context for one copilot step.
func (r *ModelResponder) BuildRequest(copilotID, prompt string, history []string) (model.Request, error) {
	instruction, err := r.persona(copilotID)
	if err != nil {
		return model.Request{}, err
	}

	if r.opts.MaxHistoryLines > 0 && len(history) > r.opts.MaxHistoryLines {
		history = history[len(history)-r.opts.MaxHistoryLines:]
	}

	var messages []model.Message
	if len(history) > 0 {
		messages = append(messages, model.Message{
			Role: model.RoleUser,
			Text: "Discussion so far:\n" + strings.Join(history, "\n"),
		})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Text: prompt})

	return model.Request{
		Instructions: instruction,
		Messages:     messages,
		Stream:       r.opts.Stream,
	}, nil
}

func (r *ModelResponder) persona(copilotID string) (string, error) {
	tmpl := r.opts.Instruction
	if copilotID == r.opts.DevilsAdvocate && r.opts.AdvocateInstruction != "" {
		tmpl = r.opts.AdvocateInstruction
	}

	peers := make([]string, 0, len(r.opts.Roster))
	for _, name := range r.opts.Roster {
		if name != copilotID {
			peers = append(peers, name)
		}
	}

	out, err := util.RenderTemplate(tmpl, map[string]any{
		"name":  copilotID,
		"peers": peers,
		"agent": r.opts.AgentName,
	})
	if err != nil {
		return "", fmt.Errorf("render persona for %s: %w", copilotID, err)
	}
	return out, nil
}

func (r *ModelResponder) modelFor(copilotID string) model.Model {
	if m, ok := r.opts.Models[copilotID]; ok && m != nil {
		return m
	}
	return r.model
}
