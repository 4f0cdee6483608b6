// Package copilotmesh provides the primary agent façade over the deliberation
// engine. Most applications interact with this package by:
//  1. Creating an Agent via New() with a core.Responder (typically a
//     copilot.ModelResponder) and optional overrides
//  2. Feeding user input to ProcessInput, which answers directly or, in
//     planning mode, lets the copilots deliberate
//  3. Inspecting state through ContextDump, FullMessages and Plan
//
// The façade delegates deliberation to deliberation.Orchestrator and
// resolution planning to planning.Planner. History defaults to an in-memory
// store; pass a history.FileStore to keep transcripts on disk.
package copilotmesh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/copilotmesh/config"
	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/deliberation"
	"github.com/hupe1980/copilotmesh/history"
	"github.com/hupe1980/copilotmesh/internal/util"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/hupe1980/copilotmesh/logging"
	"github.com/hupe1980/copilotmesh/planning"
)

// SystemVersion is reported in context dumps.
const SystemVersion = "1.0"

// Rejection is the reply given when an agent rule rejects the input.
const Rejection = "I cannot process that request."

// DeliberationFailed is recorded as the reply when a deliberation aborts.
const DeliberationFailed = "I could not complete the deliberation."

// ErrInvalidInteractions is returned by SetInteractions for values below one.
var ErrInvalidInteractions = errors.New("interactions must be >= 1")

// RuleError reports the agent rule that rejected an input.
type RuleError struct {
	Rule string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("input rejected by rule %q", e.Rule)
}

// Options configures the Agent.
type Options struct {
	// Definition names the agent and carries the rules input is checked
	// against (defaults to config.DefaultDefinition).
	Definition *config.Definition
	// Roster of copilots (defaults to core.DefaultRoster).
	Roster core.Roster
	// PlanningMode starts the agent with deliberation enabled.
	PlanningMode bool
	// Interactions overrides the interaction steps per round; 0 keeps the
	// orchestrator default of one step per copilot.
	Interactions int
	// DeliberationOptions are applied to every orchestrator the agent builds.
	DeliberationOptions []func(o *deliberation.Options)
	// LedgerOptions configure scoring for deliberation and planning.
	LedgerOptions []func(o *ledger.Options)
	// History keeps the full message history (defaults to in-memory).
	History history.Store
	// ConversationID keys this agent's messages in History (defaults to a new ID).
	ConversationID string
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Agent is the primary agent. It owns its message history, settings and the
// standings of the last deliberation; nothing is shared between agents.
type Agent struct {
	responder core.Responder
	opts      Options
	name      string

	mu           sync.Mutex
	planningMode bool
	interactions int
	messages     []string
	standings    *ledger.Snapshot
}

// New creates an Agent answering through responder. Configuration errors
// (roster, scoring or deliberation options) surface here.
func New(responder core.Responder, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Roster: core.DefaultRoster.Clone(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Definition == nil {
		def, err := config.ParseDefinition(config.DefaultDefinition)
		if err != nil {
			return nil, err
		}
		opts.Definition = def
	}
	if opts.History == nil {
		opts.History = history.NewInMemoryStore()
	}
	if opts.ConversationID == "" {
		opts.ConversationID = util.NewID()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Interactions < 0 {
		return nil, ErrInvalidInteractions
	}

	a := &Agent{
		responder:    responder,
		opts:         opts,
		name:         opts.Definition.Name(),
		planningMode: opts.PlanningMode,
		interactions: opts.Interactions,
	}

	if _, err := a.orchestrator(opts.Interactions); err != nil {
		return nil, err
	}

	return a, nil
}

// FromConfig creates an Agent from a loaded configuration.
func FromConfig(cfg *config.Config, responder core.Responder, optFns ...func(o *Options)) (*Agent, error) {
	def, err := config.ParseDefinition(cfg.Agent.Definition)
	if err != nil {
		return nil, err
	}

	delibOpts, err := cfg.DeliberationOptions()
	if err != nil {
		return nil, err
	}

	return New(responder, append([]func(o *Options){func(o *Options) {
		o.Definition = def
		o.Roster = cfg.Roster()
		o.PlanningMode = cfg.Agent.PlanningMode
		o.Interactions = cfg.Deliberation.StepsPerRound
		o.DeliberationOptions = append(o.DeliberationOptions, delibOpts)
		o.LedgerOptions = append(o.LedgerOptions, cfg.LedgerOptions())
	}}, optFns...)...)
}

func (a *Agent) orchestrator(interactions int) (*deliberation.Orchestrator, error) {
	return deliberation.New(a.responder, a.opts.Roster, append(append([]func(o *deliberation.Options){}, a.opts.DeliberationOptions...), func(o *deliberation.Options) {
		o.LedgerOptions = append(append([]func(o *ledger.Options){}, a.opts.LedgerOptions...), o.LedgerOptions...)
		if interactions > 0 {
			o.StepsPerRound = interactions
		}
		o.Logger = a.opts.Logger
	})...)
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// ConversationID returns the key of this agent's messages in the history store.
func (a *Agent) ConversationID() string { return a.opts.ConversationID }

// EnablePlanningMode switches the agent to deliberating over every input.
func (a *Agent) EnablePlanningMode() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.planningMode = true
}

// PlanningMode reports whether deliberation is enabled.
func (a *Agent) PlanningMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.planningMode
}

// SetInteractions sets the interaction steps per deliberation round.
func (a *Agent) SetInteractions(n int) error {
	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidInteractions, n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interactions = n
	return nil
}

// Interactions returns the effective interaction steps per round.
func (a *Agent) Interactions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.interactions > 0 {
		return a.interactions
	}
	return len(a.opts.Roster)
}

// ProcessInput answers one user input. Inputs rejected by a rule return a
// *RuleError and are not recorded. Otherwise the input and the reply are
// appended to the message history: in planning mode the reply is the
// deliberation transcript, else a greeting echoing the input. An aborted
// deliberation records DeliberationFailed and returns the cause.
func (a *Agent) ProcessInput(ctx context.Context, input string) (string, error) {
	if rule := a.opts.Definition.Check(input); rule != nil {
		a.opts.Logger.Warn("input rejected", "rule", rule.Name)
		return Rejection, &RuleError{Rule: rule.Name}
	}

	if err := a.record(core.NewUserMessage(input)); err != nil {
		return "", err
	}

	a.mu.Lock()
	planningMode, interactions := a.planningMode, a.interactions
	a.mu.Unlock()

	var response string
	if planningMode {
		orch, err := a.orchestrator(interactions)
		if err != nil {
			return "", err
		}

		result, err := orch.Run(ctx, input)
		if result != nil {
			a.setStandings(result.Ledger)
		}
		if err != nil {
			if rerr := a.record(core.NewAgentMessage(DeliberationFailed)); rerr != nil {
				a.opts.Logger.Error("record failure reply", "error", rerr)
			}
			return "", fmt.Errorf("deliberation: %w", err)
		}
		response = result.String()
	} else {
		response = fmt.Sprintf("Hello, USER. I am the AGENT %s. You said: %s", a.name, input)
	}

	if err := a.record(core.NewAgentMessage(response)); err != nil {
		return "", err
	}

	return response, nil
}

// Plan runs resolution planning over a comma separated list of goals.
func (a *Agent) Plan(ctx context.Context, goals string) (*planning.Plan, error) {
	p, err := planning.New(a.opts.Roster, func(o *planning.Options) {
		o.LedgerOptions = a.opts.LedgerOptions
		o.Logger = a.opts.Logger
	})
	if err != nil {
		return nil, err
	}

	plan, err := p.Run(ctx, goals)
	if plan != nil {
		a.setStandings(plan.Ledger)
	}
	return plan, err
}

func (a *Agent) setStandings(s ledger.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.standings = &s
}

func (a *Agent) record(msg core.Message) error {
	a.mu.Lock()
	a.messages = append(a.messages, msg.String())
	a.mu.Unlock()

	if err := a.opts.History.Append(a.opts.ConversationID, msg); err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// Messages returns the message history of this agent's lifetime.
func (a *Agent) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

// FullMessages returns every stored message of the conversation, including
// messages persisted by earlier agents sharing the conversation ID.
func (a *Agent) FullMessages() ([]string, error) {
	msgs, err := a.opts.History.Messages(a.opts.ConversationID)
	if err != nil {
		return nil, err
	}
	return history.Lines(msgs), nil
}

// FullMessage returns the stored message at index i.
func (a *Agent) FullMessage(i int) (string, error) {
	msg, err := history.Get(a.opts.History, a.opts.ConversationID, i)
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// DumpFullMessages renders the full message history as indented JSON.
func (a *Agent) DumpFullMessages() ([]byte, error) {
	lines, err := a.FullMessages()
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []string{}
	}
	return json.MarshalIndent(lines, "", "    ")
}

// ContextDump is the exported agent state.
type ContextDump struct {
	GeneralContext GeneralContext `json:"general_context"`
	Copilots       []CopilotDump  `json:"copilots"`
	MessageHistory []string       `json:"message_history"`
}

// GeneralContext holds version, definition and settings.
type GeneralContext struct {
	SystemVersion   string   `json:"system_version"`
	AgentDefinition string   `json:"agent_definition"`
	Settings        Settings `json:"settings"`
}

// Settings are the agent's runtime settings.
type Settings struct {
	PlanningMode bool `json:"planning_mode"`
	Interactions int  `json:"interactions"`
}

// CopilotDump is a copilot and its weight in the last deliberation or plan.
type CopilotDump struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Context captures the current agent state.
func (a *Agent) Context() (*ContextDump, error) {
	def, err := a.opts.Definition.Marshal()
	if err != nil {
		return nil, err
	}

	interactions := a.Interactions()

	a.mu.Lock()
	defer a.mu.Unlock()

	var weights map[string]float64
	if a.standings != nil {
		weights = a.standings.Weights()
	}

	dump := &ContextDump{
		GeneralContext: GeneralContext{
			SystemVersion:   SystemVersion,
			AgentDefinition: def,
			Settings: Settings{
				PlanningMode: a.planningMode,
				Interactions: interactions,
			},
		},
		Copilots:       make([]CopilotDump, len(a.opts.Roster)),
		MessageHistory: append([]string{}, a.messages...),
	}

	for i, name := range a.opts.Roster {
		dump.Copilots[i] = CopilotDump{ID: i, Name: name, Weight: weights[name]}
	}

	return dump, nil
}

// ContextDump renders Context as indented JSON.
func (a *Agent) ContextDump() ([]byte, error) {
	c, err := a.Context()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(c, "", "    ")
}

// Help returns the command overview. Dump commands are listed once
// planning mode is enabled.
func (a *Agent) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Help:\n", a.name)
	b.WriteString("- `/enable_planning_mode` : Enables self-interaction planning mode.\n")
	b.WriteString("- `/set_interactions <n>` : Sets the interaction steps per round.\n")
	b.WriteString("- `/plan <goal, goal, ...>` : Assigns goals to copilots under the leader's guidance.\n")
	b.WriteString("- `/message <index>` : Shows a stored message.\n")
	b.WriteString("- `/help` : Displays this help.\n")
	b.WriteString("- `/quit` : Leaves the session.")

	if a.PlanningMode() {
		b.WriteString("\n- `/export_dump` : Exports the context as JSON.")
		b.WriteString("\n- `/dump_full_messages` : Dumps the full messages as JSON.")
	}

	return b.String()
}
