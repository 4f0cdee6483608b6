package deliberation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/internal/util"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/hupe1980/copilotmesh/logging"
)

const (
	// DefaultRounds is the number of deliberation rounds per session.
	DefaultRounds = 5
	// DefaultStepTimeout bounds a single copilot response.
	DefaultStepTimeout = 30 * time.Second
	// DefaultGuidance is the leader's suggestion after another copilot speaks.
	DefaultGuidance = "I suggest considering the following point as well..."
	// RefinementPrompt prefixes the prompt of refinement steps.
	RefinementPrompt = "Refine the discussion so far and move toward consensus: "
)

// ActionableSteps close every completed transcript.
var ActionableSteps = []string{
	"1. Review the copilots' contributions above and pick the most refined solution.",
	"2. Address the concerns raised by the devil's advocate before acting.",
	"3. Assign an owner and a deadline to each agreed next step.",
}

// Options configures an Orchestrator.
type Options struct {
	// Rounds is the number of rounds per session (>= 1).
	Rounds int
	// StepsPerRound is the number of interaction steps per round; 0 means one
	// per copilot. Each round adds one refinement step on top.
	StepsPerRound int
	// Selector picks the copilot of each interaction step.
	Selector Selector
	// RefinementSelector picks the copilot of each refinement step; nil uses Selector.
	RefinementSelector Selector
	// Judge counts agreeing copilots for the agreement boost.
	Judge Judge
	// StepTimeout bounds each response; 0 disables the per-step deadline.
	StepTimeout time.Duration
	// Guidance is appended as the leader's suggestion whenever another
	// copilot speaks; empty disables guidance lines.
	Guidance string
	// LedgerOptions configure the scoring of the per-session ledger.
	LedgerOptions []func(o *ledger.Options)
	// Logger receives session diagnostics.
	Logger logging.Logger
}

// Orchestrator drives deliberation sessions over a fixed roster. It holds no
// per-session state, so one Orchestrator may run sessions concurrently.
type Orchestrator struct {
	responder core.Responder
	roster    core.Roster
	opts      Options
}

// New validates the configuration and creates an Orchestrator. Configuration
// errors (invalid roster, bounds or scoring options) surface here, before any
// session state exists.
func New(responder core.Responder, roster core.Roster, optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := Options{
		Rounds:      DefaultRounds,
		Selector:    RoundRobin{},
		Judge:       NewMarkerJudge(),
		StepTimeout: DefaultStepTimeout,
		Guidance:    DefaultGuidance,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if responder == nil {
		return nil, fmt.Errorf("%w: responder is required", ErrInvalidOptions)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	if opts.Rounds < 1 {
		return nil, fmt.Errorf("%w: rounds must be >= 1, got %d", ErrInvalidOptions, opts.Rounds)
	}
	if opts.StepsPerRound < 0 {
		return nil, fmt.Errorf("%w: steps per round must be >= 0, got %d", ErrInvalidOptions, opts.StepsPerRound)
	}
	if opts.StepsPerRound == 0 {
		opts.StepsPerRound = len(roster)
	}
	if opts.StepTimeout < 0 {
		return nil, fmt.Errorf("%w: step timeout must be >= 0, got %s", ErrInvalidOptions, opts.StepTimeout)
	}
	if opts.Selector == nil {
		opts.Selector = RoundRobin{}
	}
	if opts.RefinementSelector == nil {
		opts.RefinementSelector = opts.Selector
	}
	if opts.Judge == nil {
		opts.Judge = FixedJudge(0)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	// Dry run so scoring errors surface at construction time.
	if _, err := ledger.New(roster, opts.LedgerOptions...); err != nil {
		return nil, err
	}

	return &Orchestrator{responder: responder, roster: roster.Clone(), opts: opts}, nil
}

// Roster returns a copy of the orchestrator's roster.
func (o *Orchestrator) Roster() core.Roster { return o.roster.Clone() }

// Rounds returns the configured number of rounds.
func (o *Orchestrator) Rounds() int { return o.opts.Rounds }

// StepsPerRound returns the number of interaction steps per round.
func (o *Orchestrator) StepsPerRound() int { return o.opts.StepsPerRound }

// StepCeiling is the absolute number of steps a session may execute:
// rounds*stepsPerRound + rounds.
func (o *Orchestrator) StepCeiling() int {
	return o.opts.Rounds*o.opts.StepsPerRound + o.opts.Rounds
}

// Run executes one deliberation session for prompt. It returns when the
// ledger reports consensus or the step ceiling is reached. Cancellation of
// ctx is honored between steps; the partial result is returned with ctx.Err().
// An error from the ledger (a copilot outside the roster) aborts the session.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (*Result, error) {
	l, err := ledger.New(o.roster, o.opts.LedgerOptions...)
	if err != nil {
		return nil, err
	}

	s := &session{
		o:      o,
		ledger: l,
		prompt: prompt,
		latest: make(map[string]string, len(o.roster)),
		result: &Result{SessionID: util.NewID(), Prompt: prompt},
		start:  time.Now(),
	}
	s.logger = o.opts.Logger
	if cl, ok := o.opts.Logger.(*logging.CopilotLogger); ok {
		s.cl = cl.WithComponent("orchestrator").WithSession(s.result.SessionID)
		s.logger = s.cl
	}

	s.logger.Info("deliberation started", "session_id", s.result.SessionID, "roster", []string(o.roster), "rounds", o.opts.Rounds, "steps_per_round", o.opts.StepsPerRound)

	if err := s.run(ctx); err != nil {
		s.finish()
		s.logOutcome(err)
		return s.result, err
	}

	s.finish()
	s.appendSummary()
	s.logOutcome(nil)

	return s.result, nil
}

// session is the mutable state of one Run call.
type session struct {
	o      *Orchestrator
	ledger *ledger.Ledger
	logger logging.Logger
	cl     *logging.CopilotLogger
	prompt string
	leader string
	depth  int
	turn   int
	latest map[string]string
	result *Result
	start  time.Time
}

func (s *session) run(ctx context.Context) error {
	leader, err := s.ledger.AppointLeader()
	if err != nil {
		return err
	}
	s.appointLeader(leader)

	ceiling := s.o.StepCeiling()
	steps := s.o.opts.StepsPerRound

	for round := 0; round < s.o.opts.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		current, err := s.ledger.AppointLeader()
		if err != nil {
			return err
		}
		if current != s.leader {
			s.appointLeader(current)
		}

		for i := 0; i <= steps; i++ {
			if s.depth >= ceiling {
				s.result.Exhausted = true
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			consensus, err := s.step(ctx, round, i == steps)
			if err != nil {
				return err
			}
			if consensus {
				s.result.Consensus = true
				return nil
			}
		}
	}

	s.result.Exhausted = true
	return nil
}

func (s *session) appointLeader(name string) {
	s.leader = name
	s.result.Leader = name
	s.appendLine(fmt.Sprintf("%s has been appointed as the leader.", name))
}

// step runs one interaction (or refinement) and reports whether consensus
// has been reached afterwards.
func (s *session) step(ctx context.Context, round int, refinement bool) (bool, error) {
	var (
		id     string
		prompt = s.prompt
	)
	if refinement {
		id = s.o.opts.RefinementSelector.Next(s.o.roster, round)
		prompt = RefinementPrompt + s.prompt
	} else {
		id = s.o.opts.Selector.Next(s.o.roster, s.turn)
		s.turn++
	}

	st := Step{Round: round, Depth: s.depth, Copilot: id, Refinement: refinement}

	reply, err := s.respond(ctx, id, prompt)
	if err != nil {
		st.Err = err
		s.appendLine(fmt.Sprintf("%s did not respond", id))
	} else {
		st.Reply = reply
		st.Agreements = s.o.opts.Judge.Agreements(id, reply, s.others(id))

		delta, err := s.ledger.ReportInteraction(id, reply, s.depth, st.Agreements)
		if err != nil {
			return false, err
		}
		st.Delta = delta
		s.latest[id] = reply

		if refinement {
			s.appendLine(fmt.Sprintf("%s (refinement): %s", id, reply))
		} else {
			s.appendLine(fmt.Sprintf("%s: %s", id, reply))
		}
		if id != s.leader && s.o.opts.Guidance != "" {
			s.appendLine(fmt.Sprintf("%s: Suggestion - %s", s.leader, s.o.opts.Guidance))
		}
	}

	s.result.Steps = append(s.result.Steps, st)
	s.depth++

	s.logger.Debug("deliberation step", "round", round, "depth", st.Depth, "copilot", id, "delta", st.Delta, "agreements", st.Agreements, "refinement", refinement, "failed", st.Failed())

	return s.ledger.CheckConsensus()
}

// respond calls the responder under the step deadline. Failures are
// converted into *ResponseError and never propagate past the step.
func (s *session) respond(ctx context.Context, id, prompt string) (string, error) {
	stepCtx := ctx
	if s.o.opts.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, s.o.opts.StepTimeout)
		defer cancel()
	}

	history := make([]string, len(s.result.Transcript))
	copy(history, s.result.Transcript)

	began := time.Now()
	reply, err := s.o.responder.Respond(stepCtx, id, prompt, history)
	if err == nil && stepCtx.Err() != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		// Replies arriving after the deadline count as timeouts.
		err = stepCtx.Err()
	}
	if err != nil {
		rerr := newResponseError(id, err, stepCtx)
		s.logResponse(id, time.Since(began), rerr)
		return "", rerr
	}

	s.logResponse(id, time.Since(began), nil)
	return reply, nil
}

func (s *session) logResponse(id string, dur time.Duration, err error) {
	if s.cl != nil {
		s.cl.LogResponse(id, dur, err == nil, err)
		return
	}
	if err != nil {
		s.logger.Warn("copilot did not respond", "copilot", id, "duration", dur, "error", err)
	}
}

func (s *session) logOutcome(err error) {
	steps := len(s.result.Steps)
	if s.cl != nil {
		s.cl.LogDeliberation(steps, s.result.Consensus, s.result.Duration, err)
		return
	}
	if err != nil {
		s.logger.Error("deliberation failed", "session_id", s.result.SessionID, "step_count", steps, "error", err)
		return
	}
	s.logger.Info("deliberation completed", "session_id", s.result.SessionID, "step_count", steps, "consensus", s.result.Consensus, "duration", s.result.Duration)
}

func (s *session) others(id string) map[string]string {
	out := make(map[string]string, len(s.latest))
	for name, reply := range s.latest {
		if name != id {
			out[name] = reply
		}
	}
	return out
}

func (s *session) appendLine(line string) {
	s.result.Transcript = append(s.result.Transcript, line)
}

func (s *session) finish() {
	s.result.Ledger = s.ledger.Snapshot()
	s.result.Duration = time.Since(s.start)
}

func (s *session) appendSummary() {
	outcome := "consensus reached"
	if !s.result.Consensus {
		outcome = "no consensus reached"
	}
	s.appendLine(fmt.Sprintf("Deliberation complete after %d interactions (%s).", len(s.result.Steps), outcome))
	s.appendLine("Actionable steps:")
	for _, line := range ActionableSteps {
		s.appendLine(line)
	}
}
