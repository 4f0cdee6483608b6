// Package planning implements goal-oriented resolution planning: a comma
// separated request is split into goals, the goals are assigned to copilots
// round-robin and walked in order under the guidance of the appointed leader
// until every goal is assigned or the ledger reports consensus.
package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/hupe1980/copilotmesh/logging"
)

// ErrNoGoals is returned when the input contains no goals.
var ErrNoGoals = errors.New("no goals to plan")

// Assignment binds a goal to the copilot working on it.
type Assignment struct {
	Goal    string `json:"goal"`
	Copilot string `json:"copilot"`
}

// Plan is the outcome of a planning run.
type Plan struct {
	Leader      string          `json:"leader"`
	Goals       []string        `json:"goals"`
	Assignments []Assignment    `json:"assignments"`
	Transcript  []string        `json:"transcript"`
	Consensus   bool            `json:"consensus"`
	Ledger      ledger.Snapshot `json:"ledger"`
}

// String joins the transcript lines with newlines.
func (p *Plan) String() string { return strings.Join(p.Transcript, "\n") }

// SplitGoals splits input on commas, trimming whitespace and dropping blanks.
func SplitGoals(input string) []string {
	var goals []string
	for _, g := range strings.Split(input, ",") {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	return goals
}

// AssignTasks assigns goal i to roster[i % len(roster)].
func AssignTasks(goals []string, roster core.Roster) []Assignment {
	if len(roster) == 0 {
		return nil
	}
	out := make([]Assignment, len(goals))
	for i, g := range goals {
		out[i] = Assignment{Goal: g, Copilot: roster[i%len(roster)]}
	}
	return out
}

// Options configures a Planner.
type Options struct {
	// LedgerOptions configure the scoring of the per-run ledger.
	LedgerOptions []func(o *ledger.Options)
	// Logger receives planning diagnostics.
	Logger logging.Logger
}

// Planner runs resolution planning over a fixed roster.
type Planner struct {
	roster core.Roster
	opts   Options
}

// New validates the roster and ledger options and creates a Planner.
func New(roster core.Roster, optFns ...func(o *Options)) (*Planner, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if _, err := ledger.New(roster, opts.LedgerOptions...); err != nil {
		return nil, err
	}

	return &Planner{roster: roster.Clone(), opts: opts}, nil
}

// Run plans input. Every assignment is reported to a fresh ledger at an
// increasing depth; the walk stops early once the ledger reports consensus.
func (p *Planner) Run(ctx context.Context, input string) (*Plan, error) {
	goals := SplitGoals(input)
	if len(goals) == 0 {
		return nil, ErrNoGoals
	}

	l, err := ledger.New(p.roster, p.opts.LedgerOptions...)
	if err != nil {
		return nil, err
	}

	leader, err := l.AppointLeader()
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Leader:      leader,
		Goals:       goals,
		Assignments: AssignTasks(goals, p.roster),
	}
	plan.Transcript = append(plan.Transcript,
		fmt.Sprintf("%s has been appointed as the leader.", leader),
		fmt.Sprintf("Goals set for planning: %s", strings.Join(goals, ", ")),
	)

	for depth, a := range plan.Assignments {
		if err := ctx.Err(); err != nil {
			plan.Ledger = l.Snapshot()
			return plan, err
		}

		plan.Transcript = append(plan.Transcript, fmt.Sprintf("%s will work on %s.", a.Copilot, a.Goal))

		if _, err := l.ReportInteraction(a.Copilot, a.Goal, depth, 0); err != nil {
			return nil, err
		}

		if a.Copilot != leader {
			plan.Transcript = append(plan.Transcript,
				fmt.Sprintf("Leader %s suggests: Ensure to follow all the guidelines while working on %s.", leader, a.Goal))
		}

		ok, err := l.CheckConsensus()
		if err != nil {
			return nil, err
		}
		if ok {
			plan.Consensus = true
			break
		}
	}

	plan.Ledger = l.Snapshot()
	p.opts.Logger.Info("planning completed", "goals", len(goals), "leader", leader, "consensus", plan.Consensus)

	return plan, nil
}
