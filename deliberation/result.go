package deliberation

import (
	"strings"
	"time"

	"github.com/hupe1980/copilotmesh/ledger"
)

// Step records one interaction or refinement step.
type Step struct {
	Round      int     `json:"round"`
	Depth      int     `json:"depth"`
	Copilot    string  `json:"copilot"`
	Reply      string  `json:"reply,omitempty"`
	Delta      float64 `json:"delta"`
	Agreements int     `json:"agreements"`
	Refinement bool    `json:"refinement,omitempty"`
	Err        error   `json:"-"`
}

// Failed reports whether the copilot did not respond.
func (s Step) Failed() bool { return s.Err != nil }

// Result is the outcome of one deliberation session.
type Result struct {
	SessionID  string          `json:"session_id"`
	Prompt     string          `json:"prompt"`
	Transcript []string        `json:"transcript"`
	Steps      []Step          `json:"steps"`
	Consensus  bool            `json:"consensus"`
	Exhausted  bool            `json:"exhausted"`
	Leader     string          `json:"leader"`
	Ledger     ledger.Snapshot `json:"ledger"`
	Duration   time.Duration   `json:"duration"`
}

// Interactions returns the number of executed steps, failed ones included.
func (r *Result) Interactions() int { return len(r.Steps) }

// Failures returns the number of steps whose copilot did not respond.
func (r *Result) Failures() int {
	n := 0
	for _, s := range r.Steps {
		if s.Failed() {
			n++
		}
	}
	return n
}

// String joins the transcript lines with newlines.
func (r *Result) String() string { return strings.Join(r.Transcript, "\n") }
