package deliberation

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/copilotmesh/core"
)

// Selector picks the copilot that speaks at a given step.
// Implementations must return a roster member and be deterministic for a
// given construction so sessions can be replayed in tests.
type Selector interface {
	Next(roster core.Roster, step int) string
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(roster core.Roster, step int) string

// Next calls f(roster, step).
func (f SelectorFunc) Next(roster core.Roster, step int) string { return f(roster, step) }

// RoundRobin cycles through the roster in order: roster[step % len(roster)].
type RoundRobin struct{}

// Next implements Selector.
func (RoundRobin) Next(roster core.Roster, step int) string {
	if step < 0 {
		step = -step
	}
	return roster[step%len(roster)]
}

// Random selects uniformly at random from an explicitly seeded source.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a uniform random selector. Equal seeds yield equal sequences.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // selection, not security
}

// Next implements Selector; the step index is ignored.
func (r *Random) Next(roster core.Roster, _ int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return roster[r.rng.Intn(len(roster))]
}
