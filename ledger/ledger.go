package ledger

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/hupe1980/copilotmesh/core"
)

// Ledger owns the accumulated interaction weight of every copilot in a roster.
type Ledger struct {
	mu           sync.RWMutex
	opts         Options
	roster       core.Roster
	weights      map[string]float64
	interactions map[string]int
}

// New creates a Ledger for roster with every weight at zero. Invalid options
// or an invalid roster are reported before any state is created.
func New(roster core.Roster, optFns ...func(o *Options)) (*Ledger, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Keywords = append([]string(nil), opts.Keywords...)
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if err := roster.Validate(); err != nil {
		return nil, err
	}

	if opts.DevilsAdvocate != "" && !roster.Contains(opts.DevilsAdvocate) {
		return nil, fmt.Errorf("%w: devil's advocate %q is not in the roster", ErrInvalidConfig, opts.DevilsAdvocate)
	}

	l := &Ledger{opts: opts}
	l.resetLocked(roster)

	return l, nil
}

// Reset re-initializes the ledger for roster: every copilot starts at weight
// zero. It must be called once per fresh session. The configured devil's
// advocate is kept; its damping applies only while it is a roster member.
func (l *Ledger) Reset(roster core.Roster) error {
	if err := roster.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetLocked(roster)

	return nil
}

func (l *Ledger) resetLocked(roster core.Roster) {
	l.roster = roster.Clone()
	l.weights = make(map[string]float64, len(roster))
	l.interactions = make(map[string]int, len(roster))
	for _, name := range roster {
		l.weights[name] = 0
	}
}

// Score computes the weight contribution of a reply without recording it.
// Negative depth and agreement counts are treated as zero.
func (l *Ledger) Score(copilotID, reply string, depth, agreementCount int) (float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.weights[copilotID]; !ok {
		return 0, &UnknownCopilotError{ID: copilotID}
	}

	return l.scoreLocked(copilotID, reply, depth, agreementCount), nil
}

func (l *Ledger) scoreLocked(copilotID, reply string, depth, agreementCount int) float64 {
	if depth < 0 {
		depth = 0
	}
	if agreementCount < 0 {
		agreementCount = 0
	}

	w := l.opts.BaseWeight
	for _, kw := range l.opts.Keywords {
		if strings.Contains(reply, kw) {
			w += l.opts.KeywordBonus
		}
	}

	w += l.opts.AgreementBoost * float64(agreementCount)
	w *= math.Pow(l.opts.DepthMultiplier, float64(depth))

	if copilotID == l.opts.DevilsAdvocate {
		w *= l.opts.DevilsAdvocateFactor
	}

	return w
}

// ReportInteraction scores a reply and adds the result to the copilot's
// running total. It returns the added delta.
func (l *Ledger) ReportInteraction(copilotID, reply string, depth, agreementCount int) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.weights[copilotID]; !ok {
		return 0, &UnknownCopilotError{ID: copilotID}
	}

	delta := l.scoreLocked(copilotID, reply, depth, agreementCount)
	l.weights[copilotID] += delta
	l.interactions[copilotID]++

	return delta, nil
}

// AppointLeader returns the copilot with the lowest accumulated weight.
// Ties go to the copilot listed first in the roster.
func (l *Ledger) AppointLeader() (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.leaderLocked()
}

func (l *Ledger) leaderLocked() (string, error) {
	if len(l.roster) == 0 {
		return "", ErrEmptyRoster
	}

	leader := l.roster[0]
	for _, name := range l.roster[1:] {
		if l.weights[name] < l.weights[leader] {
			leader = name
		}
	}

	return leader, nil
}

// CheckConsensus reports whether the mean weight over the full roster has
// reached the threshold. Equality counts as consensus.
func (l *Ledger) CheckConsensus() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.consensusLocked()
}

func (l *Ledger) consensusLocked() (bool, error) {
	if len(l.roster) == 0 {
		return false, ErrEmptyRoster
	}
	return l.meanLocked() >= l.opts.Threshold, nil
}

// Weight returns the accumulated weight of one copilot.
func (l *Ledger) Weight(copilotID string) (float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	w, ok := l.weights[copilotID]
	if !ok {
		return 0, &UnknownCopilotError{ID: copilotID}
	}
	return w, nil
}

// Weights returns a copy of all accumulated weights keyed by copilot.
func (l *Ledger) Weights() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]float64, len(l.weights))
	for k, v := range l.weights {
		out[k] = v
	}
	return out
}

// Total returns the sum of all weights.
func (l *Ledger) Total() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.totalLocked()
}

func (l *Ledger) totalLocked() float64 {
	var sum float64
	for _, name := range l.roster {
		sum += l.weights[name]
	}
	return sum
}

// Mean returns the average weight over the full roster.
func (l *Ledger) Mean() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.meanLocked()
}

func (l *Ledger) meanLocked() float64 {
	if len(l.roster) == 0 {
		return 0
	}
	return l.totalLocked() / float64(len(l.roster))
}

// Interactions returns the number of recorded interactions across the roster.
func (l *Ledger) Interactions() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var n int
	for _, c := range l.interactions {
		n += c
	}
	return n
}

// Roster returns a copy of the current roster.
func (l *Ledger) Roster() core.Roster {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.roster.Clone()
}

// Threshold returns the configured consensus threshold.
func (l *Ledger) Threshold() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.opts.Threshold
}

// DevilsAdvocate returns the damped copilot, or "" when the role is unset or
// its holder is not in the current roster.
func (l *Ledger) DevilsAdvocate() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.roster.Contains(l.opts.DevilsAdvocate) {
		return ""
	}
	return l.opts.DevilsAdvocate
}
