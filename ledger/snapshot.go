package ledger

import "github.com/hupe1980/copilotmesh/core"

// CopilotStanding is the ledger view of a single copilot.
type CopilotStanding struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Interactions int     `json:"interactions"`
	Advocate     bool    `json:"devils_advocate,omitempty"`
}

// Snapshot is an immutable, JSON friendly copy of the ledger state.
type Snapshot struct {
	Roster    core.Roster       `json:"roster"`
	Copilots  []CopilotStanding `json:"copilots"`
	Total     float64           `json:"total"`
	Mean      float64           `json:"mean"`
	Threshold float64           `json:"threshold"`
	Leader    string            `json:"leader"`
	Consensus bool              `json:"consensus"`
}

// Snapshot captures the current state in roster order.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Roster:    l.roster.Clone(),
		Copilots:  make([]CopilotStanding, 0, len(l.roster)),
		Total:     l.totalLocked(),
		Mean:      l.meanLocked(),
		Threshold: l.opts.Threshold,
	}

	for _, name := range l.roster {
		s.Copilots = append(s.Copilots, CopilotStanding{
			Name:         name,
			Weight:       l.weights[name],
			Interactions: l.interactions[name],
			Advocate:     name == l.opts.DevilsAdvocate,
		})
	}

	// Both only fail on an empty roster, which Reset and New rule out.
	s.Leader, _ = l.leaderLocked()
	s.Consensus, _ = l.consensusLocked()

	return s
}

// Weights returns the snapshot weights keyed by copilot.
func (s Snapshot) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.Copilots))
	for _, c := range s.Copilots {
		out[c.Name] = c.Weight
	}
	return out
}
