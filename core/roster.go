package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyRoster is returned when an operation requires at least one copilot.
	ErrEmptyRoster = errors.New("roster is empty")

	// ErrInvalidRoster is returned for rosters with blank or duplicate names.
	ErrInvalidRoster = errors.New("invalid roster")
)

// DefaultRoster lists the copilots used when no roster is configured.
var DefaultRoster = Roster{"Jane", "Sam", "Alex", "Mia", "Victor"}

// Roster is an ordered sequence of distinct copilot names. Order matters: it
// is used to break ties when appointing a leader and by round-robin selection.
type Roster []string

// Validate checks that the roster is non-empty and holds distinct, non-blank names.
func (r Roster) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]struct{}, len(r))
	for i, name := range r {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: blank name at position %d", ErrInvalidRoster, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidRoster, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Contains reports whether name is a member of the roster.
func (r Roster) Contains(name string) bool {
	return r.Index(name) >= 0
}

// Index returns the position of name in the roster or -1.
func (r Roster) Index(name string) int {
	for i, n := range r {
		if n == name {
			return i
		}
	}
	return -1
}

// Clone returns a copy that can be mutated without affecting r.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}
