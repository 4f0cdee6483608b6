package ledger

import (
	"errors"
	"fmt"

	"github.com/hupe1980/copilotmesh/core"
)

var (
	// ErrUnknownCopilot is returned when an operation names a copilot that
	// is not part of the current roster.
	ErrUnknownCopilot = errors.New("unknown copilot")

	// ErrEmptyRoster is returned when the ledger has no copilots.
	ErrEmptyRoster = core.ErrEmptyRoster

	// ErrInvalidConfig is returned by New for invalid scoring options.
	ErrInvalidConfig = errors.New("invalid ledger configuration")
)

// UnknownCopilotError reports the identifier that was not found in the roster.
type UnknownCopilotError struct {
	ID string
}

// Error implements the error interface.
func (e *UnknownCopilotError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownCopilot, e.ID)
}

// Is makes errors.Is(err, ErrUnknownCopilot) succeed.
func (e *UnknownCopilotError) Is(target error) bool { return target == ErrUnknownCopilot }
