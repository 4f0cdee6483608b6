package deliberation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrResponseFailure matches every failed copilot response.
	ErrResponseFailure = errors.New("copilot response failed")

	// ErrResponseTimeout matches copilot responses that exceeded the step deadline.
	ErrResponseTimeout = errors.New("copilot response timed out")

	// ErrInvalidOptions is returned by New for invalid orchestrator options.
	ErrInvalidOptions = errors.New("invalid deliberation options")
)

// ResponseError describes a failed step. It is recorded on the Step and in
// the transcript, never returned from Run.
type ResponseError struct {
	Copilot string
	Timeout bool
	Err     error
}

func newResponseError(copilot string, err error, stepCtx context.Context) *ResponseError {
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(stepCtx.Err(), context.DeadlineExceeded)
	return &ResponseError{Copilot: copilot, Timeout: timeout, Err: err}
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	kind := ErrResponseFailure
	if e.Timeout {
		kind = ErrResponseTimeout
	}
	return fmt.Sprintf("%s: %s: %v", e.Copilot, kind, e.Err)
}

// Unwrap returns the responder error.
func (e *ResponseError) Unwrap() error { return e.Err }

// Is matches ErrResponseFailure for every failure and ErrResponseTimeout for timeouts.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrResponseFailure:
		return true
	case ErrResponseTimeout:
		return e.Timeout
	}
	return false
}
