// Package util holds small internal helpers shared across copilotmesh
// packages. It lives in internal to avoid committing to public API stability.
package util

import "github.com/google/uuid"

// NewID returns a new random UUID string used for sessions and messages.
func NewID() string { return uuid.NewString() }
