// Package logging provides a minimal logging interface and adapters for copilotmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the orchestrator, planner and façade use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - CopilotLogger with session/component context and deliberation helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	orch, err := deliberation.New(responder, roster, func(o *deliberation.Options) {
//		o.Logger = logger
//	})
package logging
