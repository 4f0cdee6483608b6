// Package testutil contains deterministic responders and helpers used across
// tests to drive deliberations without a language model. They are not
// intended for production usage.
package testutil
