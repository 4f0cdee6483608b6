// Package model defines the provider-agnostic abstractions for the language
// models that produce copilot replies.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the copilot and deliberation layers remain decoupled from vendor SDKs.
package model
