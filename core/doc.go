// Package core provides the foundational domain types and interfaces shared by
// the copilotmesh packages. It defines:
//
//   - Roster (the ordered set of copilots taking part in a deliberation)
//   - Responder (the opaque capability producing a copilot's reply)
//   - Message (role-tagged history entries exchanged with the user)
//
// The package intentionally keeps scoring, orchestration and persistence out
// of scope so the ledger, deliberation and history packages can depend on it
// without cycles.
package core
