// Package deliberation drives multi-copilot deliberation sessions.
//
// An Orchestrator runs a fixed number of rounds. Each round consists of one
// interaction step per configured slot followed by a refinement step in
// which a single copilot re-responds to the accumulated transcript. Every
// step selects a copilot (see Selector), asks the core.Responder for a reply
// under a per-step deadline, judges how many peers agree (see Judge) and
// reports the interaction to a session private ledger.Ledger. The session
// ends as soon as the ledger reports consensus, or after
// rounds*stepsPerRound + rounds steps.
//
// Failed or timed out responses never abort a session: the transcript gets a
// "<copilot> did not respond" line and the step contributes no weight.
package deliberation
