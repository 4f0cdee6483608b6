// Package history provides conversation history stores for the primary
// agent. Messages are kept per conversation in chronological order and can
// be rendered as "USER: ..." / "AGENT: ..." lines.
//
// Two implementations are provided:
//
//   - InMemoryStore: volatile, process local, safe for concurrent use
//   - FileStore: one JSON array of lines per conversation on disk; every
//     write replaces the file atomically (last write wins)
package history
