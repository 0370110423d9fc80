// Package store is the SQLite-backed diagnostic journal.
//
// The journal is an append-only audit trail of what the core did:
//   - Invocations: every gated aspect invocation and its outcome
//   - Law checks: every empirical category-law verification
//   - Lineages: every concept definition
//
// It is not a persistence layer. Nothing in the journal is ever read back
// into the resolver cache, the registry or the lattice; it exists so that
// traces can be inspected and compared.
//
// # Patterns
//
// Logical time: every entry is stamped with seq from a monotonic Clock.
// Ordering uses seq, never wall time.
//
// Deterministic reads: queries order by seq ASC, id ASC COLLATE BINARY.
//
// Content-addressed ids: entry ids are SHA-256 over the entry's identifying
// fields with domain separation, so the same entry written twice is stored
// once (ON CONFLICT(id) DO NOTHING).
//
// Spans: invocations are grouped by span, taken from the @span annotation
// or generated as a time-sortable UUIDv7.
package store
