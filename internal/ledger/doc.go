// Package ledger provides the SQLite-backed escalation ledger.
//
// The ledger is the engine's only durable, shared mutable state. It records
// that a critical alert was observed (LogEscalations) and that a human
// suppressed a condition (Dismiss), and it exposes the suppression set
// consumers subtract from the live alert stream (DismissedKeys).
//
// # Dedup protocol
//
// For any (task_id, kind) pair at most one unresolved row exists. The
// guarantee is enforced in the store, not in application logic: a partial
// unique index on (task_id, kind) WHERE resolved = 0 combined with
// insert-or-ignore makes LogEscalations idempotent no matter how many
// evaluation cycles re-observe the same condition, and safe against a
// concurrent Dismiss on the same key.
//
// # Resolve lifecycle
//
// resolved flips from 0 to 1 exactly once. Dismiss updates only unresolved
// rows, so re-dismissing an already-resolved condition never rewrites
// resolved_at/resolved_by. Dismissing a condition that was never logged
// (high/medium alerts are not persisted) inserts a row that is born
// resolved, leaving a permanent suppress-record for the key.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// All times are stored as RFC 3339 text in UTC.
package ledger
