// Package alert defines the shared domain types for the watchdesk engine.
//
// The package is a dependency leaf: every other internal package imports it,
// and it imports nothing but the standard library. It holds:
//
//   - Facts: Task and User snapshots read from the external system of record.
//     The engine never mutates facts; it only derives alerts from them.
//   - Alerts: transient, recomputed-every-cycle descriptions of currently-true
//     conditions. An alert has no identity across cycles beyond its
//     deterministic ID - it is a view, not a record.
//   - StoredEscalation: the durable ledger row written when a critical alert
//     is first observed, and the carrier of the resolve/dismiss lifecycle.
//
// The ledger is keyed by (subject, kind), where subject is the task ID for
// task-scoped alerts and the user ID for user-scoped ones. LedgerKey() is the
// single derivation point for that key; both the ledger and consumers filter
// against it.
package alert
