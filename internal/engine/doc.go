// Package engine implements the watchdesk alert engine.
//
// The engine derives time-sensitive alerts from a live set of tasks and
// users and reconciles the critical ones against the durable escalation
// ledger.
//
// ARCHITECTURE:
//
// Pure core, impure shell:
// The Evaluator is a pure function of (tasks, users, now). It performs no
// I/O, reads no ambient clock, and never touches the ledger. Calling it
// twice with identical inputs yields identical output, which is what makes
// the rule set directly unit-testable.
//
// Evaluation loop:
// The Watcher owns the single long-lived loop. It is woken by either a fact
// snapshot from the source subscription or a fixed-interval tick; both
// triggers share one code path, so purely time-driven transitions (crossing
// the overdue threshold, passing 18:00) are caught even when no data
// changes. Each wake recomputes the full alert set from the latest
// snapshots, ranks it, and hands the critical alerts to the ledger.
//
// Ledger writes are best-effort: a failed write is logged and retried
// implicitly on the next cycle, because the ledger's insert is keyed and
// idempotent. A ledger outage degrades dismissal durability, never alert
// correctness.
//
// Dismissal is a consumer concern. The Evaluator deliberately does not
// subtract dismissed keys from its output; consumers join the ranked alert
// set against Ledger.DismissedKeys before display.
package engine
