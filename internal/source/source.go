// Package source defines the fact-source contract: the subscription
// interface through which the engine observes the external system of record
// for tasks and users.
//
// The engine never mutates facts. Each subscription delivers full snapshots
// (not deltas); the consumer replaces its previous snapshot wholesale, so a
// stale or replayed snapshot is harmless. Teardown is driven entirely by the
// subscription context.
package source

import (
	"context"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// Source supplies live task and user snapshots.
//
// Implementations must honor context cancellation: once ctx is done, no
// further sends occur and the channels are closed (or left to be garbage
// collected for buffered one-shot sources).
type Source interface {
	SubscribeTasks(ctx context.Context) (<-chan []alert.Task, error)
	SubscribeUsers(ctx context.Context) (<-chan []alert.User, error)
}

// Static is an in-memory Source that emits its fixed snapshots exactly once
// per subscription and then stays silent. Used by tests and one-shot
// commands, where time-driven re-evaluation is the only trigger that
// matters.
type Static struct {
	Tasks []alert.Task
	Users []alert.User
}

// SubscribeTasks returns a buffered channel pre-loaded with the task
// snapshot. The channel is never closed.
func (s *Static) SubscribeTasks(ctx context.Context) (<-chan []alert.Task, error) {
	ch := make(chan []alert.Task, 1)
	ch <- s.Tasks
	return ch, nil
}

// SubscribeUsers returns a buffered channel pre-loaded with the user
// snapshot. The channel is never closed.
func (s *Static) SubscribeUsers(ctx context.Context) (<-chan []alert.User, error) {
	ch := make(chan []alert.User, 1)
	ch <- s.Users
	return ch, nil
}
