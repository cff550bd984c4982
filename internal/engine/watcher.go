package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/metrics"
	"github.com/opsdeck/watchdesk/internal/source"
)

// DefaultInterval is the timer-driven re-evaluation interval. The timer
// exists to catch purely time-driven transitions (crossing the overdue
// threshold, passing the end-of-day hour) even when no fact changes.
const DefaultInterval = 60 * time.Second

// Ledger is the subset of the escalation ledger the watcher writes to.
// Implemented by *ledger.Ledger.
type Ledger interface {
	LogEscalations(ctx context.Context, alerts []alert.Alert) error
}

// Watcher owns the long-lived evaluation loop.
//
// The loop is woken by fact snapshots from the source subscription or by the
// interval timer; both wake paths run the same cycle: recompute the full
// alert set from the latest snapshots, rank it, publish it via Current, and
// hand the critical alerts to the ledger.
//
// Recomputation is single-threaded - the evaluator is a pure, cheap scan and
// gains nothing from parallelism. Ledger writes triggered here may race with
// a dismiss arriving on a request path; the ledger's keyed operations make
// that race safe.
type Watcher struct {
	source   source.Source
	eval     *Evaluator
	ledger   Ledger
	clock    Clock
	interval time.Duration
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	tasks   []alert.Task
	users   []alert.User
	current []alert.Alert
	cycles  int64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLedger attaches an escalation ledger. Without one the watcher only
// computes alerts.
func WithLedger(l Ledger) WatcherOption {
	return func(w *Watcher) { w.ledger = l }
}

// WithClock overrides the wall clock. Tests use this to pin "now".
func WithClock(c Clock) WatcherOption {
	return func(w *Watcher) { w.clock = c }
}

// WithInterval overrides the timer-driven re-evaluation interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) WatcherOption {
	return func(w *Watcher) { w.metrics = m }
}

// NewWatcher creates a Watcher over the given source and evaluator.
func NewWatcher(src source.Source, eval *Evaluator, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:   src,
		eval:     eval,
		clock:    SystemClock{},
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run subscribes to the fact source and blocks in the evaluation loop until
// ctx is cancelled. The subscription teardown is the only lifecycle
// boundary; Run returns ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	tasksCh, err := w.source.SubscribeTasks(ctx)
	if err != nil {
		return err
	}
	usersCh, err := w.source.SubscribeUsers(ctx)
	if err != nil {
		return err
	}

	slog.Info("watcher starting", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopping: context cancelled")
			return ctx.Err()

		case tasks, ok := <-tasksCh:
			if !ok {
				tasksCh = nil
				continue
			}
			w.mu.Lock()
			w.tasks = tasks
			w.mu.Unlock()
			w.Cycle(ctx)

		case users, ok := <-usersCh:
			if !ok {
				usersCh = nil
				continue
			}
			w.mu.Lock()
			w.users = users
			w.mu.Unlock()
			w.Cycle(ctx)

		case <-ticker.C:
			w.Cycle(ctx)
		}
	}
}

// Cycle runs one evaluation cycle against the latest snapshots. Called from
// the Run loop on every wake; exported so one-shot callers and tests can
// drive evaluation without a subscription.
func (w *Watcher) Cycle(ctx context.Context) {
	w.mu.RLock()
	tasks, users := w.tasks, w.users
	w.mu.RUnlock()

	now := w.clock.Now()
	alerts := w.eval.Evaluate(tasks, users, now)
	sum := alert.Summarize(alerts)

	w.mu.Lock()
	w.current = alerts
	w.cycles++
	w.mu.Unlock()

	slog.Debug("evaluation cycle complete",
		"total", sum.Total,
		"critical", sum.Critical,
		"high", sum.High,
		"medium", sum.Medium,
	)

	if w.metrics != nil {
		w.metrics.ObserveCycle(sum)
	}

	if w.ledger == nil {
		return
	}
	// Best-effort: a failed write never blocks evaluation. The ledger insert
	// is keyed and idempotent, so the next cycle re-attempts the same dedup
	// check.
	if err := w.ledger.LogEscalations(ctx, alerts); err != nil {
		slog.Warn("escalation log failed, next cycle retries", "error", err)
		if w.metrics != nil {
			w.metrics.LedgerWriteFailures.Inc()
		}
	}
}

// Current returns a copy of the most recently computed ranked alert set.
// Safe to call concurrently with Run.
func (w *Watcher) Current() []alert.Alert {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]alert.Alert, len(w.current))
	copy(out, w.current)
	return out
}

// Cycles returns the number of completed evaluation cycles.
// Useful for monitoring and testing.
func (w *Watcher) Cycles() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cycles
}
