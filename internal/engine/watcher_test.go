package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/policy"
	"github.com/opsdeck/watchdesk/internal/source"
	"github.com/opsdeck/watchdesk/internal/testutil"
)

// recordingLedger captures LogEscalations calls; optionally fails them all.
type recordingLedger struct {
	mu    sync.Mutex
	calls int
	last  []alert.Alert
	err   error
}

func (r *recordingLedger) LogEscalations(ctx context.Context, alerts []alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = alerts
	return r.err
}

func (r *recordingLedger) snapshot() (int, []alert.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last
}

func overdueFixture() (*source.Static, *testutil.FixedClock) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(-3 * time.Hour)
	src := &source.Static{
		Tasks: []alert.Task{{
			ID:       "task-1",
			Title:    "Ship quarterly report",
			Status:   alert.StatusPending,
			Deadline: &deadline,
			UserID:   "user-1",
		}},
		Users: []alert.User{{ID: "user-1", Name: "Dana"}},
	}
	return src, testutil.NewFixedClock(now)
}

func TestWatcher_ComputesAlertsOnSnapshot(t *testing.T) {
	src, clock := overdueFixture()
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC), WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.Current()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	alerts := w.Current()
	require.Len(t, alerts, 1)
	assert.Equal(t, "overdue-critical-task-1", alerts[0].ID)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_LogsCriticalsToLedger(t *testing.T) {
	src, clock := overdueFixture()
	led := &recordingLedger{}
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC),
		WithClock(clock),
		WithLedger(led),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		calls, _ := led.snapshot()
		return calls > 0
	}, 2*time.Second, 5*time.Millisecond)

	_, last := led.snapshot()
	require.Len(t, last, 1)
	assert.Equal(t, alert.SeverityCritical, last[0].Severity)
}

func TestWatcher_LedgerFailureDoesNotStopLoop(t *testing.T) {
	src, clock := overdueFixture()
	led := &recordingLedger{err: errors.New("store unavailable")}
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC),
		WithClock(clock),
		WithLedger(led),
		WithInterval(10*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Several cycles complete despite every ledger write failing, and
	// alerts keep being computed correctly.
	require.Eventually(t, func() bool {
		return w.Cycles() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.NotEmpty(t, w.Current())
}

func TestWatcher_TickerDrivesTimeTransitions(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(30 * time.Minute)
	src := &source.Static{
		Tasks: []alert.Task{{ID: "task-1", Title: "File expense report", Status: alert.StatusPending, Deadline: &deadline}},
	}
	clock := testutil.NewFixedClock(now)
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC),
		WithClock(clock),
		WithInterval(10*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// At first the task is merely approaching its deadline.
	require.Eventually(t, func() bool {
		alerts := w.Current()
		return len(alerts) == 1 && alerts[0].Severity == alert.SeverityMedium
	}, 2*time.Second, 5*time.Millisecond)

	// No fact changes, only time passing: the ticker must pick up the
	// transition to overdue.
	clock.Advance(4 * time.Hour)

	require.Eventually(t, func() bool {
		alerts := w.Current()
		return len(alerts) == 1 && alerts[0].Severity == alert.SeverityCritical
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWatcher_CurrentReturnsCopy(t *testing.T) {
	src, clock := overdueFixture()
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC), WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.Current()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	first := w.Current()
	first[0].ID = "mutated"
	assert.NotEqual(t, "mutated", w.Current()[0].ID)
}

func TestWatcher_NoLedgerIsFine(t *testing.T) {
	src, clock := overdueFixture()
	w := NewWatcher(src, NewEvaluator(policy.Default(), time.UTC),
		WithClock(clock),
		WithInterval(10*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return w.Cycles() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}
