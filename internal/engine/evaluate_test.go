package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/policy"
)

// Mid-morning instant, well clear of the end-of-day hours.
var morning = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(policy.Default(), time.UTC)
}

func taskDue(id string, deadline time.Time) alert.Task {
	return alert.Task{
		ID:       id,
		Title:    "Ship quarterly report",
		Status:   alert.StatusPending,
		Deadline: &deadline,
		UserID:   "user-1",
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{
		taskDue("task-1", morning.Add(-150*time.Minute)),
		taskDue("task-2", morning.Add(30*time.Minute)),
		{ID: "task-3", Title: "Daily standup notes", Status: alert.StatusPending, Date: "2026-03-14", UserID: "user-2"},
	}
	users := []alert.User{
		{ID: "user-1", Name: "Dana"},
		{ID: "user-2", Name: "Riley", Flag: alert.FlagRed},
	}

	first := e.Evaluate(tasks, users, morning)
	second := e.Evaluate(tasks, users, morning)
	assert.Equal(t, first, second, "identical inputs must yield identical output, ids and order included")
}

func TestEvaluate_OverdueCritical(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{taskDue("task-1", morning.Add(-150*time.Minute))}

	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "overdue-critical-task-1", a.ID)
	assert.Equal(t, alert.KindOverdue, a.Kind)
	assert.Equal(t, alert.SeverityCritical, a.Severity)
	assert.Equal(t, 2, a.HoursOverdue)
	assert.Equal(t, "task-1", a.TaskID)
	assert.Equal(t, morning, a.Timestamp)
}

func TestEvaluate_OverdueHigh(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{taskDue("task-1", morning.Add(-30*time.Minute))}

	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "overdue-high-task-1", a.ID)
	assert.Equal(t, alert.KindOverdue, a.Kind)
	assert.Equal(t, alert.SeverityHigh, a.Severity)
	assert.Equal(t, 0, a.HoursOverdue)
}

func TestEvaluate_OverdueBoundary(t *testing.T) {
	e := newTestEvaluator()

	// Exactly two hours overdue is still high, not critical.
	tasks := []alert.Task{taskDue("task-1", morning.Add(-2*time.Hour))}
	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 2, alerts[0].HoursOverdue)
}

func TestEvaluate_ApproachingMedium(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{taskDue("task-1", morning.Add(30*time.Minute))}

	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "approaching-deadline-task-1", a.ID)
	assert.Equal(t, alert.KindApproaching, a.Kind)
	assert.Equal(t, alert.SeverityMedium, a.Severity)
	assert.Contains(t, a.Description, "30 minutes")
}

func TestEvaluate_NoAlertBeyondWindow(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{taskDue("task-1", morning.Add(2*time.Hour))}

	alerts := e.Evaluate(tasks, nil, morning)
	assert.Empty(t, alerts)
}

func TestEvaluate_NoDeadlineNoDeadlineAlert(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{{ID: "task-1", Title: "Untimed chore", Status: alert.StatusPending}}

	alerts := e.Evaluate(tasks, nil, morning)
	assert.Empty(t, alerts, "missing deadline is not an error, the rule simply does not fire")
}

func TestEvaluate_EndOfDayRule(t *testing.T) {
	e := newTestEvaluator()
	task := alert.Task{ID: "task-1", Title: "Close out tickets", Status: alert.StatusPending, Date: "2026-03-14", UserID: "user-1"}

	tests := []struct {
		name     string
		hour     int
		wantKind alert.Kind
		wantSev  alert.Severity
		wantNone bool
	}{
		{name: "after critical hour", hour: 19, wantKind: alert.KindRedFlag, wantSev: alert.SeverityCritical},
		{name: "after warning hour", hour: 17, wantKind: alert.KindYellowFlag, wantSev: alert.SeverityMedium},
		{name: "mid morning", hour: 10, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 3, 14, tt.hour, 0, 0, 0, time.UTC)
			alerts := e.Evaluate([]alert.Task{task}, nil, now)

			if tt.wantNone {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantKind, alerts[0].Kind)
			assert.Equal(t, tt.wantSev, alerts[0].Severity)
		})
	}
}

func TestEvaluate_EndOfDayIgnoresOtherDays(t *testing.T) {
	e := newTestEvaluator()
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	task := alert.Task{ID: "task-1", Title: "Yesterday's task", Status: alert.StatusPending, Date: "2026-03-13"}

	alerts := e.Evaluate([]alert.Task{task}, nil, evening)
	assert.Empty(t, alerts)
}

func TestEvaluate_DeadlineAndEndOfDayBothFire(t *testing.T) {
	e := newTestEvaluator()
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	deadline := evening.Add(-3 * time.Hour)
	task := alert.Task{
		ID:       "task-1",
		Title:    "Submit invoices",
		Status:   alert.StatusPending,
		Deadline: &deadline,
		Date:     "2026-03-14",
	}

	alerts := e.Evaluate([]alert.Task{task}, nil, evening)
	require.Len(t, alerts, 2, "the deadline and end-of-day rules are independent")

	kinds := []alert.Kind{alerts[0].Kind, alerts[1].Kind}
	assert.Contains(t, kinds, alert.KindOverdue)
	assert.Contains(t, kinds, alert.KindRedFlag)
}

func TestEvaluate_CompletedExclusion(t *testing.T) {
	e := newTestEvaluator()
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	deadline := evening.Add(-5 * time.Hour)
	task := alert.Task{
		ID:       "task-1",
		Title:    "Done already",
		Status:   alert.StatusCompleted,
		Deadline: &deadline,
		Date:     "2026-03-14",
	}

	alerts := e.Evaluate([]alert.Task{task}, nil, evening)
	assert.Empty(t, alerts, "a completed task never produces any alert")
}

func TestEvaluate_PersistentRedFlag(t *testing.T) {
	e := newTestEvaluator()
	flagged := morning.Add(-time.Hour)
	users := []alert.User{{ID: "user-7", Name: "Riley", Flag: alert.FlagRed, FlagUpdatedAt: &flagged}}

	// Standing condition: present on every evaluation while the flag holds.
	for i := 0; i < 3; i++ {
		alerts := e.Evaluate(nil, users, morning)
		require.Len(t, alerts, 1)
		assert.Equal(t, "red-flag-user-7", alerts[0].ID)
		assert.Equal(t, alert.SeverityCritical, alerts[0].Severity)
		assert.Equal(t, flagged, alerts[0].Timestamp)
		assert.Empty(t, alerts[0].TaskID)
		assert.Equal(t, "user-7", alerts[0].UserID)
	}

	users[0].Flag = alert.FlagGreen
	assert.Empty(t, e.Evaluate(nil, users, morning))
}

func TestEvaluate_RedFlagWithoutUpdateTimeUsesNow(t *testing.T) {
	e := newTestEvaluator()
	users := []alert.User{{ID: "user-7", Name: "Riley", Flag: alert.FlagRed}}

	alerts := e.Evaluate(nil, users, morning)
	require.Len(t, alerts, 1)
	assert.Equal(t, morning, alerts[0].Timestamp)
}

func TestEvaluate_YellowFlagUserProducesNothing(t *testing.T) {
	e := newTestEvaluator()
	users := []alert.User{{ID: "user-7", Name: "Riley", Flag: alert.FlagYellow}}

	assert.Empty(t, e.Evaluate(nil, users, morning))
}

func TestEvaluate_DayStartFilterDropsStaleFlag(t *testing.T) {
	e := newTestEvaluator()
	yesterday := morning.Add(-24 * time.Hour)
	users := []alert.User{{ID: "user-7", Name: "Riley", Flag: alert.FlagRed, FlagUpdatedAt: &yesterday}}

	// A flag stamped before today's midnight is filtered: the engine only
	// surfaces same-day-or-later activity.
	assert.Empty(t, e.Evaluate(nil, users, morning))
}

func TestEvaluate_AssigneeNameInDescription(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{taskDue("task-1", morning.Add(-3*time.Hour))}
	users := []alert.User{{ID: "user-1", Name: "Dana"}}

	alerts := e.Evaluate(tasks, users, morning)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Description, "Dana")
	assert.Equal(t, "Dana", alerts[0].UserName)
}

func TestEvaluate_CustomPolicyThresholds(t *testing.T) {
	p := policy.Default()
	p.OverdueCriticalHours = 4
	e := NewEvaluator(p, time.UTC)

	// Three hours overdue is critical under the default policy but only
	// high under the relaxed one.
	tasks := []alert.Task{taskDue("task-1", morning.Add(-3*time.Hour))}
	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityHigh, alerts[0].Severity)
}

func TestEvaluate_OutputIsRanked(t *testing.T) {
	e := newTestEvaluator()
	tasks := []alert.Task{
		taskDue("task-medium", morning.Add(30*time.Minute)),
		taskDue("task-critical", morning.Add(-3*time.Hour)),
		taskDue("task-high", morning.Add(-30*time.Minute)),
	}

	alerts := e.Evaluate(tasks, nil, morning)
	require.Len(t, alerts, 3)
	assert.Equal(t, alert.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, alert.SeverityHigh, alerts[1].Severity)
	assert.Equal(t, alert.SeverityMedium, alerts[2].Severity)
}
