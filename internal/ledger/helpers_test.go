package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// openTestLedger opens a fresh ledger in a temp dir and closes it on cleanup.
func openTestLedger(t *testing.T) *Ledger {
	t.Helper()

	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// criticalAlert builds a critical overdue alert for the given task.
func criticalAlert(taskID string) alert.Alert {
	deadline := time.Now().Add(-3 * time.Hour)
	return alert.Alert{
		ID:           "overdue-critical-" + taskID,
		Kind:         alert.KindOverdue,
		Severity:     alert.SeverityCritical,
		Title:        "Task overdue",
		TaskID:       taskID,
		UserID:       "user-1",
		UserName:     "Dana",
		Timestamp:    time.Now(),
		Deadline:     &deadline,
		HoursOverdue: 3,
	}
}

// mediumAlert builds a medium approaching-deadline alert, which
// LogEscalations never persists.
func mediumAlert(taskID string) alert.Alert {
	deadline := time.Now().Add(30 * time.Minute)
	return alert.Alert{
		ID:        "approaching-deadline-" + taskID,
		Kind:      alert.KindApproaching,
		Severity:  alert.SeverityMedium,
		Title:     "Deadline approaching",
		TaskID:    taskID,
		UserID:    "user-1",
		Timestamp: time.Now(),
		Deadline:  &deadline,
	}
}
