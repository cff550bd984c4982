package alert

import "time"

// Kind categorizes the condition an alert describes.
type Kind string

const (
	// KindOverdue fires when a task's deadline has passed.
	KindOverdue Kind = "overdue"
	// KindApproaching fires inside the final hour before a deadline.
	KindApproaching Kind = "approaching-deadline"
	// KindRedFlag fires for end-of-day violations and standing red
	// performance flags.
	KindRedFlag Kind = "red-flag"
	// KindYellowFlag fires for late-afternoon pending-task warnings.
	KindYellowFlag Kind = "yellow-flag"
)

// Severity ranks an alert's urgency. It drives both the ledger-persistence
// decision (only critical alerts are logged) and display order.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Rank returns the sort rank for a severity: critical=0, high=1, medium=2.
// Unknown severities rank last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Alert is a transient description of a condition that holds at one instant.
//
// Alerts are recomputed from scratch on every evaluation cycle and are never
// persisted directly. The ID is deterministic (kind + severity + subject id),
// so re-observing the same condition yields the same ID across cycles.
type Alert struct {
	ID           string     `json:"id"`
	Kind         Kind       `json:"kind"`
	Severity     Severity   `json:"severity"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TaskID       string     `json:"task_id,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	HoursOverdue int        `json:"hours_overdue,omitempty"`
}

// SubjectID returns the id of the entity the alert is about: the task for
// task-scoped alerts, the user for user-scoped ones.
func (a Alert) SubjectID() string {
	if a.TaskID != "" {
		return a.TaskID
	}
	return a.UserID
}

// LedgerKey returns the deduplication key used by the escalation ledger and
// by consumers filtering against DismissedKeys: "{subject}-{kind}".
func (a Alert) LedgerKey() string {
	return Key(a.SubjectID(), a.Kind)
}

// Key builds a ledger key from a subject id and kind. Exposed so ledger reads
// can rebuild keys without constructing a full Alert.
func Key(subjectID string, kind Kind) string {
	return subjectID + "-" + string(kind)
}
