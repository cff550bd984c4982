package alert

import "time"

// StoredEscalation is a durable ledger row recording that a critical alert
// was observed and/or dismissed.
//
// Lifecycle: created unresolved by the reconciler when a critical alert is
// first seen (or created already-resolved by a dismiss of a never-logged
// alert). The only permitted mutation is the one-way flip of Resolved to
// true. For a given (TaskID, Kind) pair at most one unresolved row exists at
// any time; resolved rows accumulate as history.
type StoredEscalation struct {
	ID           string     `json:"id"`
	TaskID       string     `json:"task_id"` // Subject id: task id, or user id for user-scoped alerts
	Kind         Kind       `json:"kind"`
	UserID       string     `json:"user_id,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
	TaskTitle    string     `json:"task_title,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	TriggeredAt  time.Time  `json:"triggered_at"`
	HoursOverdue int        `json:"hours_overdue,omitempty"`
	Severity     Severity   `json:"severity"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
}

// Key returns the row's deduplication key, "{subject}-{kind}".
func (e StoredEscalation) Key() string {
	return Key(e.TaskID, e.Kind)
}
