package alert

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Task is a work-item snapshot from the external fact source.
// Read-only to the engine: a completed task never yields an alert.
type Task struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Status   TaskStatus `json:"status" yaml:"status"`
	Deadline *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"` // Optional hard deadline
	Date     string     `json:"date,omitempty" yaml:"date,omitempty"`         // Calendar day the task belongs to ("2006-01-02")
	UserID   string     `json:"user_id" yaml:"user_id"`                       // Assignee
}

// Completed reports whether the task is in a terminal state.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// PerformanceFlag is a standing assessment of a user's recent performance.
type PerformanceFlag string

const (
	FlagGreen  PerformanceFlag = "green"
	FlagYellow PerformanceFlag = "yellow"
	FlagRed    PerformanceFlag = "red"
)

// User is an actor snapshot from the external fact source.
type User struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Flag          PerformanceFlag `json:"performance_flag,omitempty" yaml:"performance_flag,omitempty"`
	FlagUpdatedAt *time.Time      `json:"flag_updated_at,omitempty" yaml:"flag_updated_at,omitempty"`
}
