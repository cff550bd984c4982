package engine

import (
	"fmt"
	"time"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/policy"
)

// dateLayout is the calendar-day format used by Task.Date.
const dateLayout = "2006-01-02"

// Evaluator derives the complete alert set that holds at a given instant.
//
// Evaluator is pure: Evaluate performs no I/O and reads no ambient state, so
// identical inputs always produce identical output. All rule thresholds come
// from the policy; all calendar arithmetic (day boundaries, local hours) uses
// the configured location.
type Evaluator struct {
	policy policy.Policy
	loc    *time.Location
}

// NewEvaluator creates an Evaluator for the given policy.
// A nil location defaults to time.Local.
func NewEvaluator(p policy.Policy, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{policy: p, loc: loc}
}

// Evaluate recomputes the full alert set for the given fact snapshots at now.
//
// Rules, per non-completed task:
//   - deadline passed by more than the critical threshold: critical overdue
//   - deadline passed by up to the critical threshold: high overdue
//   - deadline inside the approaching window: medium approaching-deadline
//   - task dated today and local hour at or past the end-of-day critical
//     hour: critical red-flag; past the warning hour: medium yellow-flag
//
// Per user: a standing red performance flag yields one critical red-flag
// alert every cycle for as long as the flag holds.
//
// Alerts timestamped before the start of the current calendar day are
// dropped: the engine only surfaces same-day-or-later activity. The result
// is ranked (see Rank) before being returned.
func (e *Evaluator) Evaluate(tasks []alert.Task, users []alert.User, now time.Time) []alert.Alert {
	local := now.In(e.loc)
	today := local.Format(dateLayout)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.loc)

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var out []alert.Alert
	for _, t := range tasks {
		if t.Completed() {
			continue
		}
		if a, ok := e.deadlineAlert(t, names[t.UserID], now); ok {
			out = append(out, a)
		}
		if a, ok := e.endOfDayAlert(t, names[t.UserID], local, today, now); ok {
			out = append(out, a)
		}
	}

	for _, u := range users {
		if u.Flag != alert.FlagRed {
			continue
		}
		ts := now
		if u.FlagUpdatedAt != nil {
			ts = *u.FlagUpdatedAt
		}
		out = append(out, alert.Alert{
			ID:          "red-flag-" + u.ID,
			Kind:        alert.KindRedFlag,
			Severity:    alert.SeverityCritical,
			Title:       "Performance red flag",
			Description: fmt.Sprintf("%s has a standing red performance flag", u.Name),
			UserID:      u.ID,
			UserName:    u.Name,
			Timestamp:   ts,
		})
	}

	// Same-day filter: older conditions are not re-surfaced.
	filtered := out[:0]
	for _, a := range out {
		if a.Timestamp.Before(dayStart) {
			continue
		}
		filtered = append(filtered, a)
	}

	Rank(filtered)
	return filtered
}

// deadlineAlert applies the deadline rules to a single task.
func (e *Evaluator) deadlineAlert(t alert.Task, userName string, now time.Time) (alert.Alert, bool) {
	if t.Deadline == nil {
		return alert.Alert{}, false
	}

	diff := now.Sub(*t.Deadline)
	critAfter := time.Duration(e.policy.OverdueCriticalHours) * time.Hour
	window := time.Duration(e.policy.ApproachingWindowHours) * time.Hour

	switch {
	case diff > critAfter:
		hours := int(diff / time.Hour)
		return alert.Alert{
			ID:           "overdue-critical-" + t.ID,
			Kind:         alert.KindOverdue,
			Severity:     alert.SeverityCritical,
			Title:        "Task overdue",
			Description:  fmt.Sprintf("%s is %dh past its deadline%s", t.Title, hours, assignee(userName)),
			TaskID:       t.ID,
			UserID:       t.UserID,
			UserName:     userName,
			Timestamp:    now,
			Deadline:     t.Deadline,
			HoursOverdue: hours,
		}, true

	case diff > 0:
		hours := int(diff / time.Hour)
		return alert.Alert{
			ID:           "overdue-high-" + t.ID,
			Kind:         alert.KindOverdue,
			Severity:     alert.SeverityHigh,
			Title:        "Task overdue",
			Description:  fmt.Sprintf("%s is %dh past its deadline%s", t.Title, hours, assignee(userName)),
			TaskID:       t.ID,
			UserID:       t.UserID,
			UserName:     userName,
			Timestamp:    now,
			Deadline:     t.Deadline,
			HoursOverdue: hours,
		}, true

	case diff > -window:
		minutes := int((-diff) / time.Minute)
		return alert.Alert{
			ID:          "approaching-deadline-" + t.ID,
			Kind:        alert.KindApproaching,
			Severity:    alert.SeverityMedium,
			Title:       "Deadline approaching",
			Description: fmt.Sprintf("%s is due in %d minutes%s", t.Title, minutes, assignee(userName)),
			TaskID:      t.ID,
			UserID:      t.UserID,
			UserName:    userName,
			Timestamp:   now,
			Deadline:    t.Deadline,
		}, true
	}

	return alert.Alert{}, false
}

// endOfDayAlert applies the end-of-day rules to a single task. The rule is
// independent of the deadline rules; both may fire for the same task.
func (e *Evaluator) endOfDayAlert(t alert.Task, userName string, local time.Time, today string, now time.Time) (alert.Alert, bool) {
	if t.Date != today {
		return alert.Alert{}, false
	}

	switch {
	case local.Hour() >= e.policy.EndOfDayCriticalHour:
		return alert.Alert{
			ID:          "red-flag-" + t.ID,
			Kind:        alert.KindRedFlag,
			Severity:    alert.SeverityCritical,
			Title:       fmt.Sprintf("Incomplete after %02d:00", e.policy.EndOfDayCriticalHour),
			Description: fmt.Sprintf("%s is still incomplete at end of day%s", t.Title, assignee(userName)),
			TaskID:      t.ID,
			UserID:      t.UserID,
			UserName:    userName,
			Timestamp:   now,
			Deadline:    t.Deadline,
		}, true

	case local.Hour() >= e.policy.EndOfDayWarningHour:
		return alert.Alert{
			ID:          "yellow-flag-" + t.ID,
			Kind:        alert.KindYellowFlag,
			Severity:    alert.SeverityMedium,
			Title:       fmt.Sprintf("Pending after %02d:00", e.policy.EndOfDayWarningHour),
			Description: fmt.Sprintf("%s is still pending late in the day%s", t.Title, assignee(userName)),
			TaskID:      t.ID,
			UserID:      t.UserID,
			UserName:    userName,
			Timestamp:   now,
			Deadline:    t.Deadline,
		}, true
	}

	return alert.Alert{}, false
}

func assignee(name string) string {
	if name == "" {
		return ""
	}
	return ", assigned to " + name
}
