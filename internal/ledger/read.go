package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// DismissedKeys returns the "{subject}-{kind}" key of every resolved row.
// This is the suppression set a consumer subtracts from the live alert
// stream before display; the evaluator itself never reads it.
func (l *Ledger) DismissedKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT DISTINCT task_id, kind FROM escalations WHERE resolved = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("query dismissed keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var taskID, kind string
		if err := rows.Scan(&taskID, &kind); err != nil {
			return nil, fmt.Errorf("scan dismissed key: %w", err)
		}
		keys[alert.Key(taskID, alert.Kind(kind))] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dismissed keys: %w", err)
	}

	return keys, nil
}

// ListOpen returns all unresolved rows, most recently triggered first.
// Ties break on id for a deterministic order.
func (l *Ledger) ListOpen(ctx context.Context) ([]alert.StoredEscalation, error) {
	return l.list(ctx, `
		SELECT id, task_id, kind, user_id, user_name, task_title, deadline, triggered_at, hours_overdue, severity, resolved, resolved_at, resolved_by
		FROM escalations
		WHERE resolved = 0
		ORDER BY triggered_at DESC, id COLLATE BINARY ASC
	`)
}

// ListResolved returns all resolved rows, most recently resolved first.
// Ties break on id for a deterministic order.
func (l *Ledger) ListResolved(ctx context.Context) ([]alert.StoredEscalation, error) {
	return l.list(ctx, `
		SELECT id, task_id, kind, user_id, user_name, task_title, deadline, triggered_at, hours_overdue, severity, resolved, resolved_at, resolved_by
		FROM escalations
		WHERE resolved = 1
		ORDER BY resolved_at DESC, id COLLATE BINARY ASC
	`)
}

func (l *Ledger) list(ctx context.Context, query string) ([]alert.StoredEscalation, error) {
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query escalations: %w", err)
	}
	defer rows.Close()

	var out []alert.StoredEscalation
	for rows.Next() {
		esc, err := scanEscalation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escalations: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []alert.StoredEscalation{}
	}

	return out, nil
}

// scanEscalation reads one row into a StoredEscalation.
func scanEscalation(rows *sql.Rows) (alert.StoredEscalation, error) {
	var (
		esc         alert.StoredEscalation
		kind        string
		severity    string
		deadline    sql.NullString
		triggeredAt string
		resolved    int
		resolvedAt  sql.NullString
	)

	err := rows.Scan(
		&esc.ID,
		&esc.TaskID,
		&kind,
		&esc.UserID,
		&esc.UserName,
		&esc.TaskTitle,
		&deadline,
		&triggeredAt,
		&esc.HoursOverdue,
		&severity,
		&resolved,
		&resolvedAt,
		&esc.ResolvedBy,
	)
	if err != nil {
		return alert.StoredEscalation{}, fmt.Errorf("scan escalation: %w", err)
	}

	esc.Kind = alert.Kind(kind)
	esc.Severity = alert.Severity(severity)
	esc.Resolved = resolved != 0

	esc.TriggeredAt, err = parseTime(triggeredAt)
	if err != nil {
		return alert.StoredEscalation{}, fmt.Errorf("parse triggered_at: %w", err)
	}
	esc.Deadline, err = parseTimePtr(deadline)
	if err != nil {
		return alert.StoredEscalation{}, fmt.Errorf("parse deadline: %w", err)
	}
	esc.ResolvedAt, err = parseTimePtr(resolvedAt)
	if err != nil {
		return alert.StoredEscalation{}, fmt.Errorf("parse resolved_at: %w", err)
	}

	return esc, nil
}

// Times are stored as RFC 3339 text in UTC.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatTimePtr returns nil (SQL NULL) for a nil time.
func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
