package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// LogEscalations persists an unresolved ledger row for every critical alert
// not already covered by one. High and medium alerts are never persisted.
//
// The insert is keyed on (task_id, kind) against the partial unique index on
// unresolved rows, so re-observing the same condition on later cycles is a
// no-op. Per-alert failures do not stop the remaining alerts; all failures
// are joined into the returned error for the caller to log and retry on the
// next cycle.
func (l *Ledger) LogEscalations(ctx context.Context, alerts []alert.Alert) error {
	var errs []error
	for _, a := range alerts {
		if a.Severity != alert.SeverityCritical {
			continue
		}
		if err := l.logEscalation(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("log escalation %s: %w", a.LedgerKey(), err))
		}
	}
	return errors.Join(errs...)
}

// logEscalation inserts one unresolved row unless the key already has one.
func (l *Ledger) logEscalation(ctx context.Context, a alert.Alert) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO escalations
		(id, task_id, kind, user_id, user_name, task_title, deadline, triggered_at, hours_overdue, severity, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(task_id, kind) WHERE resolved = 0 DO NOTHING
	`,
		newRowID(),
		a.SubjectID(),
		string(a.Kind),
		a.UserID,
		a.UserName,
		a.Title,
		formatTimePtr(a.Deadline),
		formatTime(a.Timestamp),
		a.HoursOverdue,
		string(a.Severity),
	)
	return err
}

// Dismiss durably suppresses the alert's (subject, kind) condition on behalf
// of actorID.
//
// If an unresolved row exists it is resolved; re-dismissing an already
// resolved condition is a no-op and never rewrites resolved_at/resolved_by.
// If the condition was never logged (the alert was high or medium severity),
// a row that is born resolved is inserted so the suppression survives
// restarts.
func (l *Ledger) Dismiss(ctx context.Context, a alert.Alert, actorID string) error {
	subject := a.SubjectID()
	kind := string(a.Kind)
	now := formatTime(time.Now())

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dismiss %s: begin tx: %w", a.LedgerKey(), err)
	}
	defer tx.Rollback() // No-op if committed

	// Resolve only unresolved rows - the monotonic flip.
	res, err := tx.ExecContext(ctx, `
		UPDATE escalations
		SET resolved = 1, resolved_at = ?, resolved_by = ?
		WHERE task_id = ? AND kind = ? AND resolved = 0
	`, now, actorID, subject, kind)
	if err != nil {
		return fmt.Errorf("dismiss %s: resolve: %w", a.LedgerKey(), err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("dismiss %s: rows affected: %w", a.LedgerKey(), err)
	}

	if affected == 0 {
		// Nothing unresolved. Either the key was already dismissed (no-op)
		// or the alert was never logged (insert a pre-resolved row).
		var resolved int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM escalations
			WHERE task_id = ? AND kind = ? AND resolved = 1
		`, subject, kind).Scan(&resolved)
		if err != nil {
			return fmt.Errorf("dismiss %s: check resolved: %w", a.LedgerKey(), err)
		}

		if resolved == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO escalations
				(id, task_id, kind, user_id, user_name, task_title, deadline, triggered_at, hours_overdue, severity, resolved, resolved_at, resolved_by)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			`,
				newRowID(),
				subject,
				kind,
				a.UserID,
				a.UserName,
				a.Title,
				formatTimePtr(a.Deadline),
				formatTime(a.Timestamp),
				a.HoursOverdue,
				string(a.Severity),
				now,
				actorID,
			)
			if err != nil {
				return fmt.Errorf("dismiss %s: insert resolved: %w", a.LedgerKey(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dismiss %s: commit: %w", a.LedgerKey(), err)
	}

	return nil
}

// newRowID returns a UUIDv7 row id. Falls back to random UUID if the
// monotonic source is exhausted.
func newRowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
