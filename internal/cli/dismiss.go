package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/ledger"
)

type dismissOptions struct {
	root     *RootOptions
	dbPath   string
	actor    string
	taskID   string
	userID   string
	kind     string
	severity string
}

type dismissResult struct {
	Key   string `json:"key"`
	Actor string `json:"actor"`
}

func newDismissCommand(root *RootOptions) *cobra.Command {
	opts := &dismissOptions{root: root}

	cmd := &cobra.Command{
		Use:   "dismiss",
		Short: "Mark an escalation as resolved",
		Long: `Dismiss resolves the open escalation for a subject and kind. When no
matching row was ever logged, a pre-resolved row is recorded so the
dismissal still suppresses future alerts with the same key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDismiss(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", os.Getenv("WATCHDESK_DB"), "path to the escalation ledger database")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "id of the user performing the dismissal")
	cmd.Flags().StringVar(&opts.taskID, "task", "", "task id the escalation is about")
	cmd.Flags().StringVar(&opts.userID, "user", "", "user id the escalation is about (for user-scoped alerts)")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "alert kind (overdue, approaching-deadline, red-flag, yellow-flag)")
	cmd.Flags().StringVar(&opts.severity, "severity", string(alert.SeverityCritical), "severity recorded when inserting a pre-resolved row")

	return cmd
}

func runDismiss(ctx context.Context, opts *dismissOptions, out, errOut io.Writer) error {
	formatter := NewOutputFormatter(opts.root.Format, opts.root.Verbose, out, errOut)

	if opts.dbPath == "" {
		return formatter.Error(ExitCommandError, "MISSING_DB", "no ledger database given", "set --db or WATCHDESK_DB")
	}
	if opts.actor == "" {
		return formatter.Error(ExitCommandError, "MISSING_ACTOR", "no actor given", "set --actor to the dismissing user's id")
	}
	if (opts.taskID == "") == (opts.userID == "") {
		return formatter.Error(ExitCommandError, "BAD_SUBJECT", "exactly one of --task or --user is required", "")
	}
	kind, err := parseKind(opts.kind)
	if err != nil {
		return formatter.Error(ExitCommandError, "BAD_KIND", err.Error(), "")
	}

	a := alert.Alert{
		Kind:     kind,
		Severity: alert.Severity(opts.severity),
		TaskID:   opts.taskID,
		UserID:   opts.userID,
	}

	led, err := ledger.Open(opts.dbPath)
	if err != nil {
		return formatter.Error(ExitFailure, "LEDGER_OPEN", "failed to open ledger", err.Error())
	}
	defer led.Close()

	if err := led.Dismiss(ctx, a, opts.actor); err != nil {
		return formatter.Error(ExitFailure, "DISMISS_FAILED", "failed to dismiss escalation", err.Error())
	}

	if opts.root.Format == "json" {
		return formatter.Success(dismissResult{Key: a.LedgerKey(), Actor: opts.actor})
	}
	return formatter.Success(fmt.Sprintf("dismissed %s", a.LedgerKey()))
}

func parseKind(s string) (alert.Kind, error) {
	switch k := alert.Kind(s); k {
	case alert.KindOverdue, alert.KindApproaching, alert.KindRedFlag, alert.KindYellowFlag:
		return k, nil
	case "":
		return "", fmt.Errorf("no kind given: set --kind")
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}
