package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/ledger"
)

type escalationsOptions struct {
	root     *RootOptions
	dbPath   string
	resolved bool
}

type escalationsResult struct {
	Escalations []alert.StoredEscalation `json:"escalations"`
}

func newEscalationsCommand(root *RootOptions) *cobra.Command {
	opts := &escalationsOptions{root: root}

	cmd := &cobra.Command{
		Use:   "escalations",
		Short: "List recorded escalations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEscalations(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", os.Getenv("WATCHDESK_DB"), "path to the escalation ledger database")
	cmd.Flags().BoolVar(&opts.resolved, "resolved", false, "list resolved escalations instead of open ones")

	return cmd
}

func runEscalations(ctx context.Context, opts *escalationsOptions, out, errOut io.Writer) error {
	formatter := NewOutputFormatter(opts.root.Format, opts.root.Verbose, out, errOut)

	if opts.dbPath == "" {
		return formatter.Error(ExitCommandError, "MISSING_DB", "no ledger database given", "set --db or WATCHDESK_DB")
	}

	led, err := ledger.Open(opts.dbPath)
	if err != nil {
		return formatter.Error(ExitFailure, "LEDGER_OPEN", "failed to open ledger", err.Error())
	}
	defer led.Close()

	var rows []alert.StoredEscalation
	if opts.resolved {
		rows, err = led.ListResolved(ctx)
	} else {
		rows, err = led.ListOpen(ctx)
	}
	if err != nil {
		return formatter.Error(ExitFailure, "LEDGER_READ", "failed to list escalations", err.Error())
	}

	if opts.root.Format == "json" {
		return formatter.Success(escalationsResult{Escalations: rows})
	}
	renderEscalations(out, rows, opts.resolved)
	return nil
}

func renderEscalations(w io.Writer, rows []alert.StoredEscalation, resolved bool) {
	if len(rows) == 0 {
		if resolved {
			fmt.Fprintln(w, "no resolved escalations")
		} else {
			fmt.Fprintln(w, "no open escalations")
		}
		return
	}
	for _, e := range rows {
		fmt.Fprintf(w, "%s  %s  triggered %s", e.Key(), e.Severity, e.TriggeredAt.Format(time.RFC3339))
		if e.Resolved && e.ResolvedAt != nil {
			fmt.Fprintf(w, "  resolved %s by %s", e.ResolvedAt.Format(time.RFC3339), e.ResolvedBy)
		}
		fmt.Fprintln(w)
		if e.TaskTitle != "" {
			fmt.Fprintf(w, "    %s\n", e.TaskTitle)
		}
	}
}
