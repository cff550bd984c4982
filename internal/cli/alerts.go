package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/watchdesk/internal/alert"
	"github.com/opsdeck/watchdesk/internal/engine"
	"github.com/opsdeck/watchdesk/internal/ledger"
	"github.com/opsdeck/watchdesk/internal/source"
)

type alertsOptions struct {
	root       *RootOptions
	dbPath     string
	policyPath string
	at         string
}

// alertsResult is the JSON payload for the alerts command.
type alertsResult struct {
	Alerts  []alert.Alert `json:"alerts"`
	Summary alert.Summary `json:"summary"`
}

func newAlertsCommand(root *RootOptions) *cobra.Command {
	opts := &alertsOptions{root: root}

	cmd := &cobra.Command{
		Use:   "alerts <facts-file>",
		Short: "Evaluate a facts file once and print active alerts",
		Long: `Alerts reads tasks and users from a facts file, evaluates them at
the current instant (or at --at), drops alerts whose ledger key has
been dismissed, and prints the rest in severity order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlerts(cmd.Context(), opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", os.Getenv("WATCHDESK_DB"), "ledger database to read dismissals from (optional)")
	cmd.Flags().StringVar(&opts.policyPath, "policy", "", "path to a CUE policy file (defaults apply when unset)")
	cmd.Flags().StringVar(&opts.at, "at", "", "evaluate at this RFC3339 instant instead of now")

	return cmd
}

func runAlerts(ctx context.Context, opts *alertsOptions, factsPath string, out, errOut io.Writer) error {
	formatter := NewOutputFormatter(opts.root.Format, opts.root.Verbose, out, errOut)

	pol, err := loadPolicy(opts.policyPath)
	if err != nil {
		return formatter.Error(ExitCommandError, "POLICY_INVALID", "failed to load policy", err.Error())
	}

	tasks, users, err := source.Read(factsPath)
	if err != nil {
		return formatter.Error(ExitCommandError, "FACTS_UNREADABLE", "failed to read facts file", err.Error())
	}
	formatter.VerboseLog("loaded %d tasks and %d users from %s", len(tasks), len(users), factsPath)

	now := time.Now()
	loc := time.Local
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return formatter.Error(ExitCommandError, "BAD_TIMESTAMP", "invalid --at timestamp", err.Error())
		}
		now = at
		loc = at.Location()
	}

	eval := engine.NewEvaluator(pol, loc)
	alerts := eval.Evaluate(tasks, users, now)

	// The engine never subtracts dismissals; consumers that want filtered
	// output join against the ledger themselves.
	if opts.dbPath != "" {
		alerts, err = withoutDismissed(ctx, opts.dbPath, alerts)
		if err != nil {
			slog.Warn("skipping dismissal filter", "error", err)
		}
	}

	if opts.root.Format == "json" {
		return formatter.Success(alertsResult{Alerts: alerts, Summary: alert.Summarize(alerts)})
	}
	renderAlerts(out, alerts)
	return nil
}

func withoutDismissed(ctx context.Context, dbPath string, alerts []alert.Alert) ([]alert.Alert, error) {
	led, err := ledger.Open(dbPath)
	if err != nil {
		return alerts, fmt.Errorf("opening ledger: %w", err)
	}
	defer led.Close()

	dismissed, err := led.DismissedKeys(ctx)
	if err != nil {
		return alerts, fmt.Errorf("reading dismissed keys: %w", err)
	}

	kept := alerts[:0]
	for _, a := range alerts {
		if _, ok := dismissed[a.LedgerKey()]; !ok {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

func renderAlerts(w io.Writer, alerts []alert.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "no active alerts")
		return
	}
	s := alert.Summarize(alerts)
	fmt.Fprintf(w, "%d alerts: %d critical, %d high, %d medium\n\n", s.Total, s.Critical, s.High, s.Medium)
	for _, a := range alerts {
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Title)
		fmt.Fprintf(w, "    %s\n", a.Description)
	}
}
