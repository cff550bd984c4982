// Package cli implements the watchdesk command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root watchdesk command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "watchdesk",
		Short: "Deadline watchdog and escalation ledger",
		Long: `watchdesk evaluates task deadlines and assignee performance flags
into ranked alerts, and records critical alerts in a durable
escalation ledger with idempotent deduplication.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if opts.Format == f {
					return nil
				}
			}
			return NewExitError(ExitCommandError,
				fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "text", "output format (text or json)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newAlertsCommand(opts))
	cmd.AddCommand(newDismissCommand(opts))
	cmd.AddCommand(newEscalationsCommand(opts))

	return cmd
}
