// Package cli provides the command-line interface for the EIF log viewer.
package cli

import (
	"fmt"
	"os"

	"github.com/eif-viewer/backend/internal/cli/commands"
	"github.com/spf13/cobra"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eifview",
		Short: "Browse EIF trace logs and their trigger sequences",
		Long: `eifview loads EIF trace logs, filters their lines and detects
trigger-report sequences per item.

A sequence opens on "<item>:I_B_TRIGGER_REPORT]: ON" and closes on the
matching "<item>:O_B_TRIGGER_REPORT_CONF]: OFF". Each sequence lists the
item's lines inside the window, padded by --wiggle lines on both sides.

Run "eifview serve" for the HTTP API used by the browser viewer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewInfoCommand())
	rootCmd.AddCommand(commands.NewSequencesCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
