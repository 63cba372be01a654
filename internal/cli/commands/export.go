package commands

import (
	"fmt"

	"github.com/eif-viewer/backend/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &DetectorOptions{}
	var threads int

	cmd := &cobra.Command{
		Use:   "export <log-file> <output.duckdb>",
		Short: "Export a log and its sequences to DuckDB",
		Long: `Write the lines of an EIF trace log and its detected sequences to a DuckDB
database with the tables records, sequences and sequence_positions.
An existing output file is replaced.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.detector(cmd)
			if err != nil {
				return err
			}
			records, err := loadRecords(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			exporter := &export.Exporter{Threads: threads}
			summary, err := exporter.Write(cmd.Context(), args[1], records, d.Detect(records))
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d records, %d sequences\n",
				onStyle.Render("exported"), summary.Path, summary.Records, summary.Sequences)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().IntVar(&threads, "threads", 0, "DuckDB worker threads (0 = DuckDB default)")

	return cmd
}
