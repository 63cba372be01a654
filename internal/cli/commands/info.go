package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eif-viewer/backend/internal/parser"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	opts := &DetectorOptions{}

	cmd := &cobra.Command{
		Use:   "info <log-file>",
		Short: "Summarize a log file",
		Long:  "Print the line count, period, subsystems, items and sequence count of an EIF trace log.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.detector(cmd)
			if err != nil {
				return err
			}
			records, err := loadRecords(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			period := "-"
			if tr := parser.RecordTimeRange(records); tr != nil {
				period = tr.Start.Format(parser.TimestampLayout) + " .. " + tr.End.Format(parser.TimestampLayout)
			}
			sequences := d.Detect(records)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(filepath.Base(args[0])))
			for _, row := range [][2]string{
				{"Lines", fmt.Sprint(len(records))},
				{"Period", period},
				{"Subsystems", joinOrDash(parser.Subsystems(records))},
				{"Items", joinOrDash(parser.Items(records))},
				{"Sequences", fmt.Sprintf("%d (wiggle %d)", parser.CountSequences(sequences), d.Wiggle)},
			} {
				fmt.Fprintf(out, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", row[0])), valueStyle.Render(row[1]))
			}
			return nil
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
