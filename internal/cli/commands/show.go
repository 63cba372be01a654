package commands

import (
	"encoding/json"
	"fmt"

	"github.com/eif-viewer/backend/internal/parser"
	"github.com/spf13/cobra"
)

// ShowOptions holds command-line options for the show command.
type ShowOptions struct {
	Keyword     string
	Start       string
	End         string
	Subsystems  []string
	LineNumbers bool
	Output      string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <log-file>",
		Short: "Print the log lines matching a filter",
		Long: `Print the lines of an EIF trace log that match every given filter.

  --keyword     case-insensitive substring
  --start/--end inclusive period, "YYYY-MM-DD HH:MM:SS" or RFC3339;
                lines without a timestamp are always kept
  --subsystem   subsystem to show (repeatable); all when omitted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Keyword, "keyword", "k", "", "Case-insensitive keyword")
	cmd.Flags().StringVar(&opts.Start, "start", "", "Period start")
	cmd.Flags().StringVar(&opts.End, "end", "", "Period end")
	cmd.Flags().StringSliceVarP(&opts.Subsystems, "subsystem", "s", nil, "Subsystem to show (can be repeated)")
	cmd.Flags().BoolVarP(&opts.LineNumbers, "line-numbers", "n", false, "Prefix lines with their line number")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string, opts *ShowOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q", opts.Output)
	}

	tr, err := parser.ParseRange(opts.Start, opts.End)
	if err != nil {
		return fmt.Errorf("invalid period: %w", err)
	}

	records, err := loadRecords(args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	subsystems := parser.NewSubsystemSet(opts.Subsystems...)
	if !cmd.Flags().Changed("subsystem") {
		subsystems = parser.NewSubsystemSet(parser.Subsystems(records)...)
	}

	filtered := parser.Filter(records, parser.FilterParams{
		Keyword:    opts.Keyword,
		Range:      tr,
		Subsystems: subsystems,
	})

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(parser.Entries(filtered))
	}

	for _, rec := range filtered {
		if opts.LineNumbers {
			fmt.Fprintf(out, "%6d  %s\n", rec.Line, rec.Raw)
		} else {
			fmt.Fprintln(out, rec.Raw)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d lines\n", len(filtered), len(records))
	return nil
}
