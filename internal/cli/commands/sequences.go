package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/spf13/cobra"
)

// SequencesOptions holds command-line options for the sequences command.
type SequencesOptions struct {
	DetectorOptions
	Item   string
	Lines  bool
	Output string
}

// NewSequencesCommand creates the sequences command.
func NewSequencesCommand() *cobra.Command {
	opts := &SequencesOptions{}

	cmd := &cobra.Command{
		Use:   "sequences <log-file>",
		Short: "Detect trigger report sequences",
		Long: `Detect the trigger report sequences of every item in an EIF trace log.

A sequence opens on "I_B_TRIGGER_REPORT: ON" and closes on the next
"O_B_TRIGGER_REPORT_CONF: OFF" of the same item. Its lines are the item's
lines within the window padded by --wiggle lines on each side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequences(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Item, "item", "i", "", "Only show sequences of this item")
	cmd.Flags().BoolVarP(&opts.Lines, "lines", "l", false, "Show the lines of each sequence")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runSequences(cmd *cobra.Command, args []string, opts *SequencesOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q", opts.Output)
	}

	d, err := opts.detector(cmd)
	if err != nil {
		return err
	}
	records, err := loadRecords(args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sequences := d.Detect(records)
	if opts.Item != "" {
		sequences = map[string][]models.Sequence{opts.Item: sequences[opts.Item]}
		if sequences[opts.Item] == nil {
			delete(sequences, opts.Item)
		}
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sequences)
	}

	if len(sequences) == 0 {
		fmt.Fprintln(out, "no sequences found")
		return nil
	}
	fmt.Fprintln(out, sequenceTree(filepath.Base(args[0]), records, sequences, opts.Lines))
	return nil
}

// sequenceTree renders sequences grouped by item under the file name.
func sequenceTree(name string, records []models.LogRecord, sequences map[string][]models.Sequence, lines bool) *tree.Tree {
	items := make([]string, 0, len(sequences))
	for item := range sequences {
		items = append(items, item)
	}
	sort.Strings(items)

	root := tree.Root(name).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(branchStyle).
		RootStyle(titleStyle)

	for _, item := range items {
		itemTree := tree.Root(itemStyle.Render(item)).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(branchStyle)
		for i, seq := range sequences[item] {
			label := fmt.Sprintf("#%d %s %s %s (%d lines)", i+1,
				onStyle.Render(seq.Start.Format(parser.TimestampLayout)),
				labelStyle.Render("->"),
				offStyle.Render(seq.End.Format(parser.TimestampLayout)),
				len(seq.Positions))
			if !lines {
				itemTree.Child(label)
				continue
			}
			seqTree := tree.Root(label).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(branchStyle)
			for _, pos := range seq.Positions {
				seqTree.Child(valueStyle.Render(records[pos].Raw))
			}
			itemTree.Child(seqTree)
		}
		root.Child(itemTree)
	}
	return root
}
