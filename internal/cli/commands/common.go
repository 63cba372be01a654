package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/spf13/cobra"
)

// DetectorOptions holds the flags shared by commands that detect sequences.
type DetectorOptions struct {
	Wiggle int
	Rules  string
}

func (o *DetectorOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.Wiggle, "wiggle", "w", parser.DefaultWiggle, "Lines of padding on each side of a sequence window")
	cmd.Flags().StringVar(&o.Rules, "rules", "", "YAML detector rules file (start_signal, close_signal, wiggle)")
}

// detector builds the detector from the rules file; an explicit --wiggle wins.
func (o *DetectorOptions) detector(cmd *cobra.Command) (*parser.Detector, error) {
	d := parser.NewDetector()
	if o.Rules != "" {
		var err error
		if d, err = parser.ParseDetectorRules(o.Rules); err != nil {
			return nil, fmt.Errorf("loading rules: %w", err)
		}
	}
	if o.Rules == "" || cmd.Flags().Changed("wiggle") {
		if o.Wiggle < 0 {
			return nil, fmt.Errorf("invalid wiggle %d: must be non-negative", o.Wiggle)
		}
		d.Wiggle = o.Wiggle
	}
	return d, nil
}

// loadRecords loads a log file for a command. An empty file is reported on
// errOut and yields no records.
func loadRecords(path string, errOut io.Writer) ([]models.LogRecord, error) {
	records, err := parser.LoadLogFile(path)
	if err != nil {
		if errors.Is(err, parser.ErrFileNotFound) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	if len(records) == 0 {
		fmt.Fprintf(errOut, "%s: file is empty\n", path)
	}
	return records, nil
}
