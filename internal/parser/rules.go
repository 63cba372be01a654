package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/eif-viewer/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseDetectorRules reads a YAML rules file and returns the configured Detector.
//
//	start_signal: I_B_TRIGGER_REPORT
//	close_signal: O_B_TRIGGER_REPORT_CONF
//	wiggle: 3
func ParseDetectorRules(filePath string) (*Detector, error) {
	rules, err := ReadDetectorRules(filePath)
	if err != nil {
		return nil, err
	}
	return ApplyRules(NewDetector(), rules)
}

// ParseDetectorRulesFromReader parses detector rules from an io.Reader.
func ParseDetectorRulesFromReader(r io.Reader) (*Detector, error) {
	rules, err := DecodeDetectorRules(r)
	if err != nil {
		return nil, err
	}
	return ApplyRules(NewDetector(), rules)
}

// ReadDetectorRules reads a rules file without applying it.
func ReadDetectorRules(filePath string) (models.DetectorRules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return models.DetectorRules{}, err
	}
	defer file.Close()

	return DecodeDetectorRules(file)
}

// DecodeDetectorRules decodes YAML detector rules.
func DecodeDetectorRules(r io.Reader) (models.DetectorRules, error) {
	var rules models.DetectorRules

	data, err := io.ReadAll(r)
	if err != nil {
		return rules, err
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parsing detector rules: %w", err)
	}
	return rules, nil
}

// ApplyRules overrides d with the non-empty fields of rules.
func ApplyRules(d *Detector, rules models.DetectorRules) (*Detector, error) {
	if rules.StartSignal != "" {
		d.StartSignal = rules.StartSignal
	}
	if rules.CloseSignal != "" {
		d.CloseSignal = rules.CloseSignal
	}
	if rules.Wiggle != nil {
		if *rules.Wiggle < 0 {
			return nil, fmt.Errorf("invalid wiggle %d: must be non-negative", *rules.Wiggle)
		}
		d.Wiggle = *rules.Wiggle
	}
	return d, nil
}
