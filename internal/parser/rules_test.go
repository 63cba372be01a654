package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDetectorRules(t *testing.T) {
	content := `
start_signal: "I_B_LOAD_REPORT"
close_signal: "O_B_LOAD_REPORT_CONF"
wiggle: 5
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := ParseDetectorRules(path)
	if err != nil {
		t.Fatalf("ParseDetectorRules failed: %v", err)
	}

	if d.StartSignal != "I_B_LOAD_REPORT" {
		t.Errorf("expected start_signal I_B_LOAD_REPORT, got %s", d.StartSignal)
	}
	if d.CloseSignal != "O_B_LOAD_REPORT_CONF" {
		t.Errorf("expected close_signal O_B_LOAD_REPORT_CONF, got %s", d.CloseSignal)
	}
	if d.Wiggle != 5 {
		t.Errorf("expected wiggle 5, got %d", d.Wiggle)
	}
}

func TestParseDetectorRules_PartialKeepsDefaults(t *testing.T) {
	d, err := ParseDetectorRulesFromReader(strings.NewReader("wiggle: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.StartSignal != DefaultStartSignal || d.CloseSignal != DefaultCloseSignal {
		t.Errorf("expected default signals, got %s / %s", d.StartSignal, d.CloseSignal)
	}
	if d.Wiggle != 0 {
		t.Errorf("expected explicit wiggle 0, got %d", d.Wiggle)
	}

	d, err = ParseDetectorRulesFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Wiggle != DefaultWiggle {
		t.Errorf("expected default wiggle, got %d", d.Wiggle)
	}
}

func TestParseDetectorRules_Invalid(t *testing.T) {
	if _, err := ParseDetectorRulesFromReader(strings.NewReader("wiggle: -1\n")); err == nil {
		t.Error("expected error for negative wiggle")
	}
	if _, err := ParseDetectorRulesFromReader(strings.NewReader("wiggle: [1, 2\n")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := ParseDetectorRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
