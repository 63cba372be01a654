package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eif-viewer/backend/internal/testutil"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.log")
	require.NoError(t, os.WriteFile(path, testutil.SampleLog, 0644))
	return path
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewShowCommand(t *testing.T) {
	cmd := NewShowCommand()

	if cmd.Use != "show <log-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"keyword", "start", "end", "subsystem", "line-numbers", "output"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewSequencesCommand(t *testing.T) {
	cmd := NewSequencesCommand()

	if cmd.Use != "sequences <log-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"wiggle", "rules", "item", "lines", "output"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
	if cmd.Flags().Lookup("wiggle").DefValue != "3" {
		t.Errorf("Unexpected wiggle default: %s", cmd.Flags().Lookup("wiggle").DefValue)
	}
}

func TestNewVersionCommand(t *testing.T) {
	stdout, _, err := runCommand(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Contains(t, stdout, "eifview dev")
}

func TestRunShow(t *testing.T) {
	path := writeSampleLog(t)

	tests := []struct {
		name  string
		args  []string
		lines int
	}{
		{"all subsystems by default", nil, 4},
		{"single subsystem", []string{"--subsystem", "Door"}, 3},
		{"keyword is case-insensitive", []string{"--keyword", "trigger_REPORT"}, 2},
		{"period", []string{"--start", "2024-01-01 10:00:01", "--end", "2024-01-01 10:00:02"}, 2},
		{"empty subsystem set", []string{"--subsystem", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, NewShowCommand(), append([]string{path}, tt.args...)...)
			require.NoError(t, err)

			got := 0
			if stdout != "" {
				got = strings.Count(stdout, "\n")
			}
			assert.Equal(t, tt.lines, got, stdout)
			assert.Contains(t, stderr, "of 4 lines")
		})
	}
}

func TestRunShow_LineNumbersAndJSON(t *testing.T) {
	path := writeSampleLog(t)

	stdout, _, err := runCommand(t, NewShowCommand(), path, "-n", "-s", "Lift")
	require.NoError(t, err)
	assert.Equal(t, "     3  2024-01-01 10:00:02 [EIF.Lift] [L1:I_B_STATUS]: OFF\n", stdout)

	stdout, _, err = runCommand(t, NewShowCommand(), path, "-o", "json", "-s", "Door")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "D1", entries[0]["item"])
	assert.Equal(t, "I_B_TRIGGER_REPORT", entries[0]["signal"])
}

func TestRunShow_Errors(t *testing.T) {
	path := writeSampleLog(t)

	_, _, err := runCommand(t, NewShowCommand(), filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")

	_, _, err = runCommand(t, NewShowCommand(), path, "--start", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period")

	_, _, err = runCommand(t, NewShowCommand(), path, "-o", "xml")
	require.Error(t, err)
}

func TestRunShow_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	stdout, stderr, err := runCommand(t, NewShowCommand(), path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "file is empty")
}

func TestRunInfo(t *testing.T) {
	path := writeSampleLog(t)

	stdout, _, err := runCommand(t, NewInfoCommand(), path)
	require.NoError(t, err)

	checks := []string{
		"trace.log",
		"4",
		"2024-01-01 10:00:00 .. 2024-01-01 10:00:05",
		"Door, Lift",
		"D1, L1",
		"1 (wiggle 3)",
	}
	for _, check := range checks {
		assert.Contains(t, stdout, check)
	}
}

func TestRunSequences(t *testing.T) {
	path := writeSampleLog(t)

	stdout, _, err := runCommand(t, NewSequencesCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "trace.log")
	assert.Contains(t, stdout, "D1")
	assert.Contains(t, stdout, "#1 2024-01-01 10:00:00 -> 2024-01-01 10:00:05 (3 lines)")
	assert.NotContains(t, stdout, "L1")

	stdout, _, err = runCommand(t, NewSequencesCommand(), path, "--lines")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[D1:I_B_STATUS]: ON")
	assert.NotContains(t, stdout, "[L1:I_B_STATUS]")

	stdout, _, err = runCommand(t, NewSequencesCommand(), path, "--item", "L1")
	require.NoError(t, err)
	assert.Equal(t, "no sequences found\n", stdout)
}

func TestRunSequences_JSON(t *testing.T) {
	path := writeSampleLog(t)

	stdout, _, err := runCommand(t, NewSequencesCommand(), path, "-o", "json", "-w", "0")
	require.NoError(t, err)

	var result map[string][]struct {
		Item      string `json:"item"`
		Positions []int  `json:"positions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result["D1"], 1)
	assert.Equal(t, []int{0, 1, 3}, result["D1"][0].Positions)
}

func TestDetectorOptions_RulesAndWiggle(t *testing.T) {
	path := writeSampleLog(t)
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("wiggle: 0\n"), 0644))

	stdout, _, err := runCommand(t, NewInfoCommand(), path, "--rules", rules)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(wiggle 0)")

	stdout, _, err = runCommand(t, NewInfoCommand(), path, "--rules", rules, "--wiggle", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(wiggle 5)")

	_, _, err = runCommand(t, NewInfoCommand(), path, "--wiggle", "-1")
	require.Error(t, err)
}

func TestRunExport(t *testing.T) {
	path := writeSampleLog(t)
	out := filepath.Join(t.TempDir(), "trace.duckdb")

	stdout, _, err := runCommand(t, NewExportCommand(), path, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 records, 1 sequences")

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestEchoLogLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, echoLogLevel("DEBUG"))
	assert.Equal(t, log.DEBUG, echoLogLevel("debug"))
	assert.Equal(t, log.OFF, echoLogLevel("Off"))
	assert.Equal(t, log.INFO, echoLogLevel("loud"))
}
