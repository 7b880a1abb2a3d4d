package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/adbudget/internal/config"
	"github.com/iwvelando/adbudget/internal/server"
	"github.com/iwvelando/adbudget/pkg/output"
	"github.com/iwvelando/adbudget/pkg/testutil"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adbudget.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestSolveCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name: "flags only",
			args: []string{"solve", "--max-budget", "25", "--in-house", "1,1", "--third-party", "1,1",
				"--agency-fee", "5", "--third-party-fee", "5", "--hour-cost", "5"},
			expected: `"request","25","14.95","24.9975","0.0025","12","converged"`,
		},
		{
			name:     "preset",
			args:     []string{"solve", "--preset", "Default"},
			expected: `"Default","25","14.95","24.9975","0.0025","12","converged"`,
		},
		{
			name:     "preset with flag override",
			args:     []string{"solve", "-p", "ThirdParty", "--third-party-fee", "0"},
			expected: `"ThirdParty","25000","19857.14","24999.997","0.003","18","converged"`,
		},
		{
			name: "iteration limit",
			args: []string{"solve", "--max-budget", "25", "--in-house", "1", "--in-house", "1", "--third-party", "1,1",
				"--agency-fee", "5", "--third-party-fee", "5", "--hour-cost", "5", "--max-iterations", "3"},
			expected: `"request","25","11.78","21.669","3.331","3","iteration_limit"`,
		},
		{
			name:     "over budget",
			args:     []string{"solve", "--max-budget", "10", "--in-house", "5", "--third-party", "5"},
			expected: `"request","10","0","10","0","0","no_headroom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "-o", "csv")...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != 2 {
				t.Fatalf("expected header and one row, got %q", out)
			}
			if lines[1] != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, lines[1])
			}
		})
	}
}

func TestSolveCommandConfigFile(t *testing.T) {
	path := writeConfig(t, `output:
  format: json
request:
  preset: NoInHouse
  maxIterations: 40
`)

	out, err := execute(t, "solve", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []output.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", out, err)
	}
	if len(entries) != 1 || entries[0].Name != "NoInHouse" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	testutil.AssertDecimal(t, "NewAdBudget", entries[0].Result.NewAdBudget, "86.19")
	if entries[0].Input.MaxIterations == nil || *entries[0].Input.MaxIterations != 40 {
		t.Errorf("expected maxIterations 40 from the config file, got %v", entries[0].Input.MaxIterations)
	}
}

func TestSolveCommandDebugLogsEachIteration(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "adbudget.log")
	tests := []struct {
		name   string
		config string
		args   []string
	}{
		{"debug flag", "logging:\n  outputFile: " + logPath + "\n", []string{"--debug"}},
		{"solver.debug setting", "logging:\n  outputFile: " + logPath + "\nsolver:\n  debug: true\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.RemoveAll(logPath); err != nil {
				t.Fatalf("failed to reset log file: %v", err)
			}
			path := writeConfig(t, tt.config)

			// No --log-level, so the logger runs at its default level.
			cmd := newRootCmd()
			var stdout, stderr bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(append([]string{"solve", "--config", path, "--preset", "Default"}, tt.args...))
			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			logs, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			if n := strings.Count(string(logs), "goal seek iteration"); n != 12 {
				t.Errorf("expected 12 iteration records, got %d\n%s", n, logs)
			}
		})
	}
}

func TestSolveCommandPretty(t *testing.T) {
	out, err := execute(t, "solve", "--preset", "HighBudgetLowGuess")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--- Results for HighBudgetLowGuess ---", "$95,238,042,528.57", "$100,000,000,000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestSolveCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "unknown preset", args: []string{"solve", "--preset", "Nope"}, contains: "unknown preset"},
		{name: "bad output format", args: []string{"solve", "-o", "xml"}, contains: "expected output format"},
		{name: "bad decimal flag", args: []string{"solve", "--max-budget", "lots"}, contains: "invalid decimal"},
		{name: "missing explicit config", args: []string{"solve", "--config", filepath.Join(t.TempDir(), "missing.yaml")}, contains: "error reading config file"},
		{name: "extra argument", args: []string{"solve", "extra"}, contains: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 presets, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "Default") || !strings.Contains(lines[0], "$25.00") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestPresetsCommandSolve(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("..", "..", "internal", "presets", "testdata", "presets.toml"))
	if err != nil {
		t.Fatalf("failed to resolve presets path: %v", err)
	}
	path := writeConfig(t, "presetsFile: "+abs+"\n")

	out, err := execute(t, "presets", "--solve", "--config", path, "-o", "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header and 7 rows, got %q", out)
	}
	expected := map[string]string{
		"Default":            `"Default","25","14.95","24.9975"`,
		"Empty":              `"Empty","0","0","0"`,
		"HighBudgetLowGuess": `"HighBudgetLowGuess","100000000000","95238042528.57","99999999999.9985"`,
		"NoInHouse":          `"NoInHouse","500","86.19","499.9995"`,
		"ThirdParty":         `"ThirdParty","25000","12967.74","24999.997"`,
	}
	for name, prefix := range expected {
		found := false
		for _, line := range lines[1:] {
			if strings.HasPrefix(line, prefix) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing row for %s in\n%s", name, out)
		}
	}
}

func TestSolveAllKeepsNameOrder(t *testing.T) {
	conf := config.Configuration{}
	catalog, err := conf.Catalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := solveAll(catalog, testutil.IntPtr(3))
	names := catalog.Names()
	if len(entries) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(entries))
	}
	for i, entry := range entries {
		if entry.Name != names[i] {
			t.Errorf("entry %d: expected %s, got %s", i, names[i], entry.Name)
		}
		if entry.Result.Iterations > 3 {
			t.Errorf("%s: expected at most 3 iterations, got %d", entry.Name, entry.Result.Iterations)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("expected %s, got %q", version, out)
	}
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantError bool
	}{
		{name: "defaults", config: config.LoggingConfig{}},
		{name: "console debug", config: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", config: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", config: config.LoggingConfig{Level: "loud"}, wantError: true},
		{name: "invalid format", config: config.LoggingConfig{Format: "xml"}, wantError: true},
		{name: "output file", config: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "adbudget.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			logger.Info("test message")
			_ = logger.Sync()
			if tt.config.OutputFile != "" {
				data, err := os.ReadFile(tt.config.OutputFile)
				if err != nil {
					t.Fatalf("failed to read log file: %v", err)
				}
				if !strings.Contains(string(data), "test message") {
					t.Errorf("expected log file to contain the message, got %q", data)
				}
			}
		})
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	cfg, err := server.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runServer(ctx, zap.NewNop(), cfg); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRunServerBadPresetsFile(t *testing.T) {
	cfg, _ := server.LoadConfig("")
	cfg.PresetsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if err := runServer(context.Background(), zap.NewNop(), cfg); err == nil {
		t.Error("expected error for missing presets file")
	}
}
