package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/pkg/testutil"
)

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration(filepath.Join("testdata", "warnings.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	warnings := config.ValidateConfiguration()
	expected := []string{
		"request.maxBudget of -10 is negative",
		"request.inHouseAdBudgets[1] of -2 is negative",
		"request.thirdPartyAdBudgets[0] of -3 is negative",
		"request.agencyFeePercent of 150 is outside 0-100",
		"request.thirdPartyFeePercent of -1 is outside 0-100",
		"request.hourCost of -5 is negative",
		"request.maxIterations of -1 is negative",
		"solver.maxIterations is 0",
	}
	if len(warnings) != len(expected) {
		t.Fatalf("expected %d warnings, got %d: %v", len(expected), len(warnings), warnings)
	}
	for i, want := range expected {
		if !strings.HasPrefix(warnings[i], want) {
			t.Errorf("warning %d: expected prefix %q, got %q", i, want, warnings[i])
		}
	}
}

func TestValidateConfigurationStartingGuess(t *testing.T) {
	tests := []struct {
		name      string
		maxBudget string
		guess     string
		warns     bool
	}{
		{name: "inside range", maxBudget: "25", guess: "10", warns: false},
		{name: "at max", maxBudget: "25", guess: "25", warns: false},
		{name: "above max", maxBudget: "25", guess: "30", warns: true},
		{name: "negative", maxBudget: "25", guess: "-1", warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Configuration{Request: RequestConfig{Input: solver.Input{
				MaxBudget:     testutil.Decimal(t, tt.maxBudget),
				StartingGuess: testutil.DecimalPtr(t, tt.guess),
			}}}
			warnings := config.ValidateConfiguration()
			if got := len(warnings) > 0; got != tt.warns {
				t.Errorf("expected warnings=%v, got %v", tt.warns, warnings)
			}
		})
	}
}

func TestValidateConfigurationClean(t *testing.T) {
	config, err := LoadConfiguration(filepath.Join("testdata", "adbudget.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
