package presets

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/adbudget/pkg/testutil"
)

func TestLoadFileYAML(t *testing.T) {
	catalog, err := LoadFile(filepath.Join("testdata", "presets.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 presets, got %d", catalog.Len())
	}

	weekend, ok := catalog.Get("Weekend")
	if !ok {
		t.Fatal("expected Weekend preset")
	}
	testutil.AssertDecimal(t, "MaxBudget", weekend.MaxBudget, "1000")
	if weekend.StartingGuess == nil {
		t.Fatal("expected starting guess")
	}
	testutil.AssertDecimal(t, "StartingGuess", *weekend.StartingGuess, "400")
	if len(weekend.InHouseAdBudgets) != 2 {
		t.Fatalf("expected 2 in-house ads, got %d", len(weekend.InHouseAdBudgets))
	}
	testutil.AssertDecimal(t, "ThirdPartyAdBudgets[0]", weekend.ThirdPartyAdBudgets[0], "50.25")
	testutil.AssertDecimal(t, "AgencyFeePercent", weekend.AgencyFeePercent, "7.5")
	testutil.AssertDecimal(t, "HourCost", weekend.HourCost, "40")
	if !weekend.NewAdIsThirdParty {
		t.Error("expected NewAdIsThirdParty")
	}
	if weekend.MaxIterations == nil || *weekend.MaxIterations != 80 {
		t.Errorf("expected maxIterations 80, got %v", weekend.MaxIterations)
	}

	override, _ := catalog.Get("Default")
	if override.StartingGuess != nil {
		t.Error("expected no starting guess when the file omits it")
	}
}

func TestLoadFileTOML(t *testing.T) {
	catalog, err := LoadFile(filepath.Join("testdata", "presets.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	launch, ok := catalog.Get("Launch")
	if !ok {
		t.Fatal("expected Launch preset")
	}
	testutil.AssertDecimal(t, "MaxBudget", launch.MaxBudget, "2500")
	testutil.AssertDecimal(t, "ThirdPartyAdBudgets[0]", launch.ThirdPartyAdBudgets[0], "125.5")
	testutil.AssertDecimal(t, "AgencyFeePercent", launch.AgencyFeePercent, "12.5")
	testutil.AssertDecimal(t, "ThirdPartyFeePercent", launch.ThirdPartyFeePercent, "20")
	if launch.MaxIterations != nil {
		t.Errorf("expected no maxIterations, got %d", *launch.MaxIterations)
	}

	tiny, _ := catalog.Get("Tiny")
	testutil.AssertDecimal(t, "MaxBudget", tiny.MaxBudget, "0.05")
	if tiny.MaxIterations == nil || *tiny.MaxIterations != 10 {
		t.Errorf("expected maxIterations 10, got %v", tiny.MaxIterations)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains string
		notExist bool
	}{
		{name: "unsupported extension", path: "presets.json", contains: "unsupported preset file extension"},
		{name: "missing file", path: filepath.Join("testdata", "missing.yaml"), notExist: true},
		{name: "invalid yaml", path: filepath.Join("testdata", "invalid.yaml"), contains: "failed to decode YAML presets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if tt.notExist && !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("expected fs.ErrNotExist, got %v", err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		body        string
		expectLen   int
		expectError bool
	}{
		{name: "empty yaml", format: FormatYAML, body: "", expectLen: 0},
		{name: "yaml", format: FormatYAML, body: "presets:\n  A:\n    maxBudget: 5\n", expectLen: 1},
		{name: "toml", format: FormatTOML, body: "[presets.A]\nmaxBudget = 5\n[presets.B]\nmaxBudget = 6\n", expectLen: 2},
		{name: "bad decimal", format: FormatYAML, body: "presets:\n  A:\n    maxBudget: lots\n", expectError: true},
		{name: "unknown format", format: "ini", body: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := Decode(strings.NewReader(tt.body), tt.format)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if catalog.Len() != tt.expectLen {
				t.Errorf("expected %d presets, got %d", tt.expectLen, catalog.Len())
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"presets.yaml": FormatYAML,
		"presets.YML":  FormatYAML,
		"a/b.toml":     FormatTOML,
	}
	for path, expected := range tests {
		got, err := FormatFromPath(path)
		if err != nil {
			t.Errorf("%s: unexpected error %v", path, err)
			continue
		}
		if got != expected {
			t.Errorf("%s: expected %s, got %s", path, expected, got)
		}
	}
}
