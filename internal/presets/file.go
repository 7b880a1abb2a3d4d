package presets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iwvelando/adbudget/internal/solver"
	"gopkg.in/yaml.v3"
)

// Preset file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// File is the on-disk shape of a preset file:
//
//	presets:
//	  Weekend:
//	    maxBudget: 1000
//	    inHouseAdBudgets: [100, 200]
type File struct {
	Presets map[string]solver.Input `yaml:"presets" toml:"presets"`
}

// FormatFromPath infers a preset file format from its extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported preset file extension %q", filepath.Ext(path))
	}
}

// LoadFile reads a YAML or TOML preset file into a new catalog.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset file %s: %w", path, err)
	}
	defer f.Close()

	catalog, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load preset file %s: %w", path, err)
	}
	return catalog, nil
}

// Decode parses presets from r in the given format.
func Decode(r io.Reader, format string) (*Catalog, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML presets: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode TOML presets: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported preset format %q", format)
	}

	catalog := NewCatalog()
	for name, in := range file.Presets {
		if err := catalog.Add(name, in); err != nil {
			return nil, fmt.Errorf("invalid preset: %w", err)
		}
	}
	return catalog, nil
}
