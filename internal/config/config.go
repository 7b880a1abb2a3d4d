// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/iwvelando/adbudget/internal/presets"
	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/internal/telemetry"
	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for adbudget.
type Configuration struct {
	Logging     LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig     `yaml:"output,omitempty" mapstructure:"output"`
	Solver      SolverConfig     `yaml:"solver,omitempty" mapstructure:"solver"`
	Tracing     telemetry.Config `yaml:"tracing,omitempty" mapstructure:"tracing"`
	PresetsFile string           `yaml:"presetsFile,omitempty" mapstructure:"presetsFile"`
	Request     RequestConfig    `yaml:"request,omitempty" mapstructure:"request"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// SolverConfig holds settings applied to every solve.
type SolverConfig struct {
	// MaxIterations is used when neither the request nor its preset sets one.
	MaxIterations *int `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
	// Debug logs every goal seek iteration at debug level.
	Debug bool `yaml:"debug,omitempty" mapstructure:"debug"`
}

// RequestConfig describes the solve to run. When Preset is set the named
// preset is the base and only the fields present in the file or environment
// replace its values.
type RequestConfig struct {
	Preset       string `yaml:"preset,omitempty" mapstructure:"preset"`
	solver.Input `yaml:",inline" mapstructure:",squash"`

	fields []string
}

// Fields returns the request fields that were explicitly configured.
func (r RequestConfig) Fields() []string {
	return append([]string(nil), r.fields...)
}

// envKeys are bound explicitly so environment overrides work even when the
// key is absent from the config file.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.outputFile",
	"output.format",
	"solver.maxIterations",
	"solver.debug",
	"tracing.enabled",
	"tracing.endpoint",
	"tracing.insecure",
	"presetsFile",
	"request.preset",
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with ADBUDGET_
// override file values, e.g. ADBUDGET_REQUEST_MAXBUDGET=500.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return decode(v)
}

// LoadEnvironment builds a configuration from environment variables alone.
func LoadEnvironment() (*Configuration, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	for _, field := range AllFields {
		_ = v.BindEnv("request." + field)
	}
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		DecimalHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	for _, field := range AllFields {
		if v.IsSet("request." + field) {
			configuration.Request.fields = append(configuration.Request.fields, field)
		}
	}

	return &configuration, nil
}

// DecimalHookFunc returns a mapstructure hook that converts strings and
// numbers into decimal.Decimal values.
func DecimalHookFunc() mapstructure.DecodeHookFuncType {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType {
			return data, nil
		}
		switch value := data.(type) {
		case decimal.Decimal:
			return value, nil
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid decimal %q: %w", value, err)
			}
			return d, nil
		case int:
			return decimal.NewFromInt(int64(value)), nil
		case int32:
			return decimal.NewFromInt32(value), nil
		case int64:
			return decimal.NewFromInt(value), nil
		case float32:
			return decimal.NewFromFloat32(value), nil
		case float64:
			return decimal.NewFromFloat(value), nil
		default:
			return data, nil
		}
	}
}

// Catalog returns the built-in presets extended with any presets loaded
// from PresetsFile.
func (c *Configuration) Catalog() (*presets.Catalog, error) {
	catalog := presets.Builtin()
	if c.PresetsFile == "" {
		return catalog, nil
	}
	extra, err := presets.LoadFile(c.PresetsFile)
	if err != nil {
		return nil, err
	}
	catalog.Merge(extra)
	return catalog, nil
}
