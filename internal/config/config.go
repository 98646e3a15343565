// Package config provides unified configuration loading for hardsize.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/hardsize/internal/constants"
	"gopkg.in/yaml.v3"
)

// ProjectConfigFile is the per-directory config file name.
const ProjectConfigFile = "hardsize.yaml"

// HardsizeConfig contains all hardsize configuration settings.
type HardsizeConfig struct {
	// Dictionary locates the field dictionaries.
	Dictionary DictionaryConfig `json:"dictionary" yaml:"dictionary"`

	// Output controls how hardsized documents are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Sizing controls extraction and application.
	Sizing SizingConfig `json:"sizing" yaml:"sizing"`

	// Batch controls document discovery and fan-out.
	Batch BatchConfig `json:"batch" yaml:"batch"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DictionaryConfig locates the per-version dictionary CSV files.
type DictionaryConfig struct {
	// Dir is the directory holding files named like 22-1.csv.
	// Relative paths resolve against the working directory.
	Dir string `json:"dir" yaml:"dir"`
}

// OutputConfig controls output naming and formatting.
type OutputConfig struct {
	// Suffix is appended to the input stem, e.g. office.epJSON -> office_out.epJSON.
	Suffix string `json:"suffix" yaml:"suffix"`

	// Indent is the JSON indentation unit.
	Indent string `json:"indent" yaml:"indent"`
}

// SizingConfig controls what gets hardsized.
type SizingConfig struct {
	// DisableDirectives removes Sizing:System and Sizing:Plant and switches
	// off their SimulationControl flags.
	DisableDirectives bool `json:"disable_directives" yaml:"disable_directives"`

	// OnlyAutosized leaves fields that already hold a number alone.
	OnlyAutosized bool `json:"only_autosized" yaml:"only_autosized"`

	// Scale multiplies extracted values before they are written.
	Scale []ScaleConfig `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ScaleConfig is one multiplier rule for a class field.
type ScaleConfig struct {
	Class      string  `json:"class" yaml:"class"`
	Field      string  `json:"field" yaml:"field"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// BatchConfig controls discovery and parallelism.
type BatchConfig struct {
	// Recursive descends into subdirectories when discovering documents.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Jobs is the number of documents processed at once.
	Jobs int `json:"jobs" yaml:"jobs"`
}

// LoggingConfig configures hardsize's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or "trace".
	// "debug" enables decision logging to hardsize.decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// Format selects the stderr handler: "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a HardsizeConfig with sensible defaults.
func Default() *HardsizeConfig {
	return &HardsizeConfig{
		Dictionary: DictionaryConfig{
			Dir: constants.DefaultDictionaryDir,
		},
		Output: OutputConfig{
			Suffix: constants.DefaultOutputSuffix,
			Indent: constants.DefaultIndent,
		},
		Sizing: SizingConfig{
			DisableDirectives: true,
			OnlyAutosized:     false,
		},
		Batch: BatchConfig{
			Recursive: false,
			Jobs:      constants.DefaultJobs,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.hardsize/config.yaml -> <workDir>/hardsize.yaml -> environment variables
func Load(workDir string) (*HardsizeConfig, error) {
	config := Default()

	// Try to load from the user config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".hardsize", "config.yaml")
		if err := mergeFile(config, configPath); err != nil {
			return nil, err
		}
	}

	// Project file overrides the user file
	if workDir != "" {
		if err := mergeFile(config, filepath.Join(workDir, ProjectConfigFile)); err != nil {
			return nil, err
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*HardsizeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Dictionary.Dir = expandEnvVars(config.Dictionary.Dir)

	return config, nil
}

// LoadWithFile loads defaults, the given file, then environment variables.
// Used when the config path is given explicitly on the command line.
func LoadWithFile(path string) (*HardsizeConfig, error) {
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// mergeFile overlays the YAML file at path onto config. A missing file is not an error.
func mergeFile(config *HardsizeConfig, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	config.Dictionary.Dir = expandEnvVars(config.Dictionary.Dir)
	return nil
}

// Validate checks that the configuration is valid.
func (c *HardsizeConfig) Validate() error {
	if c.Batch.Jobs < 1 {
		return fmt.Errorf("batch.jobs must be at least 1, got %d", c.Batch.Jobs)
	}

	if c.Output.Suffix == "" {
		return fmt.Errorf("output.suffix must not be empty")
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix must not contain path separators: %q", c.Output.Suffix)
	}
	if c.Output.Indent == "" || strings.Trim(c.Output.Indent, " \t") != "" {
		return fmt.Errorf("output.indent must be one or more spaces or tabs: %q", c.Output.Indent)
	}

	for i, s := range c.Sizing.Scale {
		if s.Class == "" || s.Field == "" {
			return fmt.Errorf("sizing.scale[%d]: class and field are required", i)
		}
		if s.Multiplier <= 0 {
			return fmt.Errorf("sizing.scale[%d]: multiplier must be positive, got %g", i, s.Multiplier)
		}
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *HardsizeConfig) {
	if v := os.Getenv("HARDSIZE_DICTIONARY_DIR"); v != "" {
		config.Dictionary.Dir = v
	}

	if v := os.Getenv("HARDSIZE_OUTPUT_SUFFIX"); v != "" {
		config.Output.Suffix = v
	}

	if v := os.Getenv("HARDSIZE_ONLY_AUTOSIZED"); v != "" {
		config.Sizing.OnlyAutosized = v == "true" || v == "1"
	}

	if v := os.Getenv("HARDSIZE_RECURSIVE"); v != "" {
		config.Batch.Recursive = v == "true" || v == "1"
	}

	if v := os.Getenv("HARDSIZE_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Batch.Jobs = n
		}
	}

	if v := os.Getenv("HARDSIZE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("HARDSIZE_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
