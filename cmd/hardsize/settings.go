package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hardsize/internal/batch"
	"github.com/nvandessel/hardsize/internal/config"
	"github.com/nvandessel/hardsize/internal/hardsize"
	"github.com/nvandessel/hardsize/internal/logging"
)

// addSizingFlags registers the flags shared by run and extract.
func addSizingFlags(cmd *cobra.Command) {
	cmd.Flags().String("dictionaries", "", "Directory holding the per-version dictionaries")
	cmd.Flags().Bool("only-autosized", false, "Only replace fields still set to Autosize or Autocalculate")
	cmd.Flags().StringArray("scale", nil, "Multiply a field for every instance of a class, e.g. Coil:Cooling:Water:design_water_flow_rate=1.1 (repeatable)")
}

// loadConfig resolves configuration for a command.
// Order: defaults -> config files -> environment -> flags
func loadConfig(cmd *cobra.Command) (*config.HardsizeConfig, string, error) {
	root, _ := cmd.Flags().GetString("root")
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.HardsizeConfig
	var err error
	if configPath != "" {
		cfg, err = config.LoadWithFile(configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	if f := cmd.Flags().Lookup("dictionaries"); f != nil && f.Changed {
		cfg.Dictionary.Dir = f.Value.String()
	}
	if cmd.Flags().Changed("only-autosized") {
		cfg.Sizing.OnlyAutosized, _ = cmd.Flags().GetBool("only-autosized")
	}
	if cmd.Flags().Changed("scale") {
		specs, _ := cmd.Flags().GetStringArray("scale")
		for _, s := range specs {
			rule, err := parseScale(s)
			if err != nil {
				return nil, "", err
			}
			cfg.Sizing.Scale = append(cfg.Sizing.Scale, config.ScaleConfig{
				Class: rule.Class, Field: rule.Field, Multiplier: rule.Multiplier,
			})
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, root, nil
}

// parseScale parses Class:field=multiplier. Class names contain colons, so
// the field is whatever follows the last one.
func parseScale(s string) (hardsize.ScaleRule, error) {
	eq := strings.LastIndex(s, "=")
	colon := strings.LastIndex(s[:max(eq, 0)], ":")
	if eq < 0 || colon < 0 {
		return hardsize.ScaleRule{}, fmt.Errorf("invalid --scale %q: want Class:field=multiplier", s)
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(s[eq+1:]), 64)
	if err != nil {
		return hardsize.ScaleRule{}, fmt.Errorf("invalid --scale %q: %w", s, err)
	}
	rule := hardsize.ScaleRule{
		Class:      strings.TrimSpace(s[:colon]),
		Field:      strings.TrimSpace(s[colon+1 : eq]),
		Multiplier: m,
	}
	if err := rule.Validate(); err != nil {
		return hardsize.ScaleRule{}, fmt.Errorf("invalid --scale %q: %w", s, err)
	}
	return rule, nil
}

func scaleRules(cfg *config.HardsizeConfig) []hardsize.ScaleRule {
	rules := make([]hardsize.ScaleRule, 0, len(cfg.Sizing.Scale))
	for _, s := range cfg.Sizing.Scale {
		rules = append(rules, hardsize.ScaleRule{Class: s.Class, Field: s.Field, Multiplier: s.Multiplier})
	}
	return rules
}

// resolveDir anchors a relative directory at root.
func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

func newLogger(cmd *cobra.Command, cfg *config.HardsizeConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// batchOptions maps configuration onto the batch driver.
func batchOptions(cfg *config.HardsizeConfig, root string, logger *slog.Logger, decisions *logging.DecisionLogger) batch.Options {
	return batch.Options{
		Root:              root,
		DictionaryDir:     resolveDir(root, cfg.Dictionary.Dir),
		Suffix:            cfg.Output.Suffix,
		Indent:            cfg.Output.Indent,
		Recursive:         cfg.Batch.Recursive,
		Jobs:              cfg.Batch.Jobs,
		OnlyAutosized:     cfg.Sizing.OnlyAutosized,
		DisableDirectives: cfg.Sizing.DisableDirectives,
		Scale:             scaleRules(cfg),
		Logger:            logger,
		Decisions:         decisions,
	}
}
