package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hardsize/internal/batch"
	"github.com/nvandessel/hardsize/internal/constants"
	"github.com/nvandessel/hardsize/internal/logging"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Hardsize every model in the working directory",
		Long: `Find every *.epJSON model in the working directory, pair it with the
engine output of the same name (*.sql) and write the hardsized copy next
to it. Models without results are skipped. A model whose engine version
has no dictionary stops the whole run.

Examples:
  hardsize run
  hardsize run --root ./runs --recursive --jobs 4
  hardsize run --scale Coil:Cooling:DX:SingleSpeed:gross_rated_total_cooling_capacity=1.15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, root, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("suffix") {
				cfg.Output.Suffix, _ = cmd.Flags().GetString("suffix")
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Batch.Jobs, _ = cmd.Flags().GetInt("jobs")
			}
			if cmd.Flags().Changed("recursive") {
				cfg.Batch.Recursive, _ = cmd.Flags().GetBool("recursive")
			}
			if keep, _ := cmd.Flags().GetBool("keep-directives"); keep {
				cfg.Sizing.DisableDirectives = false
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger := newLogger(cmd, cfg)
			decisions := logging.NewDecisionLogger(root, cfg.Logging.Level)
			defer decisions.Close()
			if decisions != nil {
				logger.Debug("decision log enabled", "path", decisions.Path())
			}

			report, runErr := batch.Run(cmd.Context(), batchOptions(cfg, root, logger, decisions))
			if report != nil {
				if err := printReport(cmd.OutOrStdout(), report, jsonOut); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if n := report.Count(constants.StatusFailed); n > 0 {
				return fmt.Errorf("%d of %d documents failed", n, len(report.Documents))
			}
			return nil
		},
	}

	addSizingFlags(cmd)
	cmd.Flags().String("suffix", "", "Suffix appended to output file stems (default _out)")
	cmd.Flags().Int("jobs", 0, "Documents processed at once (default 1)")
	cmd.Flags().Bool("recursive", false, "Search subdirectories for models")
	cmd.Flags().Bool("keep-directives", false, "Keep Sizing:System and Sizing:Plant and their SimulationControl flags")

	return cmd
}

func printReport(w io.Writer, report *batch.Report, jsonOut bool) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(report)
	}

	if len(report.Documents) == 0 {
		fmt.Fprintln(w, "No epJSON models found.")
		return nil
	}

	width := 0
	for _, d := range report.Documents {
		width = max(width, len(d.Document))
	}
	for _, d := range report.Documents {
		fmt.Fprintf(w, "  %-7s  %-*s  %s\n", d.Status, width, d.Document, reportDetail(d))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Hardsized %d of %d documents (%d skipped, %d failed)\n",
		report.Count(constants.StatusWritten), len(report.Documents),
		report.Count(constants.StatusSkipped), report.Count(constants.StatusFailed))
	return nil
}

func reportDetail(d batch.Result) string {
	if d.Status != constants.StatusWritten {
		return d.Reason
	}
	detail := fmt.Sprintf("-> %s (%d fields", d.Output, d.FieldsWritten)
	if len(d.DirectivesRemoved) > 0 {
		detail += ", removed " + strings.Join(d.DirectivesRemoved, ", ")
	}
	return detail + ")"
}
