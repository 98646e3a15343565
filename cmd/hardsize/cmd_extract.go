package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hardsize/internal/batch"
	"github.com/nvandessel/hardsize/internal/pathutil"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <model.epJSON> [results.sql]",
		Short: "Print the sizing values that would be written to a model",
		Long: `Build the sizing map for one model without writing anything and print
it as JSON, keyed by class, instance name and field. The results file
defaults to the .sql next to the model. Scale rules are applied.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, root, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			model := args[0]
			resultsPath := pathutil.ResultsPath(model)
			if len(args) == 2 {
				resultsPath = args[1]
			}

			opts := batchOptions(cfg, root, newLogger(cmd, cfg), nil)
			sizing, err := batch.ExtractFile(cmd.Context(), model, resultsPath, opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if jsonOut, _ := cmd.Flags().GetBool("json"); !jsonOut {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(sizing)
		},
	}

	addSizingFlags(cmd)
	return cmd
}
