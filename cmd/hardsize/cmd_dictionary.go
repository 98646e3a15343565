package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hardsize/internal/dictionary"
)

func newDictionaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Inspect field dictionaries",
		Long: `Field dictionaries map each component class to pairs of result
description and epJSON field key, one CSV file per engine version:

  Fan:VariableVolume,Design Size Maximum Flow Rate,maximum_flow_rate

Examples:
  hardsize dictionary list
  hardsize dictionary show 22.1
  hardsize dictionary show 22.1 --class Fan:VariableVolume`,
	}
	cmd.PersistentFlags().String("dictionaries", "", "Directory holding the per-version dictionaries")

	cmd.AddCommand(
		newDictionaryListCmd(),
		newDictionaryShowCmd(),
	)

	return cmd
}

func newDictionaryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List engine versions that have a dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, root, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := resolveDir(root, cfg.Dictionary.Dir)

			versions, err := dictionary.Versions(dir)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"dir":      dir,
					"versions": versions,
				})
			}

			if len(versions) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No dictionaries in %s\n", dir)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dictionaries in %s:\n", dir)
			for _, v := range versions {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", v, dictionary.FileName(v))
			}
			return nil
		},
	}
}

func newDictionaryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <version>",
		Short: "Show the field mappings for an engine version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			class, _ := cmd.Flags().GetString("class")

			cfg, root, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dict, err := dictionary.LoadVersion(resolveDir(root, cfg.Dictionary.Dir), args[0])
			if err != nil {
				return err
			}

			classes := dict.Classes()
			if class != "" {
				if !dict.Has(class) {
					return fmt.Errorf("class %s not in dictionary %s", class, args[0])
				}
				classes = []string{class}
			}

			if jsonOut {
				out := make(map[string][]dictionary.FieldPair, len(classes))
				for _, c := range classes {
					out[c] = dict.Pairs(c)
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			w := cmd.OutOrStdout()
			for _, c := range classes {
				fmt.Fprintln(w, c)
				for _, p := range dict.Pairs(c) {
					fmt.Fprintf(w, "  %s -> %s\n", p.Description, p.Key)
				}
			}
			if class == "" {
				fmt.Fprintf(w, "\n%d classes\n", len(classes))
			}
			return nil
		},
	}

	cmd.Flags().String("class", "", "Only show this component class")
	return cmd
}
