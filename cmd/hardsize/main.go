package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hardsize",
		Short: "Hardsize EnergyPlus epJSON models from their sizing results",
		Long: `hardsize replaces autosized fields in EnergyPlus epJSON models with the
values the engine computed, read from the ComponentSizes table of the
paired SQLite output, and switches off the sizing directives so the
model reruns with fixed sizes.

Each office.epJSON is paired with office.sql in the same directory and
written to office_out.epJSON. The field dictionary for the model's
engine version (dictionaries/22-1.csv for 22.1) maps result
descriptions to epJSON field keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Working directory holding the models")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.hardsize/config.yaml, then ./hardsize.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newExtractCmd(),
		newDictionaryCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// signalContext returns a context canceled on the first interrupt, so a
// batch stops between documents instead of mid-write.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
