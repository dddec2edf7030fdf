package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/config"
	"github.com/dusk-indust/stitch/internal/logging"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stitch",
		Short: "Stitch short visual dialogs into deep multi-context dialogs",
		Long: `stitch builds deep visual dialogs by interleaving short dialogs about
different images. A dialog is split at a context recall turn, another
dialog is spliced in, and the first resumes where it left off. Only
dialogs whose revealed attributes cannot be confused are stitched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", ".", "directory holding stitch.yml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newMergeCmd(),
		newGenerateCmd(),
		newAnalyzeCmd(),
		newIndexCmd(),
		newShowCmd(),
		newServeMCPCmd(),
	)
	return rootCmd
}

// env is what every command needs from the global flags.
type env struct {
	cfg    *config.ProjectConfig
	logger zerolog.Logger
}

// loadEnv reads the project config and builds the logger. Log output goes
// to stderr so stdout stays free for command output and the MCP transport.
func loadEnv(cmd *cobra.Command) (*env, error) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stitch version %s\n", version)
		},
	}
}
