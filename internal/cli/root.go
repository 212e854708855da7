package cli

import (
	"fmt"
	"runtime"

	"github.com/anime-shed/palette-inspector/internal/logger"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Without a subcommand it serves the web app.
func NewRootCommand(version string) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "palette",
		Short: "Seasonal color analysis from selfies",
		Long: `Palette Inspector walks you through uploading 2-3 selfies, runs a color
analysis and shows the season, natural colors, and the colors to wear and avoid.

Run it as a web app with "serve" or analyze photos straight from the terminal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") {
				logger.SetLevel(logLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newVersionCommand(version))

	return rootCmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" || version == "dev" {
				version = "development"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Palette Inspector %s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
