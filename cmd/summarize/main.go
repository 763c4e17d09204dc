package main

import (
	"fmt"
	"os"

	"summymail/internal/config"
	"summymail/internal/display"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	jsonOutput bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "summarize",
	Short:         "summarize - Email thread summarizer",
	Long:          "Summarize a pasted email thread and extract action items for Eduardo Mangarelli.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsConfig(cmd) {
			return nil
		}

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		return nil
	},
}

// needsConfig reports whether cmd ends up calling the model
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "summarize version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		display.ErrorMsg(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
