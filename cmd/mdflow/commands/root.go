// Package commands provides the CLI commands for mdflow.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdflow-ai/mdflow/internal/agent"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

var exitCode int

var rootCmd = &cobra.Command{
	Use:   "mdflow <file|url> [flags] [positionals...]",
	Short: "mdflow - run markdown files as AI-agent scripts",
	Long: `mdflow executes markdown files as AI-agent scripts. A single file
combines YAML front matter (driver configuration), a natural-language
prompt body, and embedded import directives: @file, @glob, @file#symbol,
@url, inline !` + "`command`" + ` runs, and executable code fences.

The driver is named in the filename (task.claude.md runs claude) or with
--_command. Front matter compiles into driver flags; the expanded,
rendered body is handed over as the prompt.`,
	Version: Version,
	// The outer CLI forwards unknown flags to the driver untouched, so
	// flag parsing is disabled and arguments are split by hand.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			switch args[0] {
			case "help", "--help", "-h":
				return cmd.Help()
			case "--version":
				fmt.Printf("mdflow %s (%s)\n", Version, BuildTime)
				return nil
			}
		}
		exitCode = agent.Run(args)
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("mdflow %s (%s)\n", Version, BuildTime))
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(logsCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return exitCode
}
