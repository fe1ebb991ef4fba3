package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gravel/project"
)

const version = "0.1.0"

var (
	verbosity  int
	projectDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gravel",
		Short:         "Scope and hierarchy tooling for Groovy sources",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := verbosity
			if p, err := project.LoadFrom(projectDir); err == nil && p.LogLevel > level {
				level = p.LogLevel
			}
			commonlog.Configure(level, nil)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "directory to look for "+project.FileName+" from")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newSupersCmd())
	rootCmd.AddCommand(newScopeCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newSubtypesCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
