package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/groovy/codebase"
	"github.com/dhamidi/gravel/project"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server on stdio",
		Long: `Start a language server on stdio providing completion, go to definition,
hover, document symbols and syntax diagnostics for Groovy sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rootDir string
			var opts []codebase.Option
			if p, err := project.LoadFrom(projectDir); err == nil && p.File != "" {
				rootDir = p.RootDir
				opts = p.CodebaseOptions()
			}
			return codebase.NewLSPServer(version, rootDir, opts...).RunStdio()
		},
	}
}
