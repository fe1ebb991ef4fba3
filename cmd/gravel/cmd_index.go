package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/index"
	"github.com/dhamidi/gravel/project"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [dir]",
		Short: "Record the project's types and supertypes in the index database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := projectDir
			if len(args) > 0 {
				dir = args[0]
			}
			p, err := project.LoadFrom(dir)
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Scanning " + p.RootDir)
			c := p.Codebase()
			if err := c.ScanAll(); err != nil {
				spinner.Fail(err.Error())
				return err
			}

			ix, err := index.Open(p.IndexPath)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			defer ix.Close()

			spinner.UpdateText(fmt.Sprintf("Indexing %d files", len(c.Paths())))
			n, err := ix.IndexAll(cmd.Context(), c)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success(fmt.Sprintf("Indexed %d files into %s", n, p.IndexPath))
			return nil
		},
	}
}
