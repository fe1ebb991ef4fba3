package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/project"
)

func newInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default " + project.FileName,
		Long: `Write a default ` + project.FileName + ` into the given directory, or the
current one. The project name defaults to the directory name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}

			path, err := project.Init(dir, name)
			if errors.Is(err, project.ErrExists) {
				printWarning("%s already exists in %s", project.FileName, dir)
				return nil
			}
			if err != nil {
				return err
			}
			printSuccess("created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "project name")

	return cmd
}
