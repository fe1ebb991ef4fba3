package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/gravel/index"
	"github.com/dhamidi/gravel/project"
)

func newSubtypesCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "subtypes <name>",
		Short: "List indexed types that directly extend or implement a type",
		Long: `List indexed types that directly extend or implement a type. The name
may be qualified or simple; simple names also match unresolved references.
Run "gravel index" first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.LoadFrom(projectDir)
			if err != nil {
				return err
			}
			ix, err := index.Open(p.IndexPath)
			if err != nil {
				return err
			}
			defer ix.Close()

			types, err := ix.Subtypes(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch outputFormat {
			case "table":
				var rows [][]string
				for _, t := range types {
					rows = append(rows, []string{t.QualifiedName, t.Kind, t.File + ":" + strconv.Itoa(t.Line)})
				}
				return renderTable([]string{"Type", "Kind", "Location"}, rows, "no subtypes of "+args[0]+" indexed")
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(types)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(types)
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json, yaml)")

	return cmd
}
