package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/format"
	"github.com/dhamidi/gravel/groovy"
)

func newSupersCmd() *cobra.Command {
	var outputFormat string
	var transitive bool

	cmd := &cobra.Command{
		Use:   "supers <file>",
		Short: "List the supertypes of each type defined in a file",
		Long: `List the supertypes of each type defined in a file, as declared or
implied: classes and enums without extends get java.lang.Object.
References are resolved against the project sources.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadCodebase(args[0])
			if err != nil {
				return err
			}
			f := c.GetFile(mustAbs(args[0]))
			if f == nil {
				return fmt.Errorf("%s: not a groovy source", args[0])
			}

			if outputFormat == "table" {
				return renderSupersTable(f.Types, c.ResolveType, c.Supers, transitive)
			}
			enc, ok := format.New(outputFormat, os.Stdout, c.ResolveType)
			if !ok {
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			for _, td := range f.Types {
				if err := enc.Encode(td); err != nil {
					return fmt.Errorf("encode %s: %w", td.Name(), err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json, yaml, line)")
	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "also list indirect supertypes found in the project")

	return cmd
}

func renderSupersTable(
	types []*groovy.TypeDefinition,
	resolve format.Resolver,
	supers func(*groovy.TypeDefinition) []*groovy.TypeDefinition,
	transitive bool,
) error {
	var rows [][]string
	for _, td := range types {
		name := td.QualifiedName()
		if name == "" {
			name = td.Name()
		}
		direct := make(map[*groovy.TypeDefinition]bool)
		for i, ref := range td.SuperTypes() {
			origin := "declared"
			if ref.IsImplicit() {
				origin = "implicit"
			}
			resolved := dimStyle.Sprint("unresolved")
			if def := resolve(ref); def != nil {
				resolved = def.QualifiedName()
				direct[def] = true
			}
			rows = append(rows, []string{name, strconv.Itoa(i), ref.Text(), resolved, origin})
		}
		if !transitive {
			continue
		}
		for _, st := range supers(td) {
			if direct[st] {
				continue
			}
			rows = append(rows, []string{name, "", st.Name(), st.QualifiedName(), "inherited"})
		}
	}
	return renderTable([]string{"Type", "#", "Supertype", "Resolved", "Origin"}, rows, "no type definitions")
}
