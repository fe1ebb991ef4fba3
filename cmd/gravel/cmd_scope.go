package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/resolve"
)

func newScopeCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "scope <file> <line:col>",
		Short: "Show the declarations visible at a position",
		Long: `Show the declarations visible at a position, innermost first, including
members inherited from supertypes found in the project.

With --name only the declaration the name resolves to is shown.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, col, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			_, c, err := loadCodebase(args[0])
			if err != nil {
				return err
			}
			path := mustAbs(args[0])
			if c.GetFile(path) == nil {
				return fmt.Errorf("%s: not a groovy source", args[0])
			}

			var candidates []resolve.Candidate
			if name != "" {
				found := c.ResolveAt(path, line, col, name)
				if found == nil {
					return fmt.Errorf("%s is not visible at %s", name, args[1])
				}
				candidates = append(candidates, *found)
			} else {
				candidates = c.Scope(path, line, col)
			}

			items := pterm.LeveledList{{Level: 0, Text: fmt.Sprintf("%s:%d:%d", args[0], line, col)}}
			for _, cand := range candidates {
				items = append(items, pterm.LeveledListItem{Level: 1, Text: candidateText(cand)})
				if loc := c.FileOf(cand.Decl.Node()); loc != nil && loc.Path != path {
					items = append(items, pterm.LeveledListItem{Level: 2, Text: dimStyle.Sprint(loc.Path)})
				}
			}
			return renderTree(items)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "resolve a single name instead of listing the scope")

	return cmd
}

// candidateText renders a candidate as its kind, name and, where known,
// its declared signature with type arguments applied.
func candidateText(cand resolve.Candidate) string {
	kind := dimStyle.Sprint(cand.Decl.DeclKind().String())
	switch d := cand.Decl.(type) {
	case *groovy.Method:
		return kind + " " + d.String()
	case *groovy.Variable:
		if t := d.Type(); t != nil {
			return kind + " " + d.Name() + ": " + cand.Subst.Substitute(t).Text()
		}
	case *groovy.TypeDefinition:
		if qn := d.QualifiedName(); qn != "" {
			return kind + " " + qn
		}
	}
	return kind + " " + cand.Decl.Name()
}
