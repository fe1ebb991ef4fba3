package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gravel/format"
	"github.com/dhamidi/gravel/groovy/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var includePositions bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Groovy file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read groovy file: %w", err)
			}

			node := parser.Parse(data, parser.WithFile(filename))
			if node == nil {
				return fmt.Errorf("parse %s: no syntax tree", filename)
			}

			switch outputFormat {
			case "json":
				if err := format.NewASTJSONEncoder(os.Stdout).Encode(node); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case "yaml":
				if err := format.NewASTYAMLEncoder(os.Stdout).Encode(node); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
			case "text":
				if includePositions {
					fmt.Println(node.StringWithPositions())
				} else {
					fmt.Println(node.String())
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			for _, errNode := range parser.Errors(node) {
				msg := "syntax error"
				if errNode.Error != nil {
					msg = errNode.Error.Message
				}
				printWarning("%s:%s: %s", filename, errNode.Span.Start, msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include positions in text output")

	return cmd
}
