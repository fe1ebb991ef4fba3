package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file> <line:col>",
		Short: "Describe the declaration referenced at a position",
		Args:  cobra.ExactArgs(2),
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

			text := c.Hover(path, line, col)
			if text == "" {
				return fmt.Errorf("no declaration found at %s", args[1])
			}
			fmt.Println(text)
			if loc := c.Definition(path, line, col); loc != nil {
				fmt.Println(dimStyle.Sprintf("\n%s:%d:%d", loc.Path, loc.Span.Start.Line, loc.Span.Start.Column))
			}
			return nil
		},
	}
}
