package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-tagx/internal/build"
)

func newMapCmd() *cobra.Command {
	var at, generated string

	cmd := &cobra.Command{
		Use:   "map <template>",
		Short: "Translate positions between a template and its generated file",
		Long: `Translate positions between a template and its generated file using
the source map written by generate.

Without flags every mapping is listed. --at translates a template position,
--generated translates a position in the generated file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sm, err := build.LoadSourceMap(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case at != "":
				line, col, err := parsePosition(at)
				if err != nil {
					return err
				}
				gl, gc, ok := sm.ToGenerated(line, col)
				if !ok {
					return fmt.Errorf("%s:%d:%d is not mapped", sm.SourceFile, line, col)
				}
				fmt.Fprintf(out, "%s:%d:%d\n", sm.GeneratedFile, gl, gc)

			case generated != "":
				line, col, err := parsePosition(generated)
				if err != nil {
					return err
				}
				dl, dc, ok := sm.ToDocument(line, col)
				if !ok {
					return fmt.Errorf("%s:%d:%d is not mapped", sm.GeneratedFile, line, col)
				}
				fmt.Fprintf(out, "%s:%d:%d\n", sm.SourceFile, dl, dc)

			default:
				for _, m := range sm.Mappings {
					fmt.Fprintf(out, "%s:%d:%d -> %s:%d:%d (%d bytes)\n",
						sm.SourceFile, m.Document.Line, m.Document.Column,
						sm.GeneratedFile, m.Generated.Line, m.Generated.Column, m.Generated.Length)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "template position as line:col")
	cmd.Flags().StringVar(&generated, "generated", "", "generated file position as line:col")
	cmd.MarkFlagsMutuallyExclusive("at", "generated")
	return cmd
}

// parsePosition parses "line:col" or "line" (column 1).
func parsePosition(s string) (int, int, error) {
	lineText, colText, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid position %q: want line:col", s)
	}
	col := 1
	if hasCol {
		col, err = strconv.Atoi(colText)
		if err != nil || col < 1 {
			return 0, 0, fmt.Errorf("invalid position %q: want line:col", s)
		}
	}
	return line, col, nil
}
