package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-tagx/internal/build"
	"github.com/grindlemire/go-tagx/internal/console"
)

func newCheckCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path...]",
		Short: "Check .tgx files without generating code",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolver, err := loadProject(g)
			if err != nil {
				return err
			}
			files, err := build.CollectTemplates(defaultPaths(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g.verbose {
				fmt.Fprintln(out, console.FormatInfoMessage(fmt.Sprintf("checking %d template(s)", len(files))))
			}
			results, err := build.New(cfg, resolver).Run(cmd.Context(), files, false)
			report(out, results)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, console.FormatSuccessMessage(fmt.Sprintf("all %d template(s) passed checks", len(results))))
			return nil
		},
	}
}
