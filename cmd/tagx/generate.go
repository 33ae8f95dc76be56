package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/grindlemire/go-tagx/internal/build"
	"github.com/grindlemire/go-tagx/internal/console"
)

var (
	arrowFmt   = color.New(color.FgHiBlack).SprintFunc()
	pathFmt    = color.New(color.FgHiBlue).SprintFunc()
	skippedFmt = color.New(color.FgHiBlack).SprintfFunc()
)

func newGenerateCmd(g *globals) *cobra.Command {
	var designTime, watch bool

	cmd := &cobra.Command{
		Use:   "generate [path...]",
		Short: "Generate Go code from .tgx files",
		Long: `Generate Go code from .tgx files.

Paths may be files, directories (non-recursive) or ./... patterns.
Templates with errors are reported and left unwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolver, err := loadProject(g)
			if err != nil {
				return err
			}
			b := build.New(cfg, resolver)
			b.DesignTime = designTime
			paths := defaultPaths(args)
			out := cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runErr := generateAll(ctx, out, b, paths, g.verbose)
			if !watch {
				return runErr
			}
			if runErr != nil {
				fmt.Fprintln(out, console.FormatWarningMessage(fmt.Sprintf("initial generation failed: %v", runErr)))
			}

			fmt.Fprintln(out, console.FormatInfoMessage("watching for changes, press Ctrl+C to stop"))
			return build.Watch(ctx, paths, build.DefaultDebounce, func(changed []string) {
				if _, err := generateFiles(ctx, out, b, changed, g.verbose); err != nil && !errors.Is(err, build.ErrHasErrors) {
					fmt.Fprintln(out, console.FormatErrorMessage(err.Error()))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&designTime, "design-time", false, "emit design-time output with line directives")
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate when templates change")
	return cmd
}

func generateAll(ctx context.Context, out io.Writer, b *build.Builder, paths []string, verbose bool) error {
	files, err := build.CollectTemplates(paths)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintln(out, console.FormatInfoMessage(fmt.Sprintf("found %d template(s)", len(files))))
	}
	results, err := generateFiles(ctx, out, b, files, verbose)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, console.FormatSuccessMessage(fmt.Sprintf("generated %d file(s)", countWritten(results))))
	return nil
}

func generateFiles(ctx context.Context, out io.Writer, b *build.Builder, files []string, verbose bool) ([]*build.Result, error) {
	spin := console.NewSpinner(fmt.Sprintf("compiling %d template(s)", len(files)))
	if verbose {
		b.Progress = func(r *build.Result) {
			if r.HasErrors() {
				return
			}
			if r.Written {
				fmt.Fprintf(out, "%s %s %s\n", r.Template, arrowFmt("->"), pathFmt(r.Output))
			} else {
				fmt.Fprintln(out, skippedFmt("%s unchanged", r.Template))
			}
		}
	} else {
		spin.Start()
	}
	results, err := b.Run(ctx, files, true)
	spin.Stop()

	report(out, results)
	return results, err
}

// report prints the diagnostics and failures of results.
func report(out io.Writer, results []*build.Result) {
	for _, r := range results {
		if len(r.Diagnostics) > 0 {
			fmt.Fprint(out, console.FormatDiagnostics(r.Diagnostics, r.Source))
		}
		if r.Err != nil {
			fmt.Fprintln(out, console.FormatErrorMessage(fmt.Sprintf("%s: %v", r.Template, r.Err)))
		}
	}
}

func countWritten(results []*build.Result) int {
	n := 0
	for _, r := range results {
		if r.Written {
			n++
		}
	}
	return n
}
