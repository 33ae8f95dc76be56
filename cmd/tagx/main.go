// Package main provides the tagx command, which compiles .tgx templates
// into Go source files.
//
// Usage:
//
//	tagx generate [path...]          Generate Go code from .tgx files
//	tagx check [path...]             Check .tgx files without generating
//	tagx map <template> [--at l:c]   Translate positions through a source map
//	tagx version                     Print version information
//
// Examples:
//
//	tagx generate ./...              Recursively compile all .tgx files
//	tagx generate --watch ./views    Recompile a directory on change
//	tagx check page.tgx              Report diagnostics for one template
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-tagx/internal/catalog"
	"github.com/grindlemire/go-tagx/internal/config"
	"github.com/grindlemire/go-tagx/internal/console"
	"github.com/grindlemire/go-tagx/internal/debug"
	"github.com/grindlemire/go-tagx/internal/tagxgen"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	verbose    bool
	configPath string
	debugLog   string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "tagx",
		Short:         "Compile .tgx templates into Go",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.debugLog != "" {
				return debug.Init(g.debugLog)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return debug.Close()
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "project configuration file")
	root.PersistentFlags().StringVar(&g.debugLog, "debug-log", "", "write debug logs to this file")

	root.AddCommand(
		newGenerateCmd(g),
		newCheckCmd(g),
		newMapCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tagx version %s\n", version)
			},
		},
	)
	return root
}

// loadProject loads the configuration and the catalogs it names.
func loadProject(g *globals) (*config.Config, tagxgen.Resolver, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Catalogs) == 0 {
		return cfg, nil, nil
	}
	cat, err := catalog.Load(cfg.Catalogs...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat.Resolver(), nil
}

func defaultPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
