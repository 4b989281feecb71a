// Package commands implements the CLI commands for bake.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/build"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/pipeline"
)

// CLI represents the command line interface for bake.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	SetLogLevel(level domain.LogLevel)
	LoadOptions(path string) (domain.CacheOptions, error)
	Cache(ctx context.Context, opts domain.CacheOptions) (*pipeline.Report, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
	History(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "bake",
		Short:         "Replace CocoaPods sources with cached prebuilt frameworks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only show warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		switch {
		case verbose:
			c.app.SetLogLevel(domain.LogLevelDebug)
		case quiet:
			c.app.SetLogLevel(domain.LogLevelWarn)
		}
	}

	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
