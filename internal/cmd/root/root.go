// Package root provides the root command for the wikx CLI.
package root

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/internal/cmd/completion"
	"github.com/open-cli-collective/wiki-extractor/internal/cmd/configcmd"
	"github.com/open-cli-collective/wiki-extractor/internal/cmd/extract"
	initcmd "github.com/open-cli-collective/wiki-extractor/internal/cmd/init"
	"github.com/open-cli-collective/wiki-extractor/internal/cmd/page"
	"github.com/open-cli-collective/wiki-extractor/internal/version"
)

// NewCmdRoot creates the root command for wikx.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikx",
		Short: "Extract plain text from MediaWiki dumps and pages",
		Long: `wikx extracts clean text from MediaWiki content.

It expands templates and parser functions, strips markup, and writes one
document per article, either from a full XML dump or from individual
pages fetched through the MediaWiki API.

Get started by running: wikx init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			quiet, _ := cmd.Flags().GetBool("quiet")
			setupLogger(verbose, quiet)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/wikx/config.yml)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log debug messages")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "log errors only")

	// Set version template
	cmd.SetVersionTemplate("wikx version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(extract.NewCmdExtract())
	cmd.AddCommand(page.NewCmdPage())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}

// setupLogger installs the process-wide logger. Logs go to stderr so that
// extracted documents on stdout stay clean.
func setupLogger(verbose, quiet bool) {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.ErrorLevel
	case verbose:
		level = log.DebugLevel
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "wikx",
		Level:           level,
		ReportTimestamp: verbose,
	}))
}
