package configcmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/internal/config"
)

// envKeys maps the variables LoadFromEnv reads to the config keys they set.
var envKeys = []struct{ name, key string }{
	{"WIKX_API_URL", "api_url"},
	{"MEDIAWIKI_API_URL", "api_url"},
	{"WIKX_TEMPLATES", "templates"},
	{"WIKX_OUTPUT_DIR", "output_dir"},
	{"WIKX_BYTES", "bytes"},
	{"WIKX_OUTPUT_FORMAT", "output_format"},
	{"WIKX_PROCESSES", "processes"},
}

type clearOptions struct {
	configPath string
	templates  bool
	noColor    bool
	out        io.Writer
}

// NewCmdClear creates the config clear command.
func NewCmdClear() *cobra.Command {
	opts := &clearOptions{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored configuration",
		Long: `Delete the wikx config file, forgetting the stored API endpoint,
templates file and extraction defaults.

The templates file built by 'wikx extract --templates' is kept unless
--templates is given. WIKX_* environment variables still apply afterwards.`,
		Example: `  # Forget the stored API endpoint and defaults
  wikx config clear

  # Also delete the cached templates file
  wikx config clear --templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runClear(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.templates, "templates", false, "also delete the templates file named in the config")

	return cmd
}

func runClear(opts *clearOptions) error {
	if opts.noColor {
		color.NoColor = true
	}
	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	path := config.ResolvePath(opts.configPath)
	stored, loadErr := config.Load(path)
	if loadErr != nil {
		stored = &config.Config{}
	}

	err := os.Remove(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		_, _ = green.Fprintf(opts.out, "✓ No config file at %s\n", path)
	case err != nil:
		return fmt.Errorf("failed to remove config file: %w", err)
	default:
		_, _ = green.Fprintf(opts.out, "✓ Removed %s\n", path)
		if stored.APIURL != "" {
			_, _ = dim.Fprintf(opts.out, "  api_url    %s\n", stored.APIURL)
		}
		if stored.Templates != "" {
			_, _ = dim.Fprintf(opts.out, "  templates  %s\n", stored.Templates)
		}
	}

	if stored.Templates != "" {
		if err := clearTemplates(opts, stored.Templates, green, dim); err != nil {
			return err
		}
	}

	var active []string
	for _, v := range envKeys {
		if os.Getenv(v.name) != "" {
			active = append(active, v.name+" ("+v.key+")")
		}
	}
	if len(active) > 0 {
		_, _ = dim.Fprintf(opts.out, "\nStill set in the environment: %s\n", strings.Join(active, ", "))
	}

	return nil
}

// clearTemplates deletes the templates file when asked to, and otherwise
// points out that it was kept.
func clearTemplates(opts *clearOptions, path string, green, dim *color.Color) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if !opts.templates {
		_, _ = dim.Fprintf(opts.out, "Templates file %s kept (use --templates to delete it)\n", path)
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove templates file: %w", err)
	}
	_, _ = green.Fprintf(opts.out, "✓ Removed templates file %s\n", path)
	return nil
}
