// Package completion provides the shell completion command and the dynamic
// completions wikx registers on its own flags and arguments.
package completion

import (
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	load    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:    "bash",
		load:    "source <(wikx completion bash)",
		install: "wikx completion bash > /etc/bash_completion.d/wikx",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	},
	{
		name:    "zsh",
		load:    "source <(wikx completion zsh)",
		install: `wikx completion zsh > "${fpath[1]}/_wikx"`,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name:    "fish",
		load:    "wikx completion fish | source",
		install: "wikx completion fish > ~/.config/fish/completions/wikx.fish",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name:    "powershell",
		load:    "wikx completion powershell | Out-String | Invoke-Expression",
		install: "wikx completion powershell >> $PROFILE",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wikx.

Besides commands and flags, the scripts complete flag values (--format,
--summary, --namespaces), dump and templates file names, and page titles
looked up on the configured wiki.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newShellCmd(sh))
	}
	return cmd
}

func newShellCmd(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:   sh.name,
		Short: "Generate " + sh.name + " completion script",
		Long: "Generate the " + sh.name + ` completion script for wikx.

Page title completion queries the api_url from the config file (or
WIKX_API_URL), so it only offers titles once one is set.`,
		Example: "  # Load in current session\n  " + sh.load +
			"\n\n  # Install permanently\n  " + sh.install,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
