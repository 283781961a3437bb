package completion

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/api"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/internal/output"
	"github.com/open-cli-collective/wiki-extractor/internal/view"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// Func is the signature cobra expects for argument and flag completion.
type Func = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

const (
	// maxTitles bounds the titles offered for one completion.
	maxTitles    = 20
	titleTimeout = 3 * time.Second
)

// Values completes a flag from a fixed set of values.
func Values(values ...string) Func {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// DocumentFormats completes the document --format flag.
func DocumentFormats() Func {
	names := make([]string, len(output.Formats))
	for i, f := range output.Formats {
		names[i] = string(f)
	}
	return Values(names...)
}

// SummaryFormats completes the --summary flag.
func SummaryFormats() Func {
	return Values(view.ValidFormats()...)
}

// FileExt completes file names with the given extensions.
func FileExt(exts ...string) Func {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// Namespaces completes a comma-separated link namespace list. Names already
// typed are kept as a prefix and not offered again.
func Namespaces(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	typed := ""
	if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
		typed = toComplete[:i]
	}
	seen := map[string]bool{}
	for _, ns := range strings.Split(typed, ",") {
		seen[ns] = true
	}

	var out []string
	for _, ns := range wikitext.DefaultOptions().AcceptedNamespaces {
		if seen[ns] {
			continue
		}
		if typed != "" {
			ns = typed + "," + ns
		}
		out = append(out, ns)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// PageTitles completes page titles by prefix search on the configured wiki.
// Without a prefix or an api_url nothing is offered.
func PageTitles(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if toComplete == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
	if err != nil {
		cobra.CompDebugln("config: "+err.Error(), false)
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if cfg.APIURL == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
	defer cancel()
	titles, err := api.NewClient(cfg.APIURL).PrefixSearch(ctx, toComplete, maxTitles)
	if err != nil {
		cobra.CompDebugln("prefix search: "+err.Error(), false)
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return titles, cobra.ShellCompDirectiveNoFileComp
}
