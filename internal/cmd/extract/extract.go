// Package extract provides the extract command, which turns a MediaWiki
// dump into plain-text documents.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-cli-collective/wiki-extractor/internal/cmd/completion"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/internal/dump"
	"github.com/open-cli-collective/wiki-extractor/internal/output"
	"github.com/open-cli-collective/wiki-extractor/internal/pipeline"
	"github.com/open-cli-collective/wiki-extractor/internal/view"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

type extractOptions struct {
	allNamespaces bool
	summary       string
	noColor       bool

	stdout io.Writer
	stderr io.Writer
}

// NewCmdExtract creates the extract command.
func NewCmdExtract() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <dump>",
		Short: "Extract plain text from a MediaWiki dump",
		Long: `Extract plain text from a MediaWiki XML dump.

The dump may be plain XML or compressed with bzip2 (.bz2) or gzip (.gz);
'-' reads from stdin. Template and module pages are collected in a first
pass so that article templates can be expanded; use --templates to save
them to a file on the first run and reuse it afterwards.

Output goes to files AA/wiki_00, AA/wiki_01, ... below --output, rotated
every --bytes; '--output -' writes to stdout.`,
		Example: `  # Extract into ./text, 1 MB per file
  wikx extract enwiki-latest-pages-articles.xml.bz2

  # Reuse a templates file and write JSON lines to stdout
  wikx extract dump.xml --templates templates.xml -o -

  # Keep links and lists, markdown output
  wikx extract dump.xml --links --lists --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return err
			}
			if err := applyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runExtract(ctx, args[0], cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "text", "directory for extracted files, or '-' for stdout")
	f.StringP("bytes", "b", config.DefaultBytes, "maximum bytes per output file (e.g. 500K, 1M; 0 for one file)")
	f.Bool("compress", false, "gzip output files")
	f.StringP("format", "f", "json", "document format: json, doc, markdown")
	f.IntP("processes", "p", 0, "number of extraction workers (default: CPUs - 1)")
	f.String("templates", "", "templates file to load, or to create from the dump")
	f.Bool("no-templates", false, "do not expand templates")
	f.Bool("links", false, "preserve links as <a> anchors")
	f.Bool("lists", false, "preserve lists")
	f.Bool("no-sections", false, "drop section headers")
	f.Bool("tables", false, "preserve tables")
	f.Bool("html", false, "produce HTML instead of plain text")
	f.Int("min-text-length", 0, "skip documents with fewer characters")
	f.Bool("filter-disambig-pages", false, "skip disambiguation pages")
	f.Bool("revision", false, "include the revision id in each document")
	f.StringSlice("namespaces", nil, "link namespaces to keep (default: w, wiktionary, wikt)")
	f.StringSlice("ignored-tags", nil, "additional tags to strip, keeping their content")
	f.StringSlice("discard-elements", nil, "additional elements to drop with their content")
	f.BoolVar(&opts.allNamespaces, "all-namespaces", false, "extract pages of every namespace, not just articles")
	f.StringVar(&opts.summary, "summary", "table", "run summary format: table, json, plain")

	cmd.ValidArgsFunction = completion.FileExt("xml", "bz2", "gz")
	_ = cmd.RegisterFlagCompletionFunc("format", completion.DocumentFormats())
	_ = cmd.RegisterFlagCompletionFunc("summary", completion.SummaryFormats())
	_ = cmd.RegisterFlagCompletionFunc("templates", completion.FileExt("xml", "gz"))
	_ = cmd.RegisterFlagCompletionFunc("namespaces", completion.Namespaces)

	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(f *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("output", func() { cfg.OutputDir, _ = f.GetString("output") })
	set("bytes", func() { cfg.Bytes, _ = f.GetString("bytes") })
	set("compress", func() { cfg.Compress, _ = f.GetBool("compress") })
	set("format", func() { cfg.OutputFormat, _ = f.GetString("format") })
	set("processes", func() { cfg.Processes, _ = f.GetInt("processes") })
	set("templates", func() { cfg.Templates, _ = f.GetString("templates") })
	set("no-templates", func() { cfg.ExpandTemplates = config.Bool(false) })
	set("links", func() { cfg.KeepLinks, _ = f.GetBool("links") })
	set("lists", func() { cfg.KeepLists, _ = f.GetBool("lists") })
	set("no-sections", func() { cfg.KeepSections = config.Bool(false) })
	set("tables", func() { cfg.KeepTables, _ = f.GetBool("tables") })
	set("html", func() { cfg.HTML, _ = f.GetBool("html") })
	set("min-text-length", func() { cfg.MinTextLength, _ = f.GetInt("min-text-length") })
	set("filter-disambig-pages", func() { cfg.FilterDisambig, _ = f.GetBool("filter-disambig-pages") })
	set("revision", func() { cfg.PrintRevision, _ = f.GetBool("revision") })
	set("namespaces", func() { cfg.AcceptedNamespaces, _ = f.GetStringSlice("namespaces") })
	set("ignored-tags", func() { cfg.IgnoredTags, _ = f.GetStringSlice("ignored-tags") })
	set("discard-elements", func() { cfg.DiscardElements, _ = f.GetStringSlice("discard-elements") })
	if cfg.OutputDir == "" {
		cfg.OutputDir = "text"
	}
	return cfg.Validate()
}

func runExtract(ctx context.Context, input string, cfg *config.Config, opts *extractOptions) error {
	if err := view.ValidateFormat(opts.summary); err != nil {
		return err
	}
	maxBytes, err := cfg.MaxBytes()
	if err != nil {
		return err
	}

	in, err := dump.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	reader := dump.NewReader(in)
	site, err := reader.Siteinfo()
	if err != nil {
		return err
	}
	wopts := cfg.Options()
	site.Apply(wopts)

	registry := wikitext.NewMemoryRegistry()
	summary := view.Summary{}
	if wopts.ExpandTemplates {
		n, err := loadTemplates(input, cfg.Templates, wopts, registry)
		if err != nil {
			return err
		}
		summary.Templates = n
	}
	wopts.Prepare()

	var splitter *output.Splitter
	if cfg.OutputDir == "-" {
		splitter = output.NewStdoutSplitter(opts.stdout)
	} else {
		splitter, err = output.NewSplitter(cfg.OutputDir, maxBytes, cfg.Compress)
		if err != nil {
			return err
		}
	}
	writer := output.NewDocumentWriter(cfg.Format(), splitter)

	stats, runErr := pipeline.Run(ctx, articles(reader, opts.allNamespaces, wopts), pipeline.Settings{
		Workers:  cfg.Processes,
		Options:  wopts,
		Registry: registry,
	}, writer)
	if err := writer.Close(); err != nil && runErr == nil {
		runErr = err
	}

	summary.Pages = stats.Read
	summary.Emitted = stats.Emitted
	summary.Filtered = stats.Filtered
	summary.Failed = stats.Failed
	summary.Elapsed = stats.Elapsed
	summary.AddDiagnostics(&stats.Diagnostics)
	if cfg.OutputDir != "-" {
		summary.Files = splitter.Files()
		summary.Bytes = splitter.BytesWritten()
	}

	renderer := view.NewRenderer(view.Format(opts.summary), opts.noColor)
	renderer.SetWriter(opts.stderr)
	if err := renderer.RenderSummary(summary); err != nil {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("extraction interrupted: %w", runErr)
	}
	return runErr
}

// loadTemplates fills registry from the templates file when it exists, or
// from a first pass over the dump, saving to the templates file when one is
// named.
func loadTemplates(input, templatesPath string, opts *wikitext.Options, registry *wikitext.MemoryRegistry) (int, error) {
	if templatesPath != "" {
		if _, err := os.Stat(templatesPath); err == nil {
			log.Info("loading templates", "file", templatesPath)
			return loadTemplatesFrom(templatesPath, opts, registry, nil)
		}
	}
	if input == "-" {
		log.Warn("templates cannot be preprocessed from stdin; use --templates")
		return 0, nil
	}

	var save io.WriteCloser
	if templatesPath != "" {
		f, err := os.Create(templatesPath)
		if err != nil {
			return 0, fmt.Errorf("failed to create templates file: %w", err)
		}
		save = f
	}
	log.Info("preprocessing templates", "dump", input)
	n, err := loadTemplatesFrom(input, opts, registry, save)
	if save != nil {
		if cerr := save.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return n, err
	}
	log.Info("loaded templates", "count", n, "redirects", registry.Redirects())
	return n, nil
}

func loadTemplatesFrom(path string, opts *wikitext.Options, registry *wikitext.MemoryRegistry, save io.Writer) (int, error) {
	in, err := dump.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return dump.LoadTemplates(dump.NewReader(in), opts, registry, save)
}

// articles yields the pages to extract: non-redirect articles, or with all
// set every non-redirect page that is not a template or module.
func articles(r *dump.Reader, all bool, opts *wikitext.Options) iter.Seq2[wikitext.Page, error] {
	return func(yield func(wikitext.Page, error) bool) {
		for p, err := range r.All() {
			if err != nil {
				yield(wikitext.Page{}, err)
				return
			}
			if p.Redirect {
				continue
			}
			if all {
				if dump.IsTemplatePage(p, opts) {
					continue
				}
			} else if p.NS != dump.ArticleNamespace {
				continue
			}
			if strings.TrimSpace(p.Text) == "" {
				continue
			}
			if !yield(p.WikitextPage(), nil) {
				return
			}
		}
	}
}
