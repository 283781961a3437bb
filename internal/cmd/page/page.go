// Package page provides the page command, which extracts single pages
// fetched from a MediaWiki API or read from local files.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/stream"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/api"
	"github.com/open-cli-collective/wiki-extractor/internal/cmd/completion"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/internal/dump"
	"github.com/open-cli-collective/wiki-extractor/internal/output"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// maxConcurrentPages bounds the number of pages fetched at once.
const maxConcurrentPages = 4

type pageOptions struct {
	file   string
	title  string
	raw    bool
	format string
	apiURL string

	links bool
	lists bool
	html  bool
}

// NewCmdPage creates the page command.
func NewCmdPage() *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:     "page [title...]",
		Aliases: []string{"pages"},
		Short:   "Extract text from individual pages",
		Long: `Extract text from pages fetched live from a MediaWiki API, or from a
local wikitext file.

Templates used by fetched pages are fetched on demand from the same wiki.
Several titles are fetched concurrently and printed in argument order.`,
		Example: `  # Extract a page from the configured wiki
  wikx page "Go (programming language)"

  # Use a specific wiki and print raw wikitext
  wikx page Berlin --api-url https://de.wikipedia.org/w/api.php --raw

  # Extract a local file, expanding templates from a templates file
  wikx page --file article.wiki --title Article`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return err
			}
			if opts.apiURL != "" {
				cfg.APIURL = opts.apiURL
			}
			switch {
			case opts.format != "":
				cfg.OutputFormat = opts.format
			case cfg.OutputFormat == "":
				cfg.OutputFormat = string(output.FormatDoc)
			}
			cfg.KeepLinks = cfg.KeepLinks || opts.links
			cfg.KeepLists = cfg.KeepLists || opts.lists
			cfg.HTML = cfg.HTML || opts.html
			if err := cfg.Validate(); err != nil {
				return err
			}

			if opts.file != "" {
				return runFile(opts, cfg, cmd.OutOrStdout())
			}
			if len(args) == 0 {
				return errors.New("a page title or --file is required")
			}
			if cfg.APIURL == "" {
				return errors.New("no api_url configured (use --api-url, WIKX_API_URL or 'wikx init')")
			}
			return runPages(cmd.Context(), args, opts, cfg, api.NewClient(cfg.APIURL), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "extract a local wikitext file ('-' for stdin)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title of the page read with --file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the raw wikitext instead of extracting it")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "document format: json, doc, markdown (default: doc)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "MediaWiki API endpoint (overrides config)")
	cmd.Flags().BoolVar(&opts.links, "links", false, "preserve links as <a> anchors")
	cmd.Flags().BoolVar(&opts.lists, "lists", false, "preserve lists")
	cmd.Flags().BoolVar(&opts.html, "html", false, "produce HTML instead of plain text")

	cmd.ValidArgsFunction = completion.PageTitles
	_ = cmd.RegisterFlagCompletionFunc("format", completion.DocumentFormats())
	_ = cmd.RegisterFlagCompletionFunc("file", completion.FileExt("wiki", "txt"))

	return cmd
}

// runPages fetches and extracts titles concurrently. Output keeps argument
// order; a failing title is reported and the rest still run.
func runPages(ctx context.Context, titles []string, opts *pageOptions, cfg *config.Config, client *api.Client, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	wopts := cfg.Options()
	if !opts.raw {
		site, err := client.GetSiteInfo(ctx)
		if err != nil {
			return fmt.Errorf("failed to get site info: %w", err)
		}
		site.Apply(wopts)
	}
	wopts.Prepare()
	registry := api.NewRemoteRegistry(ctx, client)
	format := cfg.Format()

	var failed []string
	s := stream.New().WithMaxGoroutines(maxConcurrentPages)
	for _, title := range titles {
		s.Go(func() stream.Callback {
			record, err := fetchAndExtract(ctx, client, title, opts.raw, wopts, registry, format)
			return func() {
				if err != nil {
					log.Error("page failed", "title", title, "err", err)
					failed = append(failed, title)
					return
				}
				if _, werr := w.Write(record); werr != nil {
					failed = append(failed, title)
				}
			}
		})
	}
	s.Wait()

	log.Debug("templates fetched", "count", registry.Fetched())
	if len(failed) > 0 {
		return fmt.Errorf("failed to extract %d page(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func fetchAndExtract(ctx context.Context, client *api.Client, title string, raw bool, opts *wikitext.Options, registry wikitext.Registry, format output.Format) ([]byte, error) {
	page, err := client.GetPage(ctx, title)
	if err != nil {
		return nil, err
	}
	if raw {
		return []byte(page.Content() + "\n"), nil
	}
	return extractRecord(page.WikitextPage(), opts, registry, format)
}

// extractRecord runs one extraction and encodes the document.
func extractRecord(p wikitext.Page, opts *wikitext.Options, registry wikitext.Registry, format output.Format) ([]byte, error) {
	x := wikitext.NewExtractor(p, opts, registry)
	doc, ok := x.Extract()
	if d := x.Diagnostics(); len(d.Faults) > 0 {
		log.Debug("extraction degraded", "title", p.Title, "faults", len(d.Faults), "recursion", d.RecursionErrs())
	}
	if !ok {
		return nil, errors.New("no text extracted")
	}
	return format.Encode(doc)
}

// runFile extracts a local wikitext file. Templates come from the
// configured templates file, or from the API when one is configured.
func runFile(opts *pageOptions, cfg *config.Config, w io.Writer) error {
	var (
		text []byte
		err  error
	)
	if opts.file == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(opts.file)
	}
	if err != nil {
		return fmt.Errorf("failed to read page file: %w", err)
	}
	if opts.raw {
		_, err := w.Write(text)
		return err
	}

	title := opts.title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	}

	wopts := cfg.Options()
	var registry wikitext.Registry
	switch {
	case cfg.Templates != "":
		mem := wikitext.NewMemoryRegistry()
		in, err := dump.Open(cfg.Templates)
		if err != nil {
			return err
		}
		defer in.Close()
		if _, err := dump.LoadTemplates(dump.NewReader(in), wopts, mem, nil); err != nil {
			return err
		}
		registry = mem
	case cfg.APIURL != "":
		registry = api.NewRemoteRegistry(context.Background(), api.NewClient(cfg.APIURL))
	}
	wopts.Prepare()

	record, err := extractRecord(wikitext.Page{ID: "0", Title: title, Text: string(text)}, wopts, registry, cfg.Format())
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}
	_, err = w.Write(record)
	return err
}
