// extractor.go defines the per-article extraction task.

package wikitext

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Page is one raw article.
type Page struct {
	ID    string
	RevID string
	Title string
	Text  string
}

// Document is the record emitted for an article.
type Document struct {
	ID    string `json:"id"`
	RevID string `json:"revid,omitempty"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Extractor is the extraction task of one article. It owns its frame stack,
// magic words and diagnostics and must not be shared between goroutines;
// the Options and Registry it refers to may be.
type Extractor struct {
	opts     *Options
	registry Registry
	compiler Compiler

	page   Page
	magic  MagicWords
	frames FrameStack
	diag   Diagnostics
}

// NewExtractor creates the task for page. A nil registry means no templates
// are known.
func NewExtractor(page Page, opts *Options, registry Registry) *Extractor {
	if registry == nil {
		registry = NewMemoryRegistry()
	}
	return &Extractor{
		opts:     opts,
		registry: registry,
		compiler: PlaceholderCompiler{},
		page:     page,
		magic:    newMagicWords(page.Title, opts),
	}
}

// WithCompiler replaces the template compiler.
func (x *Extractor) WithCompiler(c Compiler) *Extractor {
	x.compiler = c
	return x
}

// Diagnostics returns the counters and faults recorded so far.
func (x *Extractor) Diagnostics() *Diagnostics {
	return &x.diag
}

// Lines expands and cleans the page text into output lines.
func (x *Extractor) Lines() []string {
	log.Debug("extracting", "id", x.page.ID, "title", x.page.Title)
	text := x.Transform(x.page.Text)
	text = x.wiki2text(text)
	return x.compact(x.clean(text))
}

// Extract runs the task. It reports false when the page is filtered out:
// a disambiguation page under FilterDisambig, or text shorter than
// MinTextLength characters. Empty text is never emitted.
func (x *Extractor) Extract() (*Document, bool) {
	if x.opts.FilterDisambig && disambiguateRE.MatchString(x.page.Text) {
		log.Debug("skipping disambiguation page", "title", x.page.Title)
		return nil, false
	}
	lines := x.Lines()
	x.page.Text = ""

	length := 0
	for _, l := range lines {
		length += utf8.RuneCountInString(l)
	}
	if length < max(x.opts.MinTextLength, 1) {
		return nil, false
	}

	doc := &Document{
		ID:    x.page.ID,
		URL:   x.opts.URL(x.page.ID),
		Title: x.page.Title,
		Text:  strings.Join(lines, "\n"),
	}
	if x.opts.PrintRevision {
		doc.RevID = x.page.RevID
	}
	return doc, true
}
