// templates.go collects template and module pages and persists them.
package dump

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// templateTextEnd separates template text from its closing tag.
const templateTextEnd = "\n   "

// IsTemplatePage reports whether p is a template or module page for opts.
func IsTemplatePage(p *Page, opts *wikitext.Options) bool {
	switch p.NS {
	case TemplateNamespace, ModuleNamespace:
		return true
	}
	if prefix := opts.TemplatePrefix(); prefix != "" && strings.HasPrefix(p.Title, prefix) {
		return true
	}
	if prefix := opts.ModulePrefix(); prefix != "" && strings.HasPrefix(p.Title, prefix) {
		return true
	}
	return false
}

// LoadTemplates defines every template and module page read from r in reg.
// When w is non-nil the pages are also written to it in templates-file form.
// It returns the number of pages defined.
func LoadTemplates(r *Reader, opts *wikitext.Options, reg *wikitext.MemoryRegistry, w io.Writer) (int, error) {
	n := 0
	for p, err := range r.All() {
		if err != nil {
			return n, err
		}
		if !IsTemplatePage(p, opts) {
			continue
		}
		reg.Define(p.Title, p.Text)
		if w != nil {
			if err := WriteTemplate(w, p); err != nil {
				return n, err
			}
		}
		n++
		if n%100000 == 0 {
			log.Info("preprocessed templates", "count", n)
		}
	}
	return n, nil
}

// WriteTemplate writes p as a <page> element of a templates file.
func WriteTemplate(w io.Writer, p *Page) error {
	var sb strings.Builder
	sb.WriteString("<page>\n   <title>")
	sb.WriteString(html.EscapeString(p.Title))
	sb.WriteString("</title>\n   <ns>")
	sb.WriteString(p.NS)
	sb.WriteString("</ns>\n   <id>")
	sb.WriteString(p.ID)
	sb.WriteString("</id>\n   <text>\n")
	sb.WriteString(html.EscapeString(p.Text))
	sb.WriteString(templateTextEnd + "</text>\n</page>\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write template %q: %w", p.Title, err)
	}
	return nil
}
