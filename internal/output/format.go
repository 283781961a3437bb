// Package output serializes extracted documents and writes them to rotating files.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// Format is a document serialization.
type Format string

const (
	FormatJSON     Format = "json"
	FormatDoc      Format = "doc"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatDoc, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format: %s (valid: json, doc, markdown)", s)
}

// NeedsHTML reports whether the format consumes HTML-mode extraction.
func (f Format) NeedsHTML() bool {
	return f == FormatMarkdown
}

// Encode renders one document record, including its trailing newline.
func (f Format) Encode(doc *wikitext.Document) ([]byte, error) {
	switch f {
	case FormatJSON:
		return encodeJSON(doc)
	case FormatDoc:
		return encodeDoc(doc), nil
	case FormatMarkdown:
		return encodeMarkdown(doc)
	}
	return nil, fmt.Errorf("invalid output format: %s", f)
}

func encodeJSON(doc *wikitext.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}
	return buf.Bytes(), nil
}

// encodeDoc writes <doc id url title> ... </doc> with the title repeated as
// the first line.
func encodeDoc(doc *wikitext.Document) []byte {
	var sb strings.Builder
	sb.WriteString(`<doc id="` + doc.ID + `"`)
	if doc.RevID != "" {
		sb.WriteString(` revid="` + doc.RevID + `"`)
	}
	sb.WriteString(` url="` + html.EscapeString(doc.URL) + `" title="` + html.EscapeString(doc.Title) + "\">\n")
	sb.WriteString(doc.Title + "\n\n")
	sb.WriteString(doc.Text)
	sb.WriteString("\n</doc>\n")
	return []byte(sb.String())
}

func encodeMarkdown(doc *wikitext.Document) ([]byte, error) {
	body, err := htmltomarkdown.ConvertString(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document %s to markdown: %w", doc.ID, err)
	}
	return []byte("# " + doc.Title + "\n\n" + strings.TrimSpace(body) + "\n\n"), nil
}
