// writer.go adapts a Splitter and a Format into a document sink.
package output

import (
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// DocumentWriter encodes documents and hands the records to a Splitter.
type DocumentWriter struct {
	format   Format
	splitter *Splitter
}

// NewDocumentWriter returns a writer encoding with format.
func NewDocumentWriter(format Format, splitter *Splitter) *DocumentWriter {
	return &DocumentWriter{format: format, splitter: splitter}
}

// Write encodes and writes one document.
func (w *DocumentWriter) Write(doc *wikitext.Document) error {
	b, err := w.format.Encode(doc)
	if err != nil {
		return err
	}
	return w.splitter.WriteRecord(b)
}

// Close closes the underlying splitter.
func (w *DocumentWriter) Close() error {
	return w.splitter.Close()
}
