// Package wikitext expands and cleans MediaWiki markup into plain text.
//
// An Extractor runs one article through template expansion (templates,
// parser functions, magic words and #invoke modules resolved through a
// Registry), then strips the remaining markup and compacts the result into
// a Document. Options are shared read-only by every Extractor; a
// MemoryRegistry may be shared by extractors running in parallel.
package wikitext
