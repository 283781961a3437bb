// Package dump streams pages out of MediaWiki XML exports.
package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// Namespace keys of the pages the extractor cares about.
const (
	ArticleNamespace  = "0"
	TemplateNamespace = wikitext.TemplateNamespaceKey
	ModuleNamespace   = wikitext.ModuleNamespaceKey
)

// Page is one <page> of a dump.
type Page struct {
	ID    string
	RevID string
	Title string
	NS    string
	Text  string

	Redirect       bool
	RedirectTarget string // empty when the dump omits the title attribute
}

// WikitextPage converts p into the extraction input.
func (p *Page) WikitextPage() wikitext.Page {
	return wikitext.Page{ID: p.ID, RevID: p.RevID, Title: p.Title, Text: p.Text}
}

// Namespace is a <namespace> entry of <siteinfo>.
type Namespace struct {
	Key  string `xml:"key,attr"`
	Name string `xml:",chardata"`
}

// Siteinfo holds the <siteinfo> header.
type Siteinfo struct {
	SiteName   string      `xml:"sitename"`
	Base       string      `xml:"base"`
	Namespaces []Namespace `xml:"namespaces>namespace"`
}

// Apply installs the URL base and namespaces into opts. Call it before
// opts.Prepare.
func (s *Siteinfo) Apply(opts *wikitext.Options) {
	if s.Base != "" {
		opts.SetURLBase(s.Base)
	}
	for _, ns := range s.Namespaces {
		if ns.Name == "" {
			continue
		}
		opts.SetNamespace(ns.Name, ns.Key)
	}
}

type xmlPage struct {
	Title    string `xml:"title"`
	NS       string `xml:"ns"`
	ID       string `xml:"id"`
	Redirect *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revision struct {
		ID   string `xml:"id"`
		Text string `xml:"text"`
	} `xml:"revision"`
	// templates files keep <text> directly under <page>
	Text string `xml:"text"`
}

// Reader decodes pages one at a time.
type Reader struct {
	dec     *xml.Decoder
	site    *Siteinfo
	pending *Page
	lastID  string
}

// NewReader returns a Reader over an uncompressed XML stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// Siteinfo reads up to the <siteinfo> header and returns it. It returns an
// empty Siteinfo when the stream has none, as templates files do.
func (r *Reader) Siteinfo() (*Siteinfo, error) {
	for r.site == nil && r.pending == nil {
		p, err := r.scan()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		r.pending = p
	}
	if r.site == nil {
		return &Siteinfo{}, nil
	}
	return r.site, nil
}

// Next returns the next page, or io.EOF at the end of the stream. A page
// repeating the id of the one before it is skipped.
func (r *Reader) Next() (*Page, error) {
	for {
		p := r.pending
		r.pending = nil
		if p == nil {
			var err error
			if p, err = r.scan(); err != nil {
				return nil, err
			}
		}
		if p.ID != "" && p.ID == r.lastID {
			continue
		}
		r.lastID = p.ID
		return p, nil
	}
}

// All iterates over the remaining pages. Iteration stops after the first
// error, which is yielded with a nil page.
func (r *Reader) All() iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		for {
			p, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

// scan decodes elements until the next <page>, recording <siteinfo> on the way.
func (r *Reader) scan() (*Page, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read dump: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "siteinfo":
			var site Siteinfo
			if err := r.dec.DecodeElement(&site, &se); err != nil {
				return nil, fmt.Errorf("failed to parse siteinfo: %w", err)
			}
			for i := range site.Namespaces {
				site.Namespaces[i].Name = strings.TrimSpace(site.Namespaces[i].Name)
			}
			r.site = &site

		case "page":
			var xp xmlPage
			if err := r.dec.DecodeElement(&xp, &se); err != nil {
				return nil, fmt.Errorf("failed to parse page: %w", err)
			}
			return xp.page(), nil
		}
	}
}

func (xp *xmlPage) page() *Page {
	p := &Page{
		ID:    strings.TrimSpace(xp.ID),
		RevID: strings.TrimSpace(xp.Revision.ID),
		Title: xp.Title,
		NS:    strings.TrimSpace(xp.NS),
		Text:  xp.Revision.Text,
	}
	if p.NS == "" {
		p.NS = ArticleNamespace
	}
	if p.Text == "" {
		p.Text = strings.TrimSuffix(strings.TrimPrefix(xp.Text, "\n"), templateTextEnd)
	}
	if xp.Redirect != nil {
		p.Redirect = true
		p.RedirectTarget = xp.Redirect.Title
	}
	return p
}
