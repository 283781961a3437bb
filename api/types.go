// Package api provides a MediaWiki Action API client and a template
// registry backed by it.
package api

import (
	"strconv"
	"time"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// QueryResponse wraps action=query responses.
type QueryResponse struct {
	Query Query `json:"query"`
}

// Query is the payload of an action=query response.
type Query struct {
	Normalized []Redirect           `json:"normalized,omitempty"`
	Redirects  []Redirect           `json:"redirects,omitempty"`
	Pages      []Page               `json:"pages,omitempty"`
	General    *General             `json:"general,omitempty"`
	Namespaces map[string]Namespace `json:"namespaces,omitempty"`
	Search     []SearchResult       `json:"prefixsearch,omitempty"`
}

// SearchResult is one list=prefixsearch hit.
type SearchResult struct {
	NS     int    `json:"ns"`
	Title  string `json:"title"`
	PageID int    `json:"pageid"`
}

// Redirect records a title rewrite performed by the API.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Page represents a wiki page.
type Page struct {
	PageID    int        `json:"pageid"`
	NS        int        `json:"ns"`
	Title     string     `json:"title"`
	Missing   bool       `json:"missing,omitempty"`
	Invalid   bool       `json:"invalid,omitempty"`
	Revisions []Revision `json:"revisions,omitempty"`
}

// Revision contains page revision information.
type Revision struct {
	RevID     int             `json:"revid"`
	ParentID  int             `json:"parentid,omitempty"`
	Timestamp Time            `json:"timestamp,omitempty"`
	Slots     map[string]Slot `json:"slots,omitempty"`
}

// Slot holds the content of one revision slot.
type Slot struct {
	ContentModel string `json:"contentmodel"`
	Content      string `json:"content"`
}

// Content returns the wikitext of the latest revision's main slot.
func (p *Page) Content() string {
	if len(p.Revisions) == 0 {
		return ""
	}
	return p.Revisions[0].Slots["main"].Content
}

// RevID returns the id of the latest revision, or 0.
func (p *Page) RevID() int {
	if len(p.Revisions) == 0 {
		return 0
	}
	return p.Revisions[0].RevID
}

// WikitextPage converts p into the extraction input.
func (p *Page) WikitextPage() wikitext.Page {
	return wikitext.Page{
		ID:    strconv.Itoa(p.PageID),
		RevID: strconv.Itoa(p.RevID()),
		Title: p.Title,
		Text:  p.Content(),
	}
}

// General holds the siteinfo "general" block.
type General struct {
	SiteName string `json:"sitename"`
	Base     string `json:"base"`
	MainPage string `json:"mainpage"`
	Lang     string `json:"lang"`
}

// Namespace is one siteinfo namespace.
type Namespace struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Canonical string `json:"canonical,omitempty"`
}

// Time is a wrapper around time.Time for MediaWiki timestamps.
type Time struct {
	time.Time
}

// UnmarshalJSON parses MediaWiki's ISO 8601 timestamps.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	// Handle null or empty
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}

	t.Time = parsed
	return nil
}

// MarshalJSON formats time in ISO 8601 format.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Info       string `json:"info"`
}

func (e *ErrorResponse) Error() string {
	if e.Info == "" {
		return e.Code
	}
	return e.Code + ": " + e.Info
}
