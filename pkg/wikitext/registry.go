// registry.go defines the template registry collaborator and its in-memory implementation.

package wikitext

import (
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Registry resolves fully-qualified template titles. Implementations must
// keep at most one live representation per title: Template compiles raw
// source on first use and moves it to the compiled cache.
type Registry interface {
	// RedirectTarget returns the title a redirect page points to.
	RedirectTarget(title string) (string, bool)
	// Template returns the compiled template for title, compiling raw source
	// with compile on a cache miss. It reports false when neither exists.
	Template(title string, compile func(source string) *Template) (*Template, bool)
}

// MemoryRegistry holds raw template sources, redirects and the compiled
// cache in memory. It is safe for concurrent use; compilation happens under
// the lock so a title is compiled at most once.
type MemoryRegistry struct {
	mu        sync.Mutex
	raw       map[string]string
	redirects map[string]string
	compiled  map[string]*Template
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		raw:       map[string]string{},
		redirects: map[string]string{},
		compiled:  map[string]*Template{},
	}
}

// RawSource returns uncompiled template source.
func (r *MemoryRegistry) RawSource(title string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.raw[title]
	return s, ok
}

// RedirectTarget implements Registry.
func (r *MemoryRegistry) RedirectTarget(title string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.redirects[title]
	return t, ok
}

// Compiled returns a cached compiled template.
func (r *MemoryRegistry) Compiled(title string) (*Template, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.compiled[title]
	return t, ok
}

// InsertCompiled caches a compiled template and discards its raw source.
func (r *MemoryRegistry) InsertCompiled(title string, t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiled[title] = t
	delete(r.raw, title)
}

// Template implements Registry.
func (r *MemoryRegistry) Template(title string, compile func(string) *Template) (*Template, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.compiled[title]; ok {
		return t, true
	}
	src, ok := r.raw[title]
	if !ok {
		return nil, false
	}
	t := compile(src)
	r.compiled[title] = t
	delete(r.raw, title)
	return t, true
}

// SetRaw stores template source verbatim under title.
func (r *MemoryRegistry) SetRaw(title, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw[title] = source
	delete(r.compiled, title)
}

// SetRedirect records that title redirects to target.
func (r *MemoryRegistry) SetRedirect(title, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects[title] = target
}

// Len returns the number of raw and compiled templates.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.raw) + len(r.compiled)
}

// Redirects returns the number of recorded redirects.
func (r *MemoryRegistry) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.redirects)
}

var (
	redirectRE    = regexp.MustCompile(`(?i)^#REDIRECT.*?\[\[([^\]]*)]]`)
	commentRE     = regexp.MustCompile(`(?s)<!--.*?-->`)
	noincludeRE   = regexp.MustCompile(`(?s)<noinclude>.*?</noinclude>`)
	noincludeTail = regexp.MustCompile(`(?s)<noinclude\s*>.*$`)
	onlyincludeRE = regexp.MustCompile(`(?s)<onlyinclude>(.*?)</onlyinclude>`)
	includeonlyRE = regexp.MustCompile(`<includeonly>|</includeonly>`)
)

// Define registers the page text of a template (or module) page under its
// fully-qualified title. Redirect pages register a redirect instead. The
// stored body keeps only what is transcluded: comments and <noinclude>
// parts are removed, and when <onlyinclude> parts exist only they are kept.
// page must already be decoded from its container format; entities left in
// it are wikitext and stay as they are.
func (r *MemoryRegistry) Define(title, page string) {
	if page == "" {
		return
	}
	firstLine, _, _ := strings.Cut(page, "\n")
	if m := redirectRE.FindStringSubmatch(firstLine); m != nil {
		r.SetRedirect(title, m[1])
		return
	}
	text := commentRE.ReplaceAllString(page, "")
	text = noincludeRE.ReplaceAllString(text, "")
	text = noincludeTail.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "<noinclude/>", "")

	var only strings.Builder
	for _, m := range onlyincludeRE.FindAllStringSubmatch(text, -1) {
		only.WriteString(m[1])
	}
	if only.Len() > 0 {
		text = only.String()
	} else {
		text = includeonlyRE.ReplaceAllString(text, "")
	}
	if text == "" {
		return
	}
	if _, ok := r.RawSource(title); ok {
		log.Warn("redefining template", "title", title)
	}
	r.SetRaw(title, text)
}
