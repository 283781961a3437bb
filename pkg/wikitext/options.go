// options.go defines the immutable configuration shared by every extraction task.

package wikitext

import (
	"strings"
	"sync"
	"time"
)

// Well-known namespace keys from <siteinfo>.
const (
	TemplateNamespaceKey = "10"
	ModuleNamespaceKey   = "828"
)

// DefaultMaxDepth bounds frame depth and the three recursion counters.
const DefaultMaxDepth = 30

// Options is built once before any task runs and is never mutated afterwards.
// Tasks hold a pointer to it; concurrent reads are safe.
type Options struct {
	// KnownNamespaces maps namespace names (e.g. "Template") to their keys.
	KnownNamespaces map[string]string
	// TemplateNamespace is the name of namespace 10, e.g. "Template".
	TemplateNamespace string
	// ModuleNamespace is the name of namespace 828, e.g. "Module".
	ModuleNamespace string
	// AcceptedNamespaces lists link prefixes kept by the link resolver.
	AcceptedNamespaces []string
	// URLBase is prefixed to "?curid=<id>" to form document URLs.
	URLBase string

	KeepLinks       bool
	KeepSections    bool
	KeepLists       bool
	ToHTML          bool
	KeepTables      bool
	ExpandTemplates bool
	FilterDisambig  bool
	PrintRevision   bool
	// MinTextLength is the minimum character count of emitted text.
	MinTextLength int
	// MaxDepth bounds recursion; zero means DefaultMaxDepth.
	MaxDepth int

	// IgnoredTags have their open/close tags removed but content kept.
	IgnoredTags []string
	// DiscardElements are removed together with their content.
	DiscardElements []string

	// Now supplies the clock for CURRENT* magic words; nil means time.Now.
	Now func() time.Time

	tagsOnce sync.Once
	ignored  []tagPattern
	discard  []tagPattern
}

// DefaultIgnoredTags are stripped of their markup, keeping inner text.
var DefaultIgnoredTags = []string{
	"abbr", "b", "big", "blockquote", "center", "cite", "em",
	"font", "h1", "h2", "h3", "h4", "hiero", "i", "kbd",
	"nowiki", "p", "plaintext", "s", "span", "strike", "strong",
	"tt", "u", "var",
}

// DefaultDiscardElements are dropped entirely, including content.
var DefaultDiscardElements = []string{
	"gallery", "timeline", "noinclude", "pre",
	"table", "tr", "td", "th", "caption", "div",
	"form", "input", "select", "option", "textarea",
	"ul", "li", "ol", "dl", "dt", "dd", "menu", "dir",
	"ref", "references", "img", "imagemap", "source", "small",
	"sub", "sup", "indicator",
}

// DefaultOptions returns the settings of a plain-text extraction run.
func DefaultOptions() *Options {
	return &Options{
		KnownNamespaces:    map[string]string{"Template": TemplateNamespaceKey, "Module": ModuleNamespaceKey},
		TemplateNamespace:  "Template",
		ModuleNamespace:    "Module",
		AcceptedNamespaces: []string{"w", "wiktionary", "wikt"},
		KeepSections:       true,
		ExpandTemplates:    true,
		MaxDepth:           DefaultMaxDepth,
		IgnoredTags:        append([]string(nil), DefaultIgnoredTags...),
		DiscardElements:    append([]string(nil), DefaultDiscardElements...),
	}
}

// Prepare fills defaults and compiles tag patterns. Call it after the last
// field assignment and before the Options are shared between tasks.
func (o *Options) Prepare() *Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.KnownNamespaces == nil {
		o.KnownNamespaces = map[string]string{}
	}
	if o.TemplateNamespace != "" {
		if _, ok := o.KnownNamespaces[o.TemplateNamespace]; !ok {
			o.KnownNamespaces[o.TemplateNamespace] = TemplateNamespaceKey
		}
	}
	o.tagPatterns()
	return o
}

// tagPatterns compiles IgnoredTags and DiscardElements exactly once.
func (o *Options) tagPatterns() (ignored, discard []tagPattern) {
	o.tagsOnce.Do(func() {
		for _, tag := range o.IgnoredTags {
			o.ignored = append(o.ignored, ignoredTagPattern(tag))
		}
		for _, tag := range o.DiscardElements {
			o.discard = append(o.discard, discardTagPattern(tag))
		}
	})
	return o.ignored, o.discard
}

func (o *Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// SetNamespace registers a namespace from <siteinfo>, recording the template
// and module namespace names when their keys are seen.
func (o *Options) SetNamespace(name, key string) {
	if o.KnownNamespaces == nil {
		o.KnownNamespaces = map[string]string{}
	}
	o.KnownNamespaces[name] = key
	switch key {
	case TemplateNamespaceKey:
		o.TemplateNamespace = name
	case ModuleNamespaceKey:
		o.ModuleNamespace = name
	}
}

// TemplatePrefix is the template namespace name followed by a colon.
func (o *Options) TemplatePrefix() string {
	if o.TemplateNamespace == "" {
		return ""
	}
	return o.TemplateNamespace + ":"
}

// ModulePrefix is the module namespace name followed by a colon.
func (o *Options) ModulePrefix() string {
	if o.ModuleNamespace == "" {
		return ""
	}
	return o.ModuleNamespace + ":"
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Options) acceptsNamespace(ns string) bool {
	for _, a := range o.AcceptedNamespaces {
		if a == ns {
			return true
		}
	}
	return false
}

// URL returns the document URL for a page id.
func (o *Options) URL(id string) string {
	return o.URLBase + "?curid=" + id
}

// SetURLBase derives the URL base from a <siteinfo> <base> value by cutting
// at the last slash.
func (o *Options) SetURLBase(base string) {
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[:i]
	}
	o.URLBase = base
}
