// expand.go implements the expansion orchestrator: finding template
// invocations, resolving them through the registry and parser functions, and
// threading frame and recursion state through the pass.

package wikitext

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

var (
	nowikiRE   = regexp.MustCompile(`<nowiki>.*?</nowiki>`)
	substRE    = regexp.MustCompile(`(?i)^(?:subst:|safesubst:)`)
	tplOpenRE  = regexp.MustCompile(`\{\{`)
	tplCloseRE = regexp.MustCompile(`\}\}`)
)

// Transform expands templates in text, leaving <nowiki> sections verbatim.
// With ExpandTemplates off, invocations are dropped instead.
func (x *Extractor) Transform(text string) string {
	var sb strings.Builder
	cur := 0
	for _, loc := range nowikiRE.FindAllStringIndex(text, -1) {
		sb.WriteString(x.transformPlain(text[cur:loc[0]]))
		sb.WriteString(text[loc[0]:loc[1]])
		cur = loc[1]
	}
	sb.WriteString(x.transformPlain(text[cur:]))
	return sb.String()
}

func (x *Extractor) transformPlain(text string) string {
	if x.opts.ExpandTemplates {
		return x.Expand(text)
	}
	return DropNested(text, tplOpenRE, tplCloseRE)
}

// Expand replaces every {{...}} invocation in text with its expansion.
// Entered at maximum depth it refuses and returns empty text.
func (x *Extractor) Expand(text string) string {
	if x.frames.Depth() >= x.opts.maxDepth() {
		x.diag.record(ErrExpansionDepth, "%s", abbrev(text))
		return ""
	}
	var sb strings.Builder
	cur := 0
	m := newBraceMatcher(text, 2)
	for {
		span, ok := m.next()
		if !ok {
			break
		}
		sb.WriteString(text[cur:span.Start])
		sb.WriteString(x.expandTemplate(text[span.Start+2 : span.End-2]))
		cur = span.End
	}
	if m.unbalanced {
		x.diag.record(ErrUnbalanced, "%s", abbrev(text[cur:]))
	}
	sb.WriteString(text[cur:])
	return sb.String()
}

// expandTemplate expands the body of one {{...}} invocation: a magic word,
// a parser function or a template.
func (x *Extractor) expandTemplate(body string) string {
	depth := x.frames.Depth()
	if depth >= x.opts.maxDepth() {
		x.diag.record(ErrInvocationDepth, "%s", abbrev(body))
		return ""
	}
	log.Debugf("%*sEXPAND %s", depth, "", body)

	parts := SplitParts(body)
	title := x.Expand(strings.TrimSpace(parts[0]))

	// subst: applies the template to its parameters without expanding them
	subst := false
	if loc := substRE.FindStringIndex(title); loc != nil {
		title = title[loc[1]:]
		subst = true
	}

	if v, ok := x.magic[title]; ok {
		log.Debugf("%*s<EXPAND %s %s", depth, "", title, v)
		return v
	}

	// The first argument of a parser function is everything after the
	// first colon; it has been expanded with the title. Later arguments are
	// left to the function.
	if colon := strings.IndexByte(title, ':'); colon > 1 {
		name := title[:colon]
		if isParserFunction(name) {
			parts[0] = strings.TrimSpace(title[colon+1:])
			ret := x.callParserFunction(name, parts)
			log.Debugf("%*s<EXPAND %s %s", depth, "", name, ret)
			return ret
		}
	}

	title = x.qualifiedTemplateTitle(title)
	if title == "" {
		x.diag.record(ErrUnqualifiedTitle, "%q", parts[0])
		return ""
	}
	if target, ok := x.registry.RedirectTarget(title); ok && target != "" {
		title = target
	}
	if _, ok := x.frames.Find(title); ok {
		x.diag.record(ErrTemplateLoop, "%s", title)
		return ""
	}

	tpl, ok := x.registry.Template(title, x.compiler.Compile)
	if !ok {
		x.diag.record(ErrTemplateNotFound, "%s", title)
		log.Debugf("%*s<EXPAND %s %s", depth, "", title, "")
		return ""
	}
	log.Debugf("%*sTEMPLATE %s: %s", depth, "", title, tpl)

	params := parts[1:]
	if !subst {
		for i, p := range params {
			params[i] = x.Transform(p)
		}
	}
	args := TemplateParams(params)

	// the frame is pushed before substitution: defaults may recurse
	x.frames.Push(title, args)
	instantiated := x.compiler.Substitute(tpl, args, x)
	value := x.Transform(instantiated)
	x.frames.Pop()

	log.Debugf("%*s<EXPAND %s %s", depth, "", title, value)
	return value
}

// TemplateParams binds invocation parts to argument names. "name=value"
// parts are named, the rest are numbered from 1 in order. Values are trimmed
// unless they contain a link, which could otherwise glue to the following
// text. A later assignment to the same name wins.
func TemplateParams(parts []string) map[string]string {
	params := make(map[string]string, len(parts))
	positional := 0
	for _, p := range parts {
		if name, value, ok := strings.Cut(p, "="); ok {
			if !strings.Contains(value, "]]") {
				value = strings.TrimSpace(value)
			}
			params[strings.TrimSpace(name)] = value
			continue
		}
		positional++
		if !strings.Contains(p, "]]") {
			p = strings.TrimSpace(p)
		}
		params[strconv.Itoa(positional)] = p
	}
	return params
}

// qualifiedTemplateTitle resolves the namespace of a transcluded page. A
// leading colon selects the main namespace; a known namespace prefix is kept;
// anything else goes to the template namespace.
func (x *Extractor) qualifiedTemplateTitle(title string) string {
	if rest, ok := strings.CutPrefix(title, ":"); ok {
		return ucfirst(rest)
	}
	if prefix, rest, ok := strings.Cut(title, ":"); ok {
		prefix = ucfirst(prefix)
		if _, known := x.opts.KnownNamespaces[prefix]; known {
			return prefix + ":" + rest
		}
	}
	if title == "" {
		return ""
	}
	return x.opts.TemplatePrefix() + ucfirst(title)
}

func ucfirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func lcfirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return ""
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// abbrev shortens text for diagnostics.
func abbrev(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	i := limit
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "..."
}
