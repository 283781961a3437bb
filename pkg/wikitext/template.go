// template.go implements the default template compiler: splitting a body into
// literal text and {{{name|default}}} argument placeholders.

package wikitext

import "strings"

// Template is a compiled template body: a sequence of literal text pieces
// and argument placeholders.
type Template struct {
	pieces []piece
}

// piece is either literal text or, when arg is set, a placeholder.
type piece struct {
	text string
	arg  *placeholder
}

// placeholder is a {{{name|default}}} argument reference. The name and the
// default are themselves templates since both may contain placeholders.
type placeholder struct {
	name *Template
	dflt *Template // nil when no default was given
}

// Compiler turns raw template bodies into Templates and instantiates them
// against bound arguments. Substitute returns text that may still contain
// unexpanded invocations; the caller expands it further.
type Compiler interface {
	Compile(source string) *Template
	Substitute(t *Template, args map[string]string, x *Extractor) string
}

// PlaceholderCompiler is the default Compiler.
type PlaceholderCompiler struct{}

// Compile implements Compiler.
func (PlaceholderCompiler) Compile(source string) *Template {
	return compileTemplate(source)
}

// Substitute implements Compiler.
func (PlaceholderCompiler) Substitute(t *Template, args map[string]string, x *Extractor) string {
	return t.subst(args, x, 0)
}

func compileTemplate(body string) *Template {
	t := &Template{}
	start := 0
	for span := range FindMatchingBraces(body, 3) {
		t.pieces = append(t.pieces,
			piece{text: body[start:span.Start]},
			piece{arg: compilePlaceholder(body[span.Start+3 : span.End-3])})
		start = span.End
	}
	t.pieces = append(t.pieces, piece{text: body[start:]})
	return t
}

// compilePlaceholder parses "name|default". Parts after the default are
// ignored and an equals sign in the name is plain text.
func compilePlaceholder(inner string) *placeholder {
	parts := SplitParts(inner)
	p := &placeholder{name: compileTemplate(parts[0])}
	if len(parts) > 1 {
		p.dflt = compileTemplate(parts[1])
	}
	return p
}

func (t *Template) subst(args map[string]string, x *Extractor, depth int) string {
	if depth > x.opts.maxDepth() {
		x.diag.record(ErrParameterDepth, "placeholder nesting at depth %d", depth)
		return ""
	}
	var sb strings.Builder
	for _, p := range t.pieces {
		if p.arg == nil {
			sb.WriteString(p.text)
			continue
		}
		sb.WriteString(p.arg.subst(args, x, depth))
	}
	return sb.String()
}

// subst resolves the placeholder: the name is itself substituted and
// expanded, then looked up in args, falling back to the expanded default.
// A missing argument without default yields empty text.
func (p *placeholder) subst(args map[string]string, x *Extractor, depth int) string {
	name := p.name.subst(args, x, depth+1)
	name = strings.TrimSpace(x.Transform(name))
	if v, ok := args[name]; ok {
		return v
	}
	if p.dflt != nil {
		return x.Transform(p.dflt.subst(args, x, depth+1))
	}
	return ""
}

// String renders the template back in placeholder syntax.
func (t *Template) String() string {
	var sb strings.Builder
	for _, p := range t.pieces {
		if p.arg == nil {
			sb.WriteString(p.text)
			continue
		}
		sb.WriteString("{{{")
		sb.WriteString(p.arg.name.String())
		if p.arg.dflt != nil {
			sb.WriteString("|")
			sb.WriteString(p.arg.dflt.String())
		}
		sb.WriteString("}}}")
	}
	return sb.String()
}
