// parserfunc.go implements the parser-function interpreter.

package wikitext

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// parserFunc evaluates a parser function. args[0] is the already expanded
// text after the colon; the remaining arguments are raw and expanded by the
// function as its branching rules require.
type parserFunc func(x *Extractor, args []string) string

// parserFunctions maps lowercase function names to implementations. It is
// filled in init since the functions recurse into the orchestrator.
var parserFunctions map[string]parserFunc

func init() {
	parserFunctions = map[string]parserFunc{
		"#expr":    sharpExpr,
		"#if":      sharpIf,
		"#ifeq":    sharpIfeq,
		"#iferror": sharpIferror,
		"#ifexist": sharpIfexist,
		"#switch":  sharpSwitch,
		"#invoke":  sharpInvoke,

		"#ifexpr":     unsupported,
		"#rel2abs":    unsupported,
		"#language":   unsupported,
		"#time":       unsupported,
		"#timel":      unsupported,
		"#titleparts": unsupported,

		"urlencode": func(_ *Extractor, args []string) string { return quote(args[0]) },
		"lc":        func(_ *Extractor, args []string) string { return strings.ToLower(args[0]) },
		"uc":        func(_ *Extractor, args []string) string { return strings.ToUpper(args[0]) },
		"lcfirst":   func(_ *Extractor, args []string) string { return lcfirst(args[0]) },
		"ucfirst":   func(_ *Extractor, args []string) string { return ucfirst(args[0]) },
		"int":       sharpInt,
	}
}

// isParserFunction reports whether an invocation title prefix names a
// parser function rather than a namespace. Unknown #-names are parser
// functions that evaluate to nothing.
func isParserFunction(name string) bool {
	if strings.HasPrefix(name, "#") {
		return true
	}
	_, ok := parserFunctions[strings.ToLower(name)]
	return ok
}

// callParserFunction dispatches a parser function call (name is matched
// case-insensitively). Unknown functions yield empty text.
func (x *Extractor) callParserFunction(name string, args []string) string {
	fn, ok := parserFunctions[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return fn(x, args)
}

func unsupported(*Extractor, []string) string { return "" }

// arg returns args[i], or "" when absent.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// sharpIf: {{#if: test | then | else}}. The condition is true when the
// trimmed test is non-empty.
func sharpIf(x *Extractor, args []string) string {
	if strings.TrimSpace(args[0]) != "" {
		return x.Expand(strings.TrimSpace(arg(args, 1)))
	}
	if e := arg(args, 2); e != "" {
		return x.Expand(strings.TrimSpace(e))
	}
	return ""
}

// sharpIfeq: {{#ifeq: a | b | then | else}}. Both operands are expanded and
// trimmed; comparison is on strings.
func sharpIfeq(x *Extractor, args []string) string {
	lvalue := strings.TrimSpace(args[0])
	rvalue := strings.TrimSpace(x.Expand(arg(args, 1)))
	branch := arg(args, 3)
	if lvalue == rvalue {
		branch = arg(args, 2)
	}
	if branch == "" {
		return ""
	}
	return x.Expand(strings.TrimSpace(branch))
}

var errorMarkerRE = regexp.MustCompile(`^<(?:strong|span|p|div)\s(?:[^\s>]*\s+)*?class="(?:[^"\s>]*\s+)*?error(?:\s[^">]*)?"`)

// sharpIferror: {{#iferror: test | then | else}}. Without an else branch a
// test that is not an error evaluates to itself.
func sharpIferror(x *Extractor, args []string) string {
	test := args[0]
	if errorMarkerRE.MatchString(test) {
		return x.Expand(strings.TrimSpace(arg(args, 1)))
	}
	if len(args) < 3 {
		return strings.TrimSpace(test)
	}
	return x.Expand(strings.TrimSpace(args[2]))
}

// sharpIfexist assumes the page does not exist.
func sharpIfexist(x *Extractor, args []string) string {
	if len(args) < 3 {
		return ""
	}
	return x.Expand(strings.TrimSpace(args[2]))
}

// sharpSwitch: {{#switch: primary | a=1 | b | c=2 | #default=3}}.
//
// Case labels are expanded in order until one matches. A label without
// value falls through to the next valued case. Without a match the result
// is the #default value, else a trailing unvalued case, else empty.
func sharpSwitch(x *Extractor, args []string) string {
	primary := strings.TrimSpace(args[0])
	found := false
	var dflt *string
	dangling := ""
	hasDangling := false
	for _, param := range args[1:] {
		label, value, valued := strings.Cut(param, "=")
		lvalue := x.Expand(strings.TrimSpace(label))
		if !valued {
			hasDangling = true
			dangling = lvalue
			if lvalue == primary {
				found = true
			}
			continue
		}
		hasDangling = false
		if found || matchesAlternative(primary, lvalue) {
			return x.Expand(strings.TrimSpace(value))
		}
		if lvalue == "#default" {
			v := x.Expand(strings.TrimSpace(value))
			dflt = &v
		}
	}
	if dflt != nil {
		return *dflt
	}
	if hasDangling {
		return dangling
	}
	return ""
}

// matchesAlternative reports whether primary equals one of the
// pipe-separated alternatives of an expanded label.
func matchesAlternative(primary, label string) bool {
	for _, alt := range strings.Split(label, "|") {
		if strings.TrimSpace(alt) == primary {
			return true
		}
	}
	return false
}

// sharpExpr evaluates an arithmetic expression. Failures produce an inline
// error marker holding the expression.
func sharpExpr(x *Extractor, args []string) string {
	expr := x.Expand(args[0])
	v, err := EvalExpr(expr)
	if err != nil {
		x.diag.record(ErrExpression, "%q: %v", expr, err)
		return `<span class="error">` + expr + `</span>`
	}
	return v
}

func sharpInt(_ *Extractor, args []string) string {
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return ""
	}
	return strconv.Itoa(n)
}

// sharpInvoke: {{#invoke: module | function | args...}}. With no extra
// arguments the function receives the arguments of the invoking template
// frame.
func sharpInvoke(x *Extractor, args []string) string {
	if len(args) < 2 {
		return ""
	}
	module, fn := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	depth := x.frames.Depth()
	log.Debugf("%*s#invoke %s %s %v", depth, "", module, fn, args[2:])

	var params map[string]string
	if len(args) == 2 {
		if f, ok := x.frames.Find(x.qualifiedTemplateTitle(module)); ok {
			params = f.Args
		} else if f, ok := x.frames.Top(); ok {
			params = f.Args
		}
	} else {
		rest := make([]string, len(args)-2)
		for i, a := range args[2:] {
			rest[i] = x.Transform(a)
		}
		params = TemplateParams(rest)
	}
	if params == nil {
		params = map[string]string{}
	}
	ret := x.invokeModule(module, fn, params)
	log.Debugf("%*s<#invoke %s %s %s", depth, "", module, fn, ret)
	return ret
}

// invokeModule runs a builtin module function. Errors and panics degrade
// to empty text.
func (x *Extractor) invokeModule(module, fn string, params map[string]string) (ret string) {
	f, ok := LookupModule(module, fn)
	if !ok {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			x.diag.record(ErrModuleFault, "%s.%s: %v", module, fn, r)
			ret = ""
		}
	}()
	out, err := f(params)
	if err != nil {
		x.diag.record(ErrModuleFault, "%s.%s: %v", module, fn, err)
		return ""
	}
	return out
}

// quote percent-encodes every byte of s except letters, digits, "-_.~"
// and "/". Spaces become %20.
func quote(s string) string {
	q := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return strings.ReplaceAll(q, "%2F", "/")
}
