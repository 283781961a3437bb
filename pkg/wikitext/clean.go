// clean.go implements residual inline rewriting and structural markup stripping.

package wikitext

import (
	"fmt"
	"regexp"
	"strings"
)

// tagPattern matches the opening and closing tag of one element type.
type tagPattern struct {
	open, close *regexp.Regexp
}

// ignoredTagPattern matches the tags of an element whose content is kept.
func ignoredTagPattern(tag string) tagPattern {
	return tagPattern{
		open:  regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `\b.*?>`),
		close: regexp.MustCompile(`(?i)</\s*` + regexp.QuoteMeta(tag) + `>`),
	}
}

// discardTagPattern matches the tags of an element dropped with its content.
func discardTagPattern(tag string) tagPattern {
	return tagPattern{
		open:  regexp.MustCompile(`(?i)<\s*` + regexp.QuoteMeta(tag) + `\b[^>/]*>`),
		close: regexp.MustCompile(`(?i)<\s*/\s*` + regexp.QuoteMeta(tag) + `>`),
	}
}

// selfClosingTags are dropped in their <tag/> form.
var selfClosingTags = []string{"br", "hr", "nobr", "ref", "references", "nowiki"}

var selfClosingPatterns = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(selfClosingTags))
	for i, tag := range selfClosingTags {
		res[i] = regexp.MustCompile(`(?is)<\s*` + tag + `\b[^>]*/\s*>`)
	}
	return res
}()

// placeholderPatterns replace whole math and code elements with numbered
// tokens such as formula_1 and codice_2.
var placeholderPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?is)<\s*math(\s*| [^>]+?)>.*?<\s*/\s*math\s*>`), "formula"},
	{regexp.MustCompile(`(?is)<\s*code(\s*| [^>]+?)>.*?<\s*/\s*code\s*>`), "codice"},
}

var (
	spacesRE       = regexp.MustCompile(` {2,}`)
	dotsRE         = regexp.MustCompile(`\.{4,}`)
	spaceBeforeRE  = regexp.MustCompile(` ([,:.)\]»])`)
	spaceAfterRE   = regexp.MustCompile(`([\[(«]) `)
	punctLineRE    = regexp.MustCompile(`\n[^\p{L}\p{N}_]+?\n`)
	tableStyleRE   = regexp.MustCompile(`!\s?style="[a-z]+:\d+%;"`)
	tableStyle2RE  = regexp.MustCompile(`!\s?style="[a-z]+:\d+%;[a-z]+:#?[0-9a-z]*"`)
	tableOpenRE    = regexp.MustCompile(`\{\|`)
	tableCloseRE   = regexp.MustCompile(`\|\}`)
	boldItalicRE   = regexp.MustCompile(`'''''(.*?)'''''`)
	boldRE         = regexp.MustCompile(`'''(.*?)'''`)
	italicQuoteRE  = regexp.MustCompile(`''"([^"]*?)"''`)
	italicRE       = regexp.MustCompile(`''(.*?)''`)
	quoteQuoteRE   = regexp.MustCompile(`""([^"]*?)""`)
	syntaxHighRE   = regexp.MustCompile(`(?s)(?:<|&lt;)syntaxhighlight\b.*?(?:>|&gt;)(.*?)(?:<|&lt;)/syntaxhighlight(?:>|&gt;)`)
	disambiguateRE = regexp.MustCompile(`(?i)\{\{disambig(?:uation)?(?:\|[^}]*)?\}\}|__DISAMBIG__`)
)

// wiki2text performs residual inline rewriting on expanded text: leftover
// templates and tables, bold and italic markup, links, behavior switches and
// character references.
func (x *Extractor) wiki2text(text string) string {
	// residual templates go first, or an empty parameter |} would look like
	// the end of a table
	if !x.opts.KeepTables {
		text = DropNested(text, tplOpenRE, tplCloseRE)
		text = DropNested(text, tableOpenRE, tableCloseRE)
	}

	if x.opts.ToHTML {
		text = boldItalicRE.ReplaceAllString(text, "<b>$1</b>")
		text = boldRE.ReplaceAllString(text, "<b>$1</b>")
		text = italicRE.ReplaceAllString(text, "<i>$1</i>")
	} else {
		text = boldItalicRE.ReplaceAllString(text, "$1")
		text = boldRE.ReplaceAllString(text, "$1")
		text = italicQuoteRE.ReplaceAllString(text, `"$1"`)
		text = italicRE.ReplaceAllString(text, `"$1"`)
		text = quoteQuoteRE.ReplaceAllString(text, `"$1"`)
	}
	// unbalanced quotes
	text = strings.ReplaceAll(text, "'''", "")
	text = strings.ReplaceAll(text, "''", `"`)

	text = x.replaceInternalLinks(text)
	text = x.replaceExternalLinks(text)
	text = switchesRE.ReplaceAllString(text, "")

	// unescape, except the content of <syntaxhighlight>
	var sb strings.Builder
	cur := 0
	for _, m := range syntaxHighRE.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(Unescape(text[cur:m[0]]))
		sb.WriteString(text[m[2]:m[3]])
		cur = m[1]
	}
	sb.WriteString(Unescape(text[cur:]))
	return sb.String()
}

// clean strips comments and tags, drops discarded elements, replaces math
// and code with placeholders and normalizes spacing and punctuation.
func (x *Extractor) clean(text string) string {
	ignored, discard := x.opts.tagPatterns()

	var spans []Span
	collect := func(re *regexp.Regexp) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	collect(commentRE)
	for _, re := range selfClosingPatterns {
		collect(re)
	}
	for _, p := range ignored {
		collect(p.open)
		collect(p.close)
	}
	text = DropSpans(spans, text)

	for _, p := range discard {
		text = DropNested(text, p.open, p.close)
	}

	if !x.opts.ToHTML {
		text = Unescape(text)
	}

	for _, p := range placeholderPatterns {
		n := 0
		text = p.re.ReplaceAllStringFunc(text, func(string) string {
			n++
			return fmt.Sprintf("%s_%d", p.name, n)
		})
	}

	text = strings.ReplaceAll(text, "<<", "«")
	text = strings.ReplaceAll(text, ">>", "»")

	text = strings.ReplaceAll(text, "\t", " ")
	text = spacesRE.ReplaceAllString(text, " ")
	text = dotsRE.ReplaceAllString(text, "...")
	text = spaceBeforeRE.ReplaceAllString(text, "$1")
	text = spaceAfterRE.ReplaceAllString(text, "$1")
	text = punctLineRE.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, ",,", ",")
	text = strings.ReplaceAll(text, ",.", ".")

	if x.opts.KeepTables {
		// drop the markup around table cells but keep their content
		text = tableStyleRE.ReplaceAllString(text, "")
		text = tableStyle2RE.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, "|-", "")
		text = strings.ReplaceAll(text, "|", "")
	}
	return text
}
