// balanced.go implements the generic nested-delimiter span finder.

package wikitext

import "strings"

// linkOpen and linkClose are the internal link delimiters.
var (
	linkOpen  = []string{"[["}
	linkClose = []string{"]]"}
)

// FindBalanced returns the outermost balanced spans delimited by the
// open/close pairs, in text order. open[i] is closed by close[i]. After an
// opening, only another opening or the close matching the innermost one is
// recognized, so nested pairs are consumed transparently. A trailing
// construct that never closes produces no span.
func FindBalanced(text string, open, close []string) []Span {
	var spans []Span
	var stack []int // indexes into open
	start := 0
	startSet := false
	cur := 0
	for {
		var pos, n, which int
		if len(stack) == 0 {
			pos, n, which = earliest(text, cur, open, "")
		} else {
			pos, n, which = earliest(text, cur, open, close[stack[len(stack)-1]])
		}
		if pos < 0 {
			return spans
		}
		if !startSet {
			start = pos
			startSet = true
		}
		if which >= 0 {
			stack = append(stack, which)
		} else {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				spans = append(spans, Span{Start: start, End: pos + n})
				startSet = false
			}
		}
		cur = pos + n
	}
}

// earliest finds the first occurrence at or after from of any delimiter in
// open, or of closing when non-empty. which is the index into open, or -1
// when closing matched. Openings win ties, in list order.
func earliest(text string, from int, open []string, closing string) (pos, n, which int) {
	pos, which = -1, -1
	rest := text[from:]
	for i, o := range open {
		if j := strings.Index(rest, o); j >= 0 && (pos < 0 || j < pos) {
			pos, n, which = j, len(o), i
		}
	}
	if closing != "" {
		if j := strings.Index(rest, closing); j >= 0 && (pos < 0 || j < pos) {
			pos, n, which = j, len(closing), -1
		}
	}
	if pos >= 0 {
		pos += from
	}
	return pos, n, which
}
