// braces.go implements the delimiter matcher for {{...}}, {{{...}}} and [[...]] runs.

package wikitext

import "iter"

// Span is a half-open [Start, End) byte range into a text buffer.
type Span struct {
	Start, End int
}

// braceMatcher resolves ambiguous runs of braces and brackets into template
// and argument boundaries.
//
// Each open run is kept on a stack as a signed length: positive for braces,
// negative for brackets. A closing run of length L pops entries consuming up
// to L characters; a partially consumed entry is pushed back with its
// remainder. When the stack empties, the span runs from the first opening to
// the closing run, minus any leftover closing characters, which stay plain
// text. In case of ambiguity the rightmost opening wins, so {{{{ }}}} is
// { {{{ }}} } and {{{{{ }}}}} is {{ {{{ }}} }}.
type braceMatcher struct {
	text   string
	ldelim int
	cur    int
	done   bool

	// unbalanced is set when input ended while an opening run was pending.
	unbalanced bool
}

func newBraceMatcher(text string, ldelim int) *braceMatcher {
	return &braceMatcher{text: text, ldelim: ldelim}
}

// FindMatchingBraces yields non-overlapping spans of resolved constructs in
// text order. ldelim is the minimum opening brace run (2 for templates, 3 for
// argument placeholders); 0 matches doubled or tripled braces together with
// doubled brackets. Scanning stops at the first opening that never closes.
func FindMatchingBraces(text string, ldelim int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		m := newBraceMatcher(text, ldelim)
		for {
			span, ok := m.next()
			if !ok || !yield(span) {
				return
			}
		}
	}
}

// next returns the following span, or false once the scan is over.
func (m *braceMatcher) next() (Span, bool) {
	if m.done {
		return Span{}, false
	}
	text := m.text
outer:
	for {
		start, n, ok := m.findOpen(m.cur)
		if !ok {
			m.done = true
			return Span{}, false
		}
		var stack []int
		if text[start] == '{' {
			stack = []int{n}
		} else {
			stack = []int{-n}
		}
		end := start + n
		for {
			pos, lmatch, ok := m.findNext(end)
			if !ok {
				m.done = true
				m.unbalanced = true
				return Span{}, false
			}
			end = pos + lmatch

			switch text[pos] {
			case '{':
				stack = append(stack, lmatch)

			case '}':
				for len(stack) > 0 {
					open := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					if open == 0 { // illegal unmatched [[
						continue
					}
					if lmatch >= open {
						lmatch -= open
						if lmatch <= 1 { // closed, or a stray }
							break
						}
					} else {
						stack = append(stack, open-lmatch)
						break
					}
				}
				if len(stack) == 0 {
					m.cur = end
					return Span{Start: start, End: end - lmatch}, true
				}
				if len(stack) == 1 && stack[0] > 0 && stack[0] < m.ldelim {
					// ambiguous {{{{{ }}} }}: leftover braces are plain text
					m.cur = end
					continue outer
				}

			case '[':
				stack = append(stack, -lmatch)

			default: // ]]
				for len(stack) > 0 && stack[len(stack)-1] < 0 {
					open := -stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					if lmatch >= open {
						lmatch -= open
						if lmatch <= 1 { // closed, or a stray ]
							break
						}
					} else {
						stack = append(stack, lmatch-open)
						break
					}
				}
				if len(stack) == 0 {
					m.cur = end
					return Span{Start: start, End: end - lmatch}, true
				}
				// unmatched ]] are discarded
				m.cur = end
			}
		}
	}
}

// findOpen locates the next opening run at or after from.
func (m *braceMatcher) findOpen(from int) (pos, n int, ok bool) {
	if m.ldelim > 0 {
		return findRun(m.text, from, "{", m.ldelim)
	}
	return findRun(m.text, from, "{[", 2)
}

// findNext locates the next opening or closing run of length two or more.
func (m *braceMatcher) findNext(from int) (pos, n int, ok bool) {
	if m.ldelim > 0 {
		return findRun(m.text, from, "{}", 2)
	}
	return findRun(m.text, from, "{}[]", 2)
}

// findRun returns the first run of a single character from chars, at least
// minLen long, starting at or after from.
func findRun(text string, from int, chars string, minLen int) (pos, n int, ok bool) {
	for i := from; i < len(text); {
		c := text[i]
		if !isOneOf(c, chars) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == c {
			j++
		}
		if j-i >= minLen {
			return i, j - i, true
		}
		i = j
	}
	return 0, 0, false
}

func isOneOf(c byte, chars string) bool {
	for i := 0; i < len(chars); i++ {
		if chars[i] == c {
			return true
		}
	}
	return false
}
