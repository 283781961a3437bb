// drop.go implements bulk span removal and nested open/close tag dropping.

package wikitext

import (
	"regexp"
	"slices"
	"strings"
)

// DropSpans removes the given spans from text. Spans may overlap or nest:
// they are sorted and any span starting before the end of a previously
// dropped one is skipped.
func DropSpans(spans []Span, text string) string {
	slices.SortFunc(spans, func(a, b Span) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
	var sb strings.Builder
	offset := 0
	for _, s := range spans {
		if offset <= s.Start {
			sb.WriteString(text[offset:s.Start])
			offset = s.End
		}
	}
	if offset < len(text) {
		sb.WriteString(text[offset:])
	}
	return sb.String()
}

// DropNested removes every block opened by openRE and closed by closeRE,
// tracking nesting depth by alternating scans for the next opening or
// closing match. Pending levels are closed at end of text when the input is
// unbalanced.
func DropNested(text string, openRE, closeRE *regexp.Regexp) string {
	start := searchFrom(openRE, text, 0)
	if start == nil {
		return text
	}
	var spans []Span
	nest := 0
	end := searchFrom(closeRE, text, start[1])
	next := start
	for end != nil {
		next = searchFrom(openRE, text, next[1])
		if next == nil {
			// close all pending levels
			for ; nest > 0; nest-- {
				end0 := searchFrom(closeRE, text, end[1])
				if end0 == nil {
					break
				}
				end = end0
			}
			spans = append(spans, Span{Start: start[0], End: end[1]})
			break
		}
		advanced := false
		for end[1] < next[0] {
			if nest > 0 {
				nest--
				last := end[1]
				end = searchFrom(closeRE, text, end[1])
				if end == nil {
					s := start[0]
					if len(spans) > 0 {
						s = spans[0].Start
					}
					spans = []Span{{Start: s, End: last}}
					break
				}
			} else {
				spans = append(spans, Span{Start: start[0], End: end[1]})
				start = next
				advanced = true
				end = searchFrom(closeRE, text, next[1])
				break
			}
		}
		if !advanced {
			nest++
		}
	}
	return DropSpans(spans, text)
}

// searchFrom returns the absolute location of the first match of re in text
// at or after pos, or nil.
func searchFrom(re *regexp.Regexp, text string, pos int) []int {
	if pos > len(text) {
		return nil
	}
	loc := re.FindStringIndex(text[pos:])
	if loc == nil {
		return nil
	}
	return []int{loc[0] + pos, loc[1] + pos}
}
