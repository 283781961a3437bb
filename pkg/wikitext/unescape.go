// unescape.go resolves HTML character references.

package wikitext

import (
	"html"
	"regexp"
	"strconv"
	"unicode/utf8"
)

var charRefRE = regexp.MustCompile(`&#?(\w+);`)

// Unescape replaces named, decimal and hexadecimal character references with
// the characters they denote. Unknown or invalid references are left as is.
//
//	Unescape("&#65;&amp;") // "A&"
func Unescape(text string) string {
	return charRefRE.ReplaceAllStringFunc(text, unescapeRef)
}

func unescapeRef(ref string) string {
	if ref[1] == '#' {
		code := ref[2 : len(ref)-1]
		var n int64
		var err error
		if code[0] == 'x' || code[0] == 'X' {
			n, err = strconv.ParseInt(code[1:], 16, 32)
		} else {
			n, err = strconv.ParseInt(code, 10, 32)
		}
		if err != nil || n < 0 || !utf8.ValidRune(rune(n)) {
			return ref
		}
		return string(rune(n))
	}
	s := html.UnescapeString(ref)
	// legacy entities such as "&amp" match without their semicolon, so a
	// longer unknown name could be partially decoded
	if s == ref || utf8.RuneCountInString(s) > 2 {
		return ref
	}
	return s
}
