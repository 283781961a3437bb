// split.go implements splitting of template bodies into pipe-separated parts.

package wikitext

import "strings"

// SplitParts splits the interior of a template or argument construct on
// top-level pipes. Pipes inside nested templates, arguments or links belong
// to the part that contains them. The result always has at least one part.
//
//	SplitParts("a|{{b|c}}|[[d|e]]") // ["a", "{{b|c}}", "[[d|e]]"]
func SplitParts(body string) []string {
	parts := []string{""}
	cur := 0
	add := func(chunk string) {
		pieces := strings.Split(chunk, "|")
		parts[len(parts)-1] += pieces[0]
		parts = append(parts, pieces[1:]...)
	}
	for span := range FindMatchingBraces(body, 0) {
		add(body[cur:span.Start])
		parts[len(parts)-1] += body[span.Start:span.End]
		cur = span.End
	}
	add(body[cur:])
	return parts
}
