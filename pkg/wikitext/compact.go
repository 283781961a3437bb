// compact.go implements line-oriented compaction of cleaned text: section
// headers, lists, empty sections and residual table lines.

package wikitext

import (
	"fmt"
	"sort"
	"strings"
)

// listMarkup holds the HTML open, close and item templates of one list kind.
type listMarkup struct {
	open, close, item string
}

var listKinds = map[byte]listMarkup{
	'*': {"<ul>", "</ul>", "<li>%s</li>"},
	'#': {"<ol>", "</ol>", "<li>%s</li>"},
	';': {"<dl>", "</dl>", "<dt>%s</dt>"},
	':': {"<dl>", "</dl>", "<dd>%s</dd>"},
}

func isListMarker(c byte) bool {
	return c == '*' || c == '#' || c == ';' || c == ':'
}

// compactor carries the state of one compaction pass.
type compactor struct {
	opts *Options

	page         []string
	headers      map[int]string // pending headers of unfilled sections, by level
	emptySection bool           // empty sections are discarded
	listLevel    []byte         // nesting of open lists
	listCount    []int          // item count per open list
}

// compact turns cleaned text into output lines.
func (x *Extractor) compact(text string) []string {
	c := &compactor{opts: x.opts, headers: map[int]string{}}
	for _, line := range strings.Split(text, "\n") {
		c.line(line)
	}
	c.closeLists()
	return c.page
}

func (c *compactor) emit(s string) {
	c.page = append(c.page, s)
}

// closeLists closes every open list level.
func (c *compactor) closeLists() {
	if c.opts.ToHTML {
		for i := len(c.listLevel) - 1; i >= 0; i-- {
			c.emit(listKinds[c.listLevel[i]].close)
		}
	}
	c.listLevel = nil
	c.listCount = nil
}

func (c *compactor) popList() {
	last := c.listLevel[len(c.listLevel)-1]
	if c.opts.ToHTML {
		c.emit(listKinds[last].close)
	}
	c.listLevel = c.listLevel[:len(c.listLevel)-1]
	c.listCount = c.listCount[:len(c.listCount)-1]
}

// flushHeaders emits pending headers in ascending level order.
func (c *compactor) flushHeaders() {
	if c.opts.KeepSections {
		levels := make([]int, 0, len(c.headers))
		for lev := range c.headers {
			levels = append(levels, lev)
		}
		sort.Ints(levels)
		for _, lev := range levels {
			c.emit(c.headers[lev])
		}
	}
	clear(c.headers)
}

func (c *compactor) line(line string) {
	if line == "" {
		// collapse empty lines; a blank line ends any open list
		if len(c.listLevel) > 0 {
			c.emit(line)
			c.closeLists()
			c.emptySection = false
		} else if len(c.page) > 0 && c.page[len(c.page)-1] != "" {
			c.emit("")
		}
		return
	}

	if lev, title, ok := sectionHeader(line); ok {
		c.closeLists()
		if c.opts.ToHTML {
			c.emit(fmt.Sprintf("<h%d>%s</h%d>", lev, title, lev))
		}
		if title != "" && !strings.HasSuffix(title, "!") && !strings.HasSuffix(title, "?") {
			title += "." // terminate sentence
		}
		c.headers[lev] = title
		for l := range c.headers {
			if l > lev {
				delete(c.headers, l)
			}
		}
		c.emptySection = true
		return
	}

	switch {
	case strings.HasPrefix(line, "++"):
		// page title
		if len(line) > 4 {
			title := line[2 : len(line)-2]
			if !strings.HasSuffix(title, "!") && !strings.HasSuffix(title, "?") {
				title += "."
			}
			c.emit(title)
		}

	case line[0] == ':':
		// indents are dropped

	case isListMarker(line[0]):
		c.listItem(line)

	case len(c.listLevel) > 0:
		c.closeLists()
		c.emit(line)

	case line[0] == '{' || line[0] == '|' || line[len(line)-1] == '}':
		// residuals of tables

	case line[0] == '(' && line[len(line)-1] == ')', strings.Trim(line, ".-") == "":
		// irrelevant lines

	case len(c.headers) > 0:
		c.flushHeaders()
		c.emit(line)
		c.emptySection = false

	case !c.emptySection:
		// lines starting with a space are preformatted
		if line[0] != ' ' {
			c.emit(line)
		}
	}
}

// listItem re-nests lists to the marker prefix of line and emits its item.
func (c *compactor) listItem(line string) {
	levels := append([]byte(nil), c.listLevel...)
	i := 0
	for k := 0; k < max(len(levels), len(line)); k++ {
		var cur, next byte
		if k < len(levels) {
			cur = levels[k]
		}
		if k < len(line) {
			next = line[k]
		}
		if next == 0 || !isListMarker(next) {
			// shorter or different: close the deeper level
			if cur != 0 {
				c.popList()
				continue
			}
			break
		}
		if cur != next && (cur == 0 || (cur != ';' && cur != ':' && next != ';' && next != ':')) {
			if cur != 0 {
				c.popList()
			}
			c.listLevel = append(c.listLevel, next)
			c.listCount = append(c.listCount, 0)
			if c.opts.ToHTML {
				c.emit(listKinds[next].open)
			}
		}
		i++
	}
	marker := line[i-1]
	item := strings.TrimSpace(line[i:])
	if item == "" {
		return
	}
	switch {
	case c.opts.KeepLists:
		if c.opts.KeepSections {
			c.flushHeaders()
		}
		clear(c.headers)
		bullet := "- "
		if i-1 < len(c.listCount) {
			c.listCount[i-1]++
			if marker == '#' {
				bullet = fmt.Sprintf("%d. ", c.listCount[i-1])
			}
		}
		c.emit(fmt.Sprintf("%-*s", len(c.listLevel), bullet) + item)
	case c.opts.ToHTML:
		kind, ok := listKinds[marker]
		if !ok {
			kind = listKinds['*']
		}
		c.emit(fmt.Sprintf(kind.item, item))
	}
}

// sectionHeader recognizes "== Title ==" at the start of line, with any
// level of two or more equal signs.
func sectionHeader(line string) (level int, title string, ok bool) {
	run := 0
	for run < len(line) && line[run] == '=' {
		run++
	}
	for n := run; n >= 2; n-- {
		rest := line[n:]
		if idx := strings.Index(rest, strings.Repeat("=", n)); idx >= 0 {
			return n, strings.TrimSpace(rest[:idx]), true
		}
	}
	return 0, "", false
}
