// links.go implements the link resolver for internal and external links.

package wikitext

import (
	"html"
	"regexp"
	"strings"
)

// urlProtocols are the schemes recognized in bracketed external links.
var urlProtocols = []string{
	"bitcoin:", "ftp://", "ftps://", "geo:", "git://", "gopher://", "http://",
	"https://", "irc://", "ircs://", "magnet:", "mailto:", "mms://", "news:",
	"nntp://", "redis://", "sftp://", "sip:", "sips:", "sms:", "ssh://",
	"svn://", "tel:", "telnet://", "urn:", "worldwind://", "xmpp:", "//",
}

const (
	extLinkURLClass = `[^\]\[<>"\x00-\x20\x7F\s]`
	anchorClass     = `[^\]\[\x00-\x08\x0a-\x1F]`
)

var (
	// [URL label]: group 1 is the URL, group 2 the label
	extLinkRE = regexp.MustCompile(`(?s)\[((?i:` + protocolAlternation() + `)` + extLinkURLClass + `+)` +
		`\s*((?:` + anchorClass + `|\[\[` + anchorClass + `+\]\])*?)\]`)

	extImageRE = regexp.MustCompile(`(?i)^(?:http://|https://)` + extLinkURLClass + `+` +
		`/[A-Za-z0-9_.,~%\-+&;#*?!=()@\x{80}-\x{FF}]+\.(?:gif|png|jpg|jpeg)$`)

	// word run following ]] that joins the label
	linkTrailRE = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_]+`)
)

func protocolAlternation() string {
	quoted := make([]string, len(urlProtocols))
	for i, p := range urlProtocols {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, "|")
}

// replaceInternalLinks rewrites [[title|...|label]]trail. The label is the
// text after the last top-level pipe, or the title; a trailing word run is
// appended to it, as in [[cat]]s.
func (x *Extractor) replaceInternalLinks(text string) string {
	var sb strings.Builder
	cur := 0
	for _, span := range FindBalanced(text, linkOpen, linkClose) {
		end := span.End
		trail := linkTrailRE.FindString(text[end:])
		end += len(trail)

		title, label := splitLink(text[span.Start+2 : span.End-2])
		sb.WriteString(text[cur:span.Start])
		sb.WriteString(x.makeInternalLink(title, label, trail))
		cur = end
	}
	sb.WriteString(text[cur:])
	return sb.String()
}

// splitLink separates a link interior into title and label. Pipes inside
// nested links are skipped.
func splitLink(inner string) (title, label string) {
	pipe := strings.IndexByte(inner, '|')
	if pipe < 0 {
		return inner, inner
	}
	title = strings.TrimRight(inner[:pipe], " \t\n\r\f\v")
	curp := pipe + 1
	for _, s := range FindBalanced(inner, linkOpen, linkClose) {
		if s.Start > curp {
			if last := strings.LastIndexByte(inner[curp:s.Start], '|'); last >= 0 {
				pipe = curp + last
			}
		}
		if s.End > curp {
			curp = s.End
		}
	}
	if last := strings.LastIndexByte(inner[curp:], '|'); last >= 0 {
		pipe = curp + last
	}
	return title, strings.TrimSpace(inner[pipe+1:])
}

// makeInternalLink renders a link, or only its trail when the namespace is
// not accepted. A leading colon (as in [[:File:x]]) is checked against the
// inner prefix.
func (x *Extractor) makeInternalLink(title, label, trail string) string {
	colon := strings.IndexByte(title, ':')
	if colon > 0 && !x.opts.acceptsNamespace(title[:colon]) {
		return trail
	}
	if colon == 0 {
		if colon2 := strings.IndexByte(title[1:], ':') + 1; colon2 > 1 && !x.opts.acceptsNamespace(title[1:colon2]) {
			return trail
		}
	}
	if x.opts.KeepLinks {
		return `<a href="` + quote(title) + `">` + label + trail + `</a>`
	}
	return label + trail
}

// replaceExternalLinks rewrites [URL label]. A label that is itself an image
// URL becomes an image reference.
func (x *Extractor) replaceExternalLinks(text string) string {
	var sb strings.Builder
	cur := 0
	for _, m := range extLinkRE.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(text[cur:m[0]])
		cur = m[1]
		url := text[m[2]:m[3]]
		label := text[m[4]:m[5]]
		if extImageRE.MatchString(label) {
			label = x.makeExternalImage(label)
		}
		sb.WriteString(x.makeExternalLink(url, label))
	}
	sb.WriteString(text[cur:])
	return sb.String()
}

func (x *Extractor) makeExternalLink(url, anchor string) string {
	if x.opts.KeepLinks {
		return `<a href="` + html.EscapeString(url) + `">` + anchor + `</a>`
	}
	return anchor
}

func (x *Extractor) makeExternalImage(url string) string {
	if x.opts.KeepLinks {
		return `<img src="` + html.EscapeString(url) + `" alt="">`
	}
	return ""
}
