// magicwords.go defines page and date derived magic words and behavioral switches.

package wikitext

import (
	"regexp"
	"strings"
	"time"
)

// MagicWords maps magic word names to their values for one page.
type MagicWords map[string]string

// newMagicWords builds the table for a page title. Namespace lookups use
// opts.KnownNamespaces; dates come from opts.Now.
func newMagicWords(title string, opts *Options) MagicWords {
	mw := MagicWords{"!": "|"}

	ns, pagename, ok := strings.Cut(title, ":")
	if !ok {
		ns, pagename = "", title
	}
	mw["NAMESPACE"] = ns
	if key, ok := opts.KnownNamespaces[ns]; ok {
		mw["NAMESPACENUMBER"] = key
	} else {
		mw["NAMESPACENUMBER"] = "0"
	}
	mw["PAGENAME"] = pagename
	mw["FULLPAGENAME"] = title
	if i := strings.LastIndexByte(pagename, '/'); i >= 0 {
		mw["BASEPAGENAME"] = pagename[:i]
		mw["SUBPAGENAME"] = pagename[i+1:]
	} else {
		mw["BASEPAGENAME"] = pagename
		mw["SUBPAGENAME"] = ""
	}
	root, _, _ := strings.Cut(pagename, "/")
	mw["ROOTPAGENAME"] = root

	now := opts.now()
	mw["CURRENTYEAR"] = now.Format("2006")
	mw["CURRENTMONTH"] = now.Format("01")
	mw["CURRENTDAY"] = now.Format("02")
	mw["CURRENTHOUR"] = now.Format("15")
	mw["CURRENTTIME"] = now.Format(time.TimeOnly)
	return mw
}

// behaviorSwitches are double-underscore keywords that only affect page
// rendering; they are removed from the text.
var behaviorSwitches = []string{
	"__NOTOC__",
	"__FORCETOC__",
	"__TOC__",
	"__NEWSECTIONLINK__",
	"__NONEWSECTIONLINK__",
	"__NOGALLERY__",
	"__HIDDENCAT__",
	"__NOCONTENTCONVERT__",
	"__NOCC__",
	"__NOTITLECONVERT__",
	"__NOTC__",
	"__START__",
	"__END__",
	"__INDEX__",
	"__NOINDEX__",
	"__STATICREDIRECT__",
	"__DISAMBIG__",
}

var switchesRE = regexp.MustCompile(strings.Join(behaviorSwitches, "|"))
