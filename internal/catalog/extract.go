package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Entry is one (Bulletin code, display name) pair scraped from a page.
type Entry struct {
	Code int64
	Name string
}

// Page is the extraction result for one raw page body. Entries is the
// finite record sequence; Years collects every 4-digit year token found in
// table cells on the page. The year tokens cannot be bound to individual
// entries by this extraction method, so they only feed the page-level
// stop heuristic.
type Page struct {
	Entries []Entry
	Years   []int
}

// MinYear returns the smallest year token on the page. ok is false when
// the page carried no year tokens, in which case the year-floor heuristic
// is inapplicable.
func (p *Page) MinYear() (int, bool) {
	if len(p.Years) == 0 {
		return 0, false
	}
	min := p.Years[0]
	for _, y := range p.Years[1:] {
		if y < min {
			min = y
		}
	}
	return min, true
}

var (
	codeRe = regexp.MustCompile(`(?i)code=(\d+)`)
	yearRe = regexp.MustCompile(`^\d{4}$`)
)

// Extract parses one page body. Result rows link each record name through
// an anchor whose href carries the Bulletin code; the anchor text is the
// display name, sometimes wrapped in extra markup or entity-encoded
// spaces, which goquery strips for us.
//
// A body the parser cannot make sense of yields zero entries rather than
// an error: an empty result is ambiguous between an exhausted source and a
// transient failure, and only the orchestrator's stop heuristics can tell
// the two apart.
func Extract(body string) *Page {
	page := &Page{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return page
	}

	// The code= match is case-insensitive on the regex rather than a CSS
	// attribute selector, mirroring how the source actually emits hrefs.
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := codeRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		code, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || code <= 0 {
			return
		}
		name := strings.TrimSpace(strings.ReplaceAll(a.Text(), " ", " "))
		if name == "" {
			return
		}
		page.Entries = append(page.Entries, Entry{Code: code, Name: name})
	})

	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		text := strings.TrimSpace(td.Text())
		if !yearRe.MatchString(text) {
			return
		}
		year, err := strconv.Atoi(text)
		if err != nil {
			return
		}
		page.Years = append(page.Years, year)
	})

	return page
}
