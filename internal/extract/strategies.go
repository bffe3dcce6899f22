package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// conductorStrategy attempts to pull the conductor name out of one historical
// page layout. Strategies run in priority order and the first match wins;
// adding support for a new markup generation is a single list insertion.
type conductorStrategy interface {
	Name() string
	Extract(page *document) (string, bool)
}

// document bundles the raw page text with a lazily parsed DOM so strategies
// that need structure do not re-parse per attempt.
type document struct {
	raw string
	dom *goquery.Document
}

func newDocument(body []byte) *document {
	d := &document{raw: string(body)}
	if dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		d.dom = dom
	}
	return d
}

// conductorStrategies is the fallback chain, newest markup generation first.
var conductorStrategies = []conductorStrategy{
	headingStrategy{},
	attributeStrategy{},
	subheadSpanStrategy{},
	labelSpanStrategy{},
}

// headingStrategy matches the modern layout: an h3 heading reading
// "Conductor" immediately followed by a paragraph with the name.
type headingStrategy struct{}

func (headingStrategy) Name() string { return "heading" }

func (headingStrategy) Extract(page *document) (string, bool) {
	if page.dom == nil {
		return "", false
	}
	var conductor string
	page.dom.Find("h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(sel.Text()), "conductor") {
			return true
		}
		next := sel.Next()
		if !next.Is("p") {
			return true
		}
		if name := strings.TrimSpace(next.Text()); name != "" {
			conductor = name
			return false
		}
		return true
	})
	return conductor, conductor != ""
}

// attributeStrategy matches pages that embed the name in a data-conductor
// attribute.
type attributeStrategy struct{}

var dataConductorPattern = regexp.MustCompile(`(?i)data-conductor="([^"]+)"`)

func (attributeStrategy) Name() string { return "attribute" }

func (attributeStrategy) Extract(page *document) (string, bool) {
	m := dataConductorPattern.FindStringSubmatch(page.raw)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// subheadSpanStrategy matches the older generation: a span with a "subhead"
// class reading "Conductor" followed by a span with the name. The legacy
// markup is not reliably well formed, so this stays a regex rather than a
// selector query.
type subheadSpanStrategy struct{}

var subheadSpanPattern = regexp.MustCompile(`(?is)<span[^>]*class="[^"]*subhead[^"]*"[^>]*>conductor</span>\s*<span[^>]*>([^<]+)</span>`)

func (subheadSpanStrategy) Name() string { return "subhead-span" }

func (subheadSpanStrategy) Extract(page *document) (string, bool) {
	m := subheadSpanPattern.FindStringSubmatch(page.raw)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// labelSpanStrategy matches the alternate label/value span layout where the
// label span closes right after the word "conductor".
type labelSpanStrategy struct{}

var labelSpanPattern = regexp.MustCompile(`(?i)conductor[:\s]*</span>\s*<span[^>]*>([^<]+)</span>`)

func (labelSpanStrategy) Name() string { return "label-span" }

func (labelSpanStrategy) Extract(page *document) (string, bool) {
	m := labelSpanPattern.FindStringSubmatch(page.raw)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}
