package extractor

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// MonetizationMarker appears in the inline player config of channels with
// monetization enabled.
const MonetizationMarker = `"is_monetization_enabled":true`

// tagDelimiter separates entries of the keywords meta tag.
const tagDelimiter = ","

// channelPathMarker precedes the channel id in canonical channel URLs.
const channelPathMarker = "/channel/"

// MonetizationDetector reports whether a rendered channel page signals
// monetization. Implementations must not fail on absence.
type MonetizationDetector interface {
	Monetized(doc *Document) bool
}

// MarkerDetector looks for a literal marker anywhere in the raw content.
type MarkerDetector struct {
	Marker string
}

// Monetized implements MonetizationDetector.
func (d MarkerDetector) Monetized(doc *Document) bool {
	return doc != nil && ContainsMarker(doc.Raw, d.Marker)
}

// ContainsMarker reports whether content contains marker. An empty marker
// never matches.
func ContainsMarker(content, marker string) bool {
	return marker != "" && strings.Contains(content, marker)
}

// SplitTags splits a keywords value on the tag delimiter, trims every part
// and drops empty ones. Order and duplicates are preserved.
func SplitTags(content string) []string {
	tags := []string{}
	for _, part := range strings.Split(content, tagDelimiter) {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ChannelIDFromURL returns the path segment following /channel/ in a
// channel URL. Query strings, fragments and trailing path segments are
// dropped.
func ChannelIDFromURL(channelURL string) (string, bool) {
	idx := strings.Index(channelURL, channelPathMarker)
	if idx < 0 {
		return "", false
	}
	rest := channelURL[idx+len(channelPathMarker):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	rest, err := url.PathUnescape(strings.TrimSpace(rest))
	if err != nil || rest == "" {
		return "", false
	}
	return rest, true
}

// attr returns the first non-empty trimmed value of attribute name on the
// elements matched by sel.
func attr(doc *Document, sel cascadia.Selector, name string) (string, bool) {
	var value string
	doc.DOM.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(name); ok {
			value = strings.TrimSpace(v)
		}
		return value == ""
	})
	return value, value != ""
}

// text returns the first non-empty trimmed, whitespace-collapsed text of the
// elements matched by sel.
func text(doc *Document, sel cascadia.Selector) (string, bool) {
	var value string
	doc.DOM.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value = collapseSpace(s.Text())
		return value == ""
	})
	return value, value != ""
}

// statisticPattern matches a count followed by keyword, e.g. "1.2M
// subscribers" or "1,024 videos". Handles and labels that merely contain
// the keyword do not match.
func statisticPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\d[\d.,\s\x{a0}\x{202f}]*[kmb]?\s*` + regexp.QuoteMeta(keyword))
}

// fragmentWithKeyword returns, among the fragments matched by sel that state
// a count of the statistic named by stat, the shortest one. Header rows nest
// the individual statistics inside a wrapper whose text contains all of
// them, so the shortest match is the statistic itself. Handles are skipped.
func fragmentWithKeyword(doc *Document, sel cascadia.Selector, stat *regexp.Regexp) (string, bool) {
	var value string
	doc.DOM.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
		t := collapseSpace(s.Text())
		if t == "" || strings.HasPrefix(t, "@") || !stat.MatchString(t) {
			return
		}
		if value == "" || len(t) < len(value) {
			value = t
		}
	})
	return value, value != ""
}

// rawMatch returns the first capture group of re in the raw content,
// decoded from its JSON string form.
func rawMatch(doc *Document, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(doc.Raw)
	if len(m) < 2 {
		return "", false
	}
	v := collapseSpace(unescapeJSON(m[1]))
	return v, v != ""
}

// jsonUnescaper decodes the common escapes of a string body that is not
// valid JSON on its own, e.g. one cut short by a length bound.
var jsonUnescaper = strings.NewReplacer(
	`\u0026`, "&",
	`\u00a0`, " ",
	`\/`, "/",
	`\"`, `"`,
	`\\`, `\`,
)

// unescapeJSON decodes the body of a JSON string literal.
func unescapeJSON(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	return jsonUnescaper.Replace(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
