package extractor

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Strategy reads one candidate value for a field. Read reports false when
// the value is absent; it never returns an error for absence.
type Strategy struct {
	Name string
	Read func(doc *Document) (string, bool)
}

// Chain is an ordered list of strategies for one field. The first strategy
// producing non-empty trimmed text wins.
type Chain []Strategy

// Resolve runs the chain and returns the winning value and the name of the
// strategy that produced it. A strategy that panics is skipped.
func (c Chain) Resolve(doc *Document) (value, source string, ok bool) {
	for _, s := range c {
		v, found := s.safeRead(doc)
		if !found {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, s.Name, true
		}
	}
	return "", "", false
}

// safeRead isolates markup-coupled reads: a crashing strategy is reported
// as "not found" so the rest of the chain still runs.
func (s Strategy) safeRead(doc *Document) (value string, found bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extractor: strategy panicked, treating as not found",
				"strategy", s.Name,
				"panic", fmt.Sprint(r),
			)
			value, found = "", false
		}
	}()
	if s.Read == nil || doc == nil || doc.DOM == nil {
		return "", false
	}
	return s.Read(doc)
}

// MetaContent reads the content attribute of the first matching meta tag.
func MetaContent(name, selector string) Strategy {
	return AttrOf(name, selector, "content")
}

// AttrOf reads attribute attrName of the first element matching selector
// that carries a non-empty value.
func AttrOf(name, selector, attrName string) Strategy {
	sel := cascadia.MustCompile(selector)
	return Strategy{
		Name: name,
		Read: func(doc *Document) (string, bool) {
			return attr(doc, sel, attrName)
		},
	}
}

// ElementText reads the text of the first matching element with non-empty text.
func ElementText(name, selector string) Strategy {
	sel := cascadia.MustCompile(selector)
	return Strategy{
		Name: name,
		Read: func(doc *Document) (string, bool) {
			return text(doc, sel)
		},
	}
}

// KeywordFragment picks, among the elements matching selector, the fragment
// stating a count followed by keyword. Used where one container renders
// several statistics and the channel handle side by side.
func KeywordFragment(name, selector, keyword string) Strategy {
	sel := cascadia.MustCompile(selector)
	stat := statisticPattern(keyword)
	return Strategy{
		Name: name,
		Read: func(doc *Document) (string, bool) {
			return fragmentWithKeyword(doc, sel, stat)
		},
	}
}

// RawPattern reads the first capture group of pattern from the raw content.
func RawPattern(name, pattern string) Strategy {
	re := regexp.MustCompile(pattern)
	return Strategy{
		Name: name,
		Read: func(doc *Document) (string, bool) {
			return rawMatch(doc, re)
		},
	}
}

// Map post-processes the value read by s. fn may reject the value.
func Map(s Strategy, fn func(string) (string, bool)) Strategy {
	return Strategy{
		Name: s.Name,
		Read: func(doc *Document) (string, bool) {
			v, ok := s.Read(doc)
			if !ok {
				return "", false
			}
			return fn(v)
		},
	}
}

// trimTitleSuffix removes the site suffix from a document title. The bare
// site title shown while a page is still loading is rejected.
func trimTitleSuffix(title string) (string, bool) {
	title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), "- YouTube"))
	if title == "" || title == "YouTube" {
		return "", false
	}
	return title, true
}

// Strategies reading the channel URL; also the base of channel id derivation.
var channelURLStrategies = []Strategy{
	MetaContent("og:url", `meta[property="og:url"]`),
	AttrOf("canonical-link", `link[rel="canonical"]`, "href"),
	MetaContent("al:web:url", `meta[property="al:web:url"]`),
}

// DefaultNameChain reads the channel display name.
func DefaultNameChain() Chain {
	return Chain{
		MetaContent("og:title", `meta[property="og:title"]`),
		MetaContent("meta-title", `meta[name="title"]`),
		ElementText("page-header-title", `yt-page-header-renderer h1, yt-dynamic-text-view-model h1`),
		ElementText("channel-name", `#channel-name #text, ytd-channel-name #text`),
		Map(ElementText("document-title", `title`), trimTitleSuffix),
	}
}

// DefaultSubscribersChain reads the rendered subscriber count.
func DefaultSubscribersChain() Chain {
	return Chain{
		ElementText("subscriber-count", `#subscriber-count`),
		KeywordFragment("header-metadata", `yt-content-metadata-view-model span`, "subscriber"),
		RawPattern("subscriber-count-text", `(?s)"subscriberCountText":\{.{0,300}?"simpleText":"((?:[^"\\]|\\.)+)"`),
		RawPattern("header-metadata-json", `"content":"((?:[^"\\]|\\.){1,40} subscribers?)"`),
	}
}

// DefaultVideoCountChain reads the rendered video count.
func DefaultVideoCountChain() Chain {
	return Chain{
		ElementText("videos-count", `#videos-count`),
		KeywordFragment("header-metadata", `yt-content-metadata-view-model span`, "video"),
		RawPattern("header-metadata-json", `"content":"((?:[^"\\]|\\.){1,40} videos?)"`),
		RawPattern("videos-count-text", `(?s)"videosCountText":\{.{0,200}?"text":"((?:[^"\\]|\\.)+)"`),
	}
}

// DefaultTotalViewsChain reads the aggregate channel view count. Candidate
// cells also hold join dates, locations and links, so the fragment must
// mention views.
func DefaultTotalViewsChain() Chain {
	return Chain{
		KeywordFragment("about-table",
			`#additional-info-container td, ytd-about-channel-renderer td, #right-column yt-formatted-string`, "view"),
		KeywordFragment("header-metadata", `yt-content-metadata-view-model span`, "view"),
		RawPattern("view-count-text", `"viewCountText":"((?:[^"\\]|\\.)+)"`),
	}
}

// DefaultThumbnailChain reads the channel avatar URL.
func DefaultThumbnailChain() Chain {
	return Chain{
		MetaContent("og:image", `meta[property="og:image"]`),
		AttrOf("thumbnail-link", `link[itemprop="thumbnailUrl"]`, "href"),
		MetaContent("twitter:image", `meta[name="twitter:image"]`),
	}
}

// DefaultChannelIDChain derives the channel id from the channel URL and
// falls back to identifiers embedded in the page.
func DefaultChannelIDChain() Chain {
	chain := make(Chain, 0, len(channelURLStrategies)+5)
	for _, s := range channelURLStrategies {
		chain = append(chain, Map(s, ChannelIDFromURL))
	}
	return append(chain,
		MetaContent("itemprop-identifier", `meta[itemprop="identifier"], meta[itemprop="channelId"]`),
		RawPattern("external-id", `"externalId":"(UC[\w-]{22})"`),
		RawPattern("browse-channel-id", `"channelId":"(UC[\w-]{22})"`),
		RawPattern("rss-url", `feeds/videos\.xml\?channel_id=(UC[\w-]{22})`),
	)
}

// DefaultTagsChain reads the delimited keywords value.
func DefaultTagsChain() Chain {
	return Chain{
		MetaContent("keywords", `meta[name="keywords"]`),
	}
}
