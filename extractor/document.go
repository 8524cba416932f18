package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a rendered page: the serialized HTML as produced by the
// browser plus its parsed tree. Detectors read from either.
type Document struct {
	Raw string
	DOM *goquery.Document
}

// ParseDocument parses the serialized HTML of a rendered page.
func ParseDocument(raw string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse document: %w", err)
	}
	return &Document{Raw: raw, DOM: goquery.NewDocumentFromNode(root)}, nil
}
