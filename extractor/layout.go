package extractor

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// layoutShingle is the number of consecutive element names hashed together.
const layoutShingle = 3

// Layout returns a 64-bit SimHash of the document's element structure.
// Text and attributes are ignored, so two renders of the same page layout
// land within a few bits of each other while a markup redesign moves the
// fingerprint far away. Returns 0 for an empty document.
func Layout(doc *Document) uint64 {
	if doc == nil || doc.DOM == nil {
		return 0
	}
	var tags []string
	for _, n := range doc.DOM.Nodes {
		collectTags(n, &tags)
	}
	if len(tags) == 0 {
		return 0
	}
	if len(tags) < layoutShingle {
		return simhash(tags)
	}

	shingles := make([]string, 0, len(tags)-layoutShingle+1)
	for i := 0; i+layoutShingle <= len(tags); i++ {
		shingles = append(shingles, strings.Join(tags[i:i+layoutShingle], ">"))
	}
	return simhash(shingles)
}

// LayoutDistance is the Hamming distance between two layout fingerprints.
func LayoutDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// collectTags appends element names in document order.
func collectTags(n *html.Node, tags *[]string) {
	if n.Type == html.ElementNode {
		*tags = append(*tags, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTags(c, tags)
	}
}

// simhash accumulates FNV-64a hashes of the features into one fingerprint.
func simhash(features []string) uint64 {
	var vector [64]int
	h := fnv.New64a()
	for _, f := range features {
		h.Reset()
		_, _ = h.Write([]byte(f))
		sum := h.Sum64()
		for i := range 64 {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := range 64 {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}
