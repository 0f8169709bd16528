// Package linkmatch finds inline markdown links that point at other markdown files.
package linkmatch

import (
	"iter"
	"regexp"
	"slices"

	"github.com/starford/doclinks/internal/models"
)

// linkRe matches [text](path.md). The target may not contain a colon, which
// keeps URLs with a scheme out; links split across lines are not matched.
var linkRe = regexp.MustCompile(`\[([^\]\n]+)\]\(([^:)\n]+\.md)\)`)

// All returns a lazy sequence of the links in text, in document order.
// Iterating twice over the same text yields the same links.
func All(text string) iter.Seq[models.Link] {
	return func(yield func(models.Link) bool) {
		offset := 0
		for offset < len(text) {
			loc := linkRe.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				return
			}
			link := models.Link{
				Text:   text[offset+loc[2] : offset+loc[3]],
				Target: text[offset+loc[4] : offset+loc[5]],
				Start:  offset + loc[0],
				End:    offset + loc[1],
			}
			if !yield(link) {
				return
			}
			offset += loc[1]
		}
	}
}

// Find collects every link in text.
func Find(text string) []models.Link {
	return slices.Collect(All(text))
}
