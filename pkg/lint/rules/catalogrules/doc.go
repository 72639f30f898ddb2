// Package catalogrules registers the CA rules comparing the corpus against
// the pillar catalog. Both rules are silent when no catalog is loaded.
package catalogrules

import (
	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// pagesByID indexes question and best-practice pages under a pillar directory.
func pagesByID(c *corpus.Corpus, p *catalog.Pillar) map[string]*corpus.Page {
	out := make(map[string]*corpus.Page)
	for _, page := range c.Under(p.Dir) {
		id := page.ID()
		if !catalog.IsQuestionID(id) && !catalog.IsBestPracticeID(id) {
			continue
		}
		if _, seen := out[id]; !seen {
			out[id] = page
		}
	}
	return out
}
