package upstream

import (
	"sort"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// TitleMismatch is a question whose catalog title differs from upstream.
type TitleMismatch struct {
	ID       string `json:"id"`
	Catalog  string `json:"catalog"`
	Upstream string `json:"upstream"`
}

// PillarReport compares one pillar across upstream, the catalog and the
// local pages.
type PillarReport struct {
	Pillar   string `json:"pillar"`
	Dir      string `json:"dir"`
	Upstream int    `json:"upstream"`
	Local    int    `json:"local"`
	// Found reports whether the appendix listed the pillar at all.
	Found bool `json:"found"`
	// HasDir reports whether the docs tree has pages for the pillar.
	HasDir bool `json:"has_dir"`

	MissingLocal   []Question      `json:"missing_local,omitempty"`
	ExtraLocal     []string        `json:"extra_local,omitempty"`
	MissingCatalog []Question      `json:"missing_catalog,omitempty"`
	ExtraCatalog   []string        `json:"extra_catalog,omitempty"`
	TitleMismatch  []TitleMismatch `json:"title_mismatch,omitempty"`
}

// Clean reports whether nothing differs.
func (r PillarReport) Clean() bool {
	return r.Found && len(r.MissingLocal) == 0 && len(r.ExtraLocal) == 0 &&
		len(r.MissingCatalog) == 0 && len(r.ExtraCatalog) == 0 && len(r.TitleMismatch) == 0
}

// Compare reports, per catalog pillar, which upstream questions lack a
// local page or catalog entry and which local or catalog questions are not
// upstream. Pillars without pages skip the local comparison.
func Compare(up map[string][]Question, cat *catalog.Catalog, c *corpus.Corpus) []PillarReport {
	reports := make([]PillarReport, 0, len(cat.Pillars))
	for i := range cat.Pillars {
		p := &cat.Pillars[i]
		questions, found := up[p.Name]
		r := PillarReport{Pillar: p.Name, Dir: p.Dir, Upstream: len(questions), Found: found}

		upIDs := make(map[string]Question, len(questions))
		for _, q := range questions {
			upIDs[q.ID] = q
		}

		local := localQuestionIDs(c, p.Dir)
		r.Local = len(local)
		r.HasDir = len(c.Under(p.Dir)) > 0
		if r.HasDir {
			for _, q := range questions {
				if !local[q.ID] {
					r.MissingLocal = append(r.MissingLocal, q)
				}
			}
			for id := range local {
				if _, ok := upIDs[id]; !ok && found {
					r.ExtraLocal = append(r.ExtraLocal, id)
				}
			}
			sort.Strings(r.ExtraLocal)
		}

		inCatalog := make(map[string]bool, len(p.Questions))
		for _, q := range p.Questions {
			inCatalog[q.ID] = true
			u, ok := upIDs[q.ID]
			switch {
			case !ok && found:
				r.ExtraCatalog = append(r.ExtraCatalog, q.ID)
			case ok && u.Title != q.Title:
				r.TitleMismatch = append(r.TitleMismatch, TitleMismatch{ID: q.ID, Catalog: q.Title, Upstream: u.Title})
			}
		}
		for _, q := range questions {
			if !inCatalog[q.ID] {
				r.MissingCatalog = append(r.MissingCatalog, q)
			}
		}

		reports = append(reports, r)
	}
	return reports
}

func localQuestionIDs(c *corpus.Corpus, dir string) map[string]bool {
	ids := make(map[string]bool)
	for _, p := range c.Under(dir) {
		if catalog.IsQuestionID(p.ID()) {
			ids[p.ID()] = true
		}
	}
	return ids
}
