package catalogrules

import (
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// MissingPage lists catalog entries with no page yet.
var MissingPage = lint.RuleDef{
	ID:          "CA01",
	Name:        "missing-page",
	Group:       "catalog",
	Description: "Catalog question or best practice has no page",
	Severity:    lint.SeverityInfo,

	Rationale: `Only pillars that already have a directory are checked, so a corpus covering a single
pillar is not flooded with findings for the other five.`,
	Fix: "Run `wadocs generate <pillar> --best-practices` to create the missing pages.",
}

func init() {
	MissingPage.Check = checkMissingPage
	lint.Register(MissingPage)
}

func checkMissingPage(ctx *lint.Context) []lint.Diagnostic {
	if ctx.Catalog == nil {
		return nil
	}

	var diags []lint.Diagnostic
	for i := range ctx.Catalog.Pillars {
		pillar := &ctx.Catalog.Pillars[i]
		pages := ctx.Corpus.Under(pillar.Dir)
		if len(pages) == 0 {
			continue
		}
		anchor := pages[0]
		for _, p := range pages {
			if p.IsIndex() {
				anchor = p
				break
			}
		}

		have := pagesByID(ctx.Corpus, pillar)
		for _, q := range pillar.Questions {
			if _, ok := have[q.ID]; !ok {
				diags = append(diags, ctx.Diag(MissingPage, anchor, 0,
					"%s has no page %s/%s.md", q.ID, pillar.Dir, q.ID))
			}
			for _, bp := range q.BestPractices {
				if _, ok := have[bp.ID]; !ok {
					diags = append(diags, ctx.Diag(MissingPage, anchor, 0,
						"%s has no page %s/%s.md", bp.ID, pillar.Dir, bp.ID))
				}
			}
		}
	}
	return diags
}
