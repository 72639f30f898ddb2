package structure

import (
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// AmbiguousParent flags parent titles that match several pages.
var AmbiguousParent = lint.RuleDef{
	ID:          "NS06",
	Name:        "ambiguous-parent",
	Group:       "structure",
	Description: "parent matches more than one page title",
	Severity:    lint.SeverityError,

	Rationale: `Titles such as "Overview" may repeat across pillars. A child naming such a title without
grand_parent is attached to whichever page sorts first.`,
	BadExample:  `parent: Overview`,
	GoodExample: "parent: Overview\ngrand_parent: Cost Optimization",
	Fix:         "Add grand_parent, or give the parent pages distinct titles.",
}

func init() {
	AmbiguousParent.Check = checkAmbiguousParent
	lint.Register(AmbiguousParent)
}

func checkAmbiguousParent(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Tree.Ambiguous {
		matches := ctx.Corpus.ByTitle(p.FrontMatter.Parent)
		chosen, _ := ctx.Tree.ParentOf(p)
		msg := "parent %q matches %d pages"
		args := []any{p.FrontMatter.Parent, len(matches) - countSelf(matches, p)}
		if chosen != nil {
			msg += "; using %s"
			args = append(args, chosen.Path)
		}
		line := p.FrontMatterLine("grand_parent")
		if line == 0 {
			line = p.FrontMatterLine("parent")
		}
		diags = append(diags, ctx.Diag(AmbiguousParent, p, line, msg, args...))
	}
	return diags
}

func countSelf(pages []*corpus.Page, p *corpus.Page) int {
	for _, q := range pages {
		if q == p {
			return 1
		}
	}
	return 0
}
