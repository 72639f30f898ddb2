package structure

import (
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// GrandParentMismatch checks grand_parent against the parent's own parent.
var GrandParentMismatch = lint.RuleDef{
	ID:          "NS04",
	Name:        "grand-parent-mismatch",
	Group:       "structure",
	Description: "grand_parent does not match the parent page's parent",
	Severity:    lint.SeverityError,

	Rationale: `grand_parent disambiguates parents that share a title. When it does not match, the page is
attached nowhere.`,
	BadExample: `title: COST02-BP01 - Develop policies based on your organization requirements
parent: COST02 - How do you govern usage?
grand_parent: Security`,
	GoodExample: `title: COST02-BP01 - Develop policies based on your organization requirements
parent: COST02 - How do you govern usage?
grand_parent: Cost Optimization`,
}

func init() {
	GrandParentMismatch.Check = checkGrandParent
	lint.Register(GrandParentMismatch)
}

func checkGrandParent(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, u := range ctx.Tree.Unresolved {
		if u.Reason != nav.ReasonGrandParentMismatch {
			continue
		}
		fm := u.Page.FrontMatter
		diags = append(diags, ctx.Diag(GrandParentMismatch, u.Page, u.Page.FrontMatterLine("grand_parent"),
			"no page titled %q has parent %q", fm.Parent, fm.GrandParent))
	}

	for _, p := range ctx.Corpus.Pages {
		fm := p.FrontMatter
		if fm.GrandParent != "" && fm.Parent == "" {
			diags = append(diags, ctx.Diag(GrandParentMismatch, p, p.FrontMatterLine("grand_parent"),
				"grand_parent %q is set without a parent", fm.GrandParent))
		}
	}

	for _, u := range ctx.Tree.Unresolved {
		if u.Reason == nav.ReasonCycle {
			diags = append(diags, ctx.Diag(GrandParentMismatch, u.Page, u.Page.FrontMatterLine("parent"),
				"parent %q leads back to this page", u.Page.FrontMatter.Parent))
		}
	}
	return diags
}
