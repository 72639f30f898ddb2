package structure

import (
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// HasChildrenMismatch compares has_children with the actual hierarchy.
var HasChildrenMismatch = lint.RuleDef{
	ID:          "NS07",
	Name:        "has-children-mismatch",
	Group:       "structure",
	Description: "has_children disagrees with the pages that name this page as parent",
	Severity:    lint.SeverityWarning,

	Rationale: `Section pages list their children only when has_children is set; setting it on a leaf
renders an empty table of contents.`,
	GoodExample: `title: COST02 - How do you govern usage?
has_children: true`,
}

func init() {
	HasChildrenMismatch.Check = checkHasChildren
	lint.Register(HasChildrenMismatch)
}

func checkHasChildren(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		if !p.HasFrontMatter {
			continue
		}
		children := ctx.Tree.Children(p)
		switch {
		case p.FrontMatter.HasChildren && len(children) == 0:
			diags = append(diags, ctx.Diag(HasChildrenMismatch, p, p.FrontMatterLine("has_children"),
				"has_children is set but no page names %q as parent", p.Title()))
		case !p.FrontMatter.HasChildren && len(children) > 0:
			diags = append(diags, ctx.Diag(HasChildrenMismatch, p, 1,
				"%d pages name this page as parent but has_children is not set", len(children)))
		}
	}
	return diags
}
