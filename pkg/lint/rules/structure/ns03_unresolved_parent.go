package structure

import (
	"strings"

	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// UnresolvedParent enforces that every parent names an existing page title.
var UnresolvedParent = lint.RuleDef{
	ID:          "NS03",
	Name:        "unresolved-parent",
	Group:       "structure",
	Description: "parent does not match the title of any page",
	Severity:    lint.SeverityError,

	Rationale: `Navigation is built by matching parent against page titles exactly. A typo or a renamed
parent page drops the child out of the sidebar.`,
	BadExample: `parent: Cost Optimisation`,
	GoodExample: `parent: Cost Optimization`,
	Fix:         "Use the exact title of the parent page, including case and punctuation.",
}

func init() {
	UnresolvedParent.Check = checkUnresolvedParent
	lint.Register(UnresolvedParent)
}

func checkUnresolvedParent(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, u := range ctx.Tree.Unresolved {
		if u.Reason != nav.ReasonMissingParent {
			continue
		}
		parent := u.Page.FrontMatter.Parent
		d := ctx.Diag(UnresolvedParent, u.Page, u.Page.FrontMatterLine("parent"),
			"parent %q does not match any page title", parent)
		if near := closestTitle(ctx, parent); near != "" {
			d.Message += ` (did you mean "` + near + `"?)`
		}
		diags = append(diags, d)
	}
	return diags
}

// closestTitle finds a title equal to want ignoring case and surrounding space.
func closestTitle(ctx *lint.Context, want string) string {
	want = strings.TrimSpace(want)
	for _, t := range ctx.Corpus.Titles() {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return t
		}
	}
	return ""
}
