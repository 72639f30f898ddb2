package structure

import (
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// DuplicateNavOrder flags siblings sharing a nav_order.
var DuplicateNavOrder = lint.RuleDef{
	ID:          "NS05",
	Name:        "duplicate-nav-order",
	Group:       "structure",
	Description: "Two pages under the same parent share a nav_order",
	Severity:    lint.SeverityWarning,

	Rationale: `Sibling order falls back to title comparison when nav_order ties, so the intended order of
questions or best practices is lost.`,
	BadExample: `# COST02-BP01.md
nav_order: 1
# COST02-BP02.md
nav_order: 1`,
	GoodExample: `# COST02-BP01.md
nav_order: 1
# COST02-BP02.md
nav_order: 2`,
}

func init() {
	DuplicateNavOrder.Check = checkDuplicateNavOrder
	lint.Register(DuplicateNavOrder)
}

func checkDuplicateNavOrder(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, group := range ctx.Tree.SiblingGroups() {
		first := make(map[int]*nav.Node)
		for _, n := range group {
			order, ok := n.Page.FrontMatter.Order()
			if !ok || n.Orphan {
				continue
			}
			if prev, dup := first[order]; dup {
				diags = append(diags, ctx.Diag(DuplicateNavOrder, n.Page, n.Page.FrontMatterLine("nav_order"),
					"nav_order %d is also used by sibling %s", order, prev.Page.Path))
				continue
			}
			first[order] = n
		}
	}
	return diags
}
