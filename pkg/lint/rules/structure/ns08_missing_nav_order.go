package structure

import (
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// MissingNavOrder reports pages ordered only by title.
var MissingNavOrder = lint.RuleDef{
	ID:          "NS08",
	Name:        "missing-nav-order",
	Group:       "structure",
	Description: "Page has no nav_order and sorts after ordered siblings",
	Severity:    lint.SeverityInfo,
}

func init() {
	MissingNavOrder.Check = checkMissingNavOrder
	lint.Register(MissingNavOrder)
}

func checkMissingNavOrder(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		if !p.HasFrontMatter || p.Title() == "" {
			continue
		}
		if _, ok := p.FrontMatter.Order(); !ok {
			diags = append(diags, ctx.Diag(MissingNavOrder, p, 1, "nav_order is not set"))
		}
	}
	return diags
}
