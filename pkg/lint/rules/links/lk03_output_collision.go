package links

import (
	"sort"

	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// OutputCollision flags pages that would be written to the same file.
var OutputCollision = lint.RuleDef{
	ID:          "LK03",
	Name:        "output-collision",
	Group:       "links",
	Description: "Two pages render to the same output path",
	Severity:    lint.SeverityError,

	Rationale: `A permalink can send a page to a path another page already owns, e.g. a pillar index
with permalink /docs/cost-optimization and a file docs/cost-optimization/index.md.
Only one survives the build.`,
}

func init() {
	OutputCollision.Check = checkOutputCollision
	lint.Register(OutputCollision)
}

func checkOutputCollision(ctx *lint.Context) []lint.Diagnostic {
	byOut := make(map[string][]*corpus.Page)
	for _, p := range ctx.Corpus.Pages {
		byOut[p.OutputPath()] = append(byOut[p.OutputPath()], p)
	}

	outs := make([]string, 0, len(byOut))
	for out, pages := range byOut {
		if len(pages) > 1 {
			outs = append(outs, out)
		}
	}
	sort.Strings(outs)

	var diags []lint.Diagnostic
	for _, out := range outs {
		pages := byOut[out]
		for _, p := range pages[1:] {
			line := p.FrontMatterLine("permalink")
			if line == 0 {
				line = 1
			}
			diags = append(diags, ctx.Diag(OutputCollision, p, line,
				"renders to %s, which %s also renders to", out, pages[0].Path))
		}
	}
	return diags
}
