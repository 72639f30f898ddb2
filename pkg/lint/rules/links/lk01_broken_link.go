package links

import (
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// BrokenLink flags internal links that resolve to neither a page nor a file.
var BrokenLink = lint.RuleDef{
	ID:          "LK01",
	Name:        "broken-link",
	Group:       "links",
	Description: "Internal link does not resolve to a page or asset",
	Severity:    lint.SeverityError,

	Rationale: `Links are resolved the way the built site serves them: "./COST02.html", "./COST02" and
"COST02.md" all reach COST02.md, and absolute links may match a permalink. Relative links start
from the directory the page renders into, so a page with a permalink resolves them from there.`,
	BadExample:  `<a href="./COST12.html">View details →</a>`,
	GoodExample: `<a href="./COST02.html">View details →</a>`,
}

func init() {
	BrokenLink.Check = checkBrokenLinks
	lint.Register(BrokenLink)
}

func checkBrokenLinks(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		for _, l := range corpus.ExtractLinks(p.Body) {
			if !l.IsInternal() {
				continue
			}
			if _, ok := ctx.Corpus.Resolve(p, l.Target); ok {
				continue
			}
			diags = append(diags, ctx.Diag(BrokenLink, p, p.BodyLine(l.Line),
				"link %q does not resolve", l.Target))
		}
	}
	return diags
}
