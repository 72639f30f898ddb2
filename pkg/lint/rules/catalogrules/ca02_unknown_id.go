package catalogrules

import (
	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// UnknownID flags pages named like a question or best practice that the
// catalog does not know, or that sit in another pillar's directory.
var UnknownID = lint.RuleDef{
	ID:          "CA02",
	Name:        "unknown-id",
	Group:       "catalog",
	Description: "Page ID is not in the catalog or is in the wrong pillar directory",
	Severity:    lint.SeverityWarning,

	BadExample:  `docs/security/COST02.md`,
	GoodExample: `docs/cost-optimization/COST02.md`,
}

func init() {
	UnknownID.Check = checkUnknownID
	lint.Register(UnknownID)
}

func checkUnknownID(ctx *lint.Context) []lint.Diagnostic {
	if ctx.Catalog == nil {
		return nil
	}

	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		id := p.ID()
		var known bool
		switch {
		case catalog.IsQuestionID(id):
			_, _, known = ctx.Catalog.Question(id)
		case catalog.IsBestPracticeID(id):
			_, _, known = ctx.Catalog.BestPractice(id)
		default:
			continue
		}

		pillar, ok := ctx.Catalog.PillarForID(id)
		if !ok {
			diags = append(diags, ctx.Diag(UnknownID, p, 0, "no pillar uses the prefix of %s", id))
			continue
		}
		if !known {
			diags = append(diags, ctx.Diag(UnknownID, p, 0, "%s is not a %s question or best practice", id, pillar.Name))
			continue
		}
		if !inDir(p.Path, pillar.Dir) {
			diags = append(diags, ctx.Diag(UnknownID, p, 0, "%s belongs in %s/", id, pillar.Dir))
		}
	}
	return diags
}

func inDir(path, dir string) bool {
	return len(path) > len(dir) && path[:len(dir)+1] == dir+"/"
}
