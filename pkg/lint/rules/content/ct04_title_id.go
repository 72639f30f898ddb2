package content

import (
	"strings"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// TitleID requires question and best-practice titles to lead with their ID.
var TitleID = lint.RuleDef{
	ID:          "CT04",
	Name:        "title-id",
	Group:       "content",
	Description: "Question or best-practice page title does not start with its ID",
	Severity:    lint.SeverityWarning,

	Rationale: `Child pages find their parent by title, and pillar indexes list questions by title, so
"COST02 - ..." must stay the first thing in the title of COST02.md.`,
	BadExample:  `title: How do you govern usage?`,
	GoodExample: `title: COST02 - How do you govern usage?`,
}

func init() {
	TitleID.Check = checkTitleID
	lint.Register(TitleID)
}

func checkTitleID(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		id := p.ID()
		if !catalog.IsQuestionID(id) && !catalog.IsBestPracticeID(id) {
			continue
		}
		if !p.HasFrontMatter || p.Title() == "" {
			continue
		}
		if !strings.HasPrefix(p.Title(), id+" - ") {
			diags = append(diags, ctx.Diag(TitleID, p, p.FrontMatterLine("title"),
				"title %q should start with %q", p.Title(), id+" - "))
		}
	}
	return diags
}
