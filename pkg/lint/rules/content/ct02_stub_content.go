package content

import (
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// DefaultStubMarkers is the filler text written by `wadocs generate`.
var DefaultStubMarkers = []string{
	"Add best practices for this question here.",
	"Description of first implementation step.",
	"Description of how this service helps",
	"Related Documentation Link 1",
}

// StubContent reports pages still holding generated filler.
var StubContent = lint.RuleDef{
	ID:          "CT02",
	Name:        "stub-content",
	Group:       "content",
	Description: "Page still contains generated placeholder text",
	Severity:    lint.SeverityInfo,
	ConfigKeys:  []string{"markers"},

	Rationale: `Generated question and best-practice pages start with filler steps and services. This
rule tracks which pages still need writing.`,
	BadExample: `1. **Step 1**: Description of first implementation step.`,
}

type stubOptions struct {
	Markers []string `option:"markers"`
}

func init() {
	StubContent.Check = checkStubContent
	lint.Register(StubContent)
}

func checkStubContent(ctx *lint.Context) []lint.Diagnostic {
	opts := stubOptions{Markers: DefaultStubMarkers}
	if err := ctx.DecodeOptions(StubContent.ID, &opts); err != nil {
		return []lint.Diagnostic{{
			RuleID:   StubContent.ID,
			Severity: lint.SeverityError,
			Message:  err.Error(),
			Path:     "wadocs.yaml",
		}}
	}

	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		for _, marker := range opts.Markers {
			if line, ok := corpus.ContainsLine(p.Body, marker); ok {
				diags = append(diags, ctx.Diag(StubContent, p, p.BodyLine(line),
					"page still contains placeholder text %q", marker))
				break
			}
		}
	}
	return diags
}
