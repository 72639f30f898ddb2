package content

import (
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// TemplateLeftovers flags Liquid code and unsubstituted placeholders.
var TemplateLeftovers = lint.RuleDef{
	ID:          "CT01",
	Name:        "template-leftovers",
	Group:       "content",
	Description: "Body contains Liquid tags or unsubstituted {placeholders}",
	Severity:    lint.SeverityError,
	AutoFixable: true,

	Rationale: `wadocs renders Markdown without a Liquid engine, so loops over site.pages print verbatim.
Placeholders such as {title} are left behind when a generator template is not formatted.`,
	BadExample: `## AWS Services for {title}

<div class="question-cards">
  {% for child in site.pages %}`,
	GoodExample: `## AWS Services for Cost Optimization

<div class="question-cards">
  <div class="question-card">`,
	Fix: "Run `wadocs fix` and `wadocs index` to substitute titles and regenerate question cards.",
}

func init() {
	TemplateLeftovers.Check = checkTemplateLeftovers
	lint.Register(TemplateLeftovers)
}

func checkTemplateLeftovers(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		for _, m := range corpus.ScanBody(p.Body, corpus.LiquidPattern) {
			diags = append(diags, ctx.Diag(TemplateLeftovers, p, p.BodyLine(m.Line),
				"Liquid code %q is not rendered", m.Text))
		}
		for _, m := range corpus.ScanBody(p.Body, corpus.PlaceholderPattern) {
			diags = append(diags, ctx.Diag(TemplateLeftovers, p, p.BodyLine(m.Line),
				"placeholder %s was never substituted", m.Text))
		}
	}
	return diags
}
