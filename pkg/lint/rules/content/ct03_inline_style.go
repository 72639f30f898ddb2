package content

import (
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// InlineStyle flags <style> blocks inside page bodies.
var InlineStyle = lint.RuleDef{
	ID:          "CT03",
	Name:        "inline-style",
	Group:       "content",
	Description: "Page body embeds a <style> block",
	Severity:    lint.SeverityHint,

	Rationale: `The site stylesheet already styles pillar-header, best-practice, implementation-step,
aws-service and related-resources blocks. Per-page styles drift from it.`,
	Fix: "Move the rules into the site stylesheet.",
}

func init() {
	InlineStyle.Check = checkInlineStyle
	lint.Register(InlineStyle)
}

func checkInlineStyle(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		if line, ok := corpus.ContainsLine(p.Body, "<style"); ok {
			diags = append(diags, ctx.Diag(InlineStyle, p, p.BodyLine(line), "inline <style> block"))
		}
	}
	return diags
}
