package structure

import (
	"strings"

	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// MissingTitle flags pages that cannot appear in navigation.
var MissingTitle = lint.RuleDef{
	ID:          "NS01",
	Name:        "missing-title",
	Group:       "structure",
	Description: "Page has no front matter or no title",
	Severity:    lint.SeverityError,

	Rationale: `Navigation entries and parent references are keyed by title. A page without front matter
is copied verbatim instead of rendered, and a page without a title cannot be listed or named
as anyone's parent.`,
	BadExample: `# COST05: How do you evaluate cost when you select services?`,
	GoodExample: `---
title: COST05 - How do you evaluate cost when you select services?
layout: default
parent: Cost Optimization
nav_order: 5
---`,
	Fix: "Add a front matter block with at least a title.",
}

func init() {
	MissingTitle.Check = checkMissingTitle
	lint.Register(MissingTitle)
}

func checkMissingTitle(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		switch {
		case !p.HasFrontMatter:
			diags = append(diags, ctx.Diag(MissingTitle, p, 1, "page has no front matter"))
		case strings.TrimSpace(p.Title()) == "":
			diags = append(diags, ctx.Diag(MissingTitle, p, 1, "front matter has no title"))
		}
	}
	return diags
}
