package structure

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// UnknownLayout flags pages whose layout the site does not provide.
var UnknownLayout = lint.RuleDef{
	ID:          "NS02",
	Name:        "unknown-layout",
	Group:       "structure",
	Description: "Layout is missing or not one of the allowed layouts",
	Severity:    lint.SeverityWarning,
	ConfigKeys:  []string{"allowed_layouts"},

	Rationale:   `Every page in the corpus is rendered with the "default" layout. Any other value silently falls back and usually means a copy-paste error.`,
	BadExample:  `layout: post`,
	GoodExample: `layout: default`,
}

type layoutOptions struct {
	AllowedLayouts []string `option:"allowed_layouts"`
}

func init() {
	UnknownLayout.Check = checkLayout
	lint.Register(UnknownLayout)
}

func checkLayout(ctx *lint.Context) []lint.Diagnostic {
	opts := layoutOptions{AllowedLayouts: []string{"default"}}
	if err := ctx.DecodeOptions(UnknownLayout.ID, &opts); err != nil {
		return []lint.Diagnostic{{
			RuleID:   UnknownLayout.ID,
			Severity: lint.SeverityError,
			Message:  err.Error(),
			Path:     "wadocs.yaml",
		}}
	}

	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		if !p.HasFrontMatter {
			continue
		}
		layout := p.FrontMatter.Layout
		switch {
		case layout == "":
			diags = append(diags, ctx.Diag(UnknownLayout, p, 1, "layout is not set"))
		case !slices.Contains(opts.AllowedLayouts, layout):
			diags = append(diags, ctx.Diag(UnknownLayout, p, p.FrontMatterLine("layout"),
				"layout %q is not one of: %s", layout, strings.Join(opts.AllowedLayouts, ", ")))
		}
	}
	return diags
}
