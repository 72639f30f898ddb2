package links

import (
	"fmt"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"github.com/leapstack-labs/wadocs/pkg/lint"
)

// LinkStyle enforces one spelling for links between question and
// best-practice pages.
var LinkStyle = lint.RuleDef{
	ID:          "LK02",
	Name:        "link-style",
	Group:       "links",
	Description: "Link to a question or best-practice page is not in the canonical style",
	Severity:    lint.SeverityWarning,
	ConfigKeys:  []string{"style"},
	AutoFixable: true,

	Rationale: `Mixed spellings ("COST02", "./COST02", "COST02.html") all work, but make search and bulk
rewrites unreliable. The style is one of relative-html, html or relative.`,
	BadExample:  `<a href="COST02">View details →</a>`,
	GoodExample: `<a href="./COST02.html">View details →</a>`,
	Fix:         "Run `wadocs fix pillar-links`.",
}

type styleOptions struct {
	Style string `option:"style"`
}

func init() {
	LinkStyle.Check = checkLinkStyle
	lint.Register(LinkStyle)
}

func checkLinkStyle(ctx *lint.Context) []lint.Diagnostic {
	style, err := linkStyle(ctx)
	if err != nil {
		return []lint.Diagnostic{{
			RuleID:   LinkStyle.ID,
			Severity: lint.SeverityError,
			Message:  err.Error(),
			Path:     "wadocs.yaml",
		}}
	}

	var diags []lint.Diagnostic
	for _, p := range ctx.Corpus.Pages {
		for _, l := range corpus.ExtractLinks(p.Body) {
			want, changed, ok := catalog.CanonicalLink(l.Target, style)
			if !ok || !changed {
				continue
			}
			diags = append(diags, ctx.Diag(LinkStyle, p, p.BodyLine(l.Line),
				"link %q should be written %q", l.Target, want))
		}
	}
	return diags
}

func linkStyle(ctx *lint.Context) (core.LinkStyle, error) {
	var opts styleOptions
	if err := ctx.DecodeOptions(LinkStyle.ID, &opts); err != nil {
		return "", err
	}
	style, err := core.ParseLinkStyle(opts.Style)
	if err != nil {
		return "", fmt.Errorf("%s: %w", LinkStyle.ID, err)
	}
	return style, nil
}
