package fix

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// PillarLinks rewrites links between question and best-practice pages to
// the configured link style.
var PillarLinks = Fixer{
	Name:        "pillar-links",
	Description: "Rewrite question and best-practice links to the configured style",
	Default:     true,
	Apply: func(p *corpus.Page, fc *Context) ([]byte, bool) {
		style := fc.LinkStyle
		if style == "" {
			style = "relative-html"
		}
		body, changed := corpus.RewriteLinks(p.Body, func(target string) (string, bool) {
			canonical, changed, ok := catalog.CanonicalLink(target, style)
			return canonical, ok && changed
		})
		if !changed {
			return p.Raw, false
		}
		return withBody(p, body), true
	},
}

var (
	loopCloser   = regexp.MustCompile(`</div>\s+\{% endif %\}\s+\{% endfor %\}\s+</div>`)
	closerLine   = regexp.MustCompile(`(?m)^[ \t]*\{%-?\s*end(?:if|for)\s*-?%\}[ \t]*\n?`)
	liquidOpener = regexp.MustCompile(`\{%-?\s*(?:for|if)\s`)
)

// TemplateLeftovers removes Liquid loop closers left behind after the loop
// body was replaced with static markup.
var TemplateLeftovers = Fixer{
	Name:        "template-leftovers",
	Description: "Remove dangling {% endif %} / {% endfor %} template code",
	Default:     true,
	Apply: func(p *corpus.Page, _ *Context) ([]byte, bool) {
		body := loopCloser.ReplaceAll(p.Body, []byte("</div>\n</div>"))
		if !liquidOpener.Match(body) {
			body = closerLine.ReplaceAll(body, nil)
		}
		if bytes.Equal(body, p.Body) {
			return p.Raw, false
		}
		return withBody(p, body), true
	},
}

// TitlePlaceholders substitutes {title} on pillar index pages.
var TitlePlaceholders = Fixer{
	Name:        "title-placeholders",
	Description: "Replace {title} placeholders on pillar index pages with the pillar name",
	Default:     true,
	Apply: func(p *corpus.Page, fc *Context) ([]byte, bool) {
		if !isPillarIndex(p) || !bytes.Contains(p.Body, []byte("{title}")) {
			return p.Raw, false
		}
		name := pillarName(p, fc)
		body := bytes.ReplaceAll(p.Body, []byte("{title}"), []byte(name))
		return withBody(p, body), true
	},
}

// NavOrder sets nav_order on pillar index pages from the catalog. The
// front matter line is edited in place so the rest of the block keeps its
// formatting.
var NavOrder = Fixer{
	Name:        "nav-order",
	Description: "Set pillar index nav_order from the catalog",
	Default:     true,
	Apply: func(p *corpus.Page, fc *Context) ([]byte, bool) {
		if fc.Catalog == nil || !isPillarIndex(p) || len(p.Header()) == 0 {
			return p.Raw, false
		}
		pillar, ok := fc.Catalog.Pillar(pillarDir(p))
		if !ok {
			return p.Raw, false
		}
		if cur, ok := p.FrontMatter.Order(); ok && cur == pillar.NavOrder {
			return p.Raw, false
		}
		return rewriteNavOrder(p, pillar.NavOrder), true
	},
}

var navOrderLine = regexp.MustCompile(`(?m)^nav_order:.*$`)

func rewriteNavOrder(p *corpus.Page, order int) []byte {
	head := string(p.Header())
	line := "nav_order: " + strconv.Itoa(order)
	if navOrderLine.MatchString(head) {
		head = navOrderLine.ReplaceAllLiteralString(head, line)
	} else {
		// Insert before the closing delimiter.
		end := strings.LastIndex(strings.TrimRight(head, "\n"), "---")
		head = head[:end] + line + "\n" + head[end:]
	}
	return append([]byte(head), p.Body...)
}

// isPillarIndex reports whether p is <pillar>/index.md. Section indexes
// nested deeper inside a pillar are not pillar pages.
func isPillarIndex(p *corpus.Page) bool {
	return p.IsIndex() && strings.Count(p.Path, "/") == 1
}

// pillarDir is the top-level directory of a page, e.g. "cost-optimization".
func pillarDir(p *corpus.Page) string {
	dir, _, _ := strings.Cut(p.Path, "/")
	return dir
}

func pillarName(p *corpus.Page, fc *Context) string {
	if fc.Catalog != nil {
		if pillar, ok := fc.Catalog.Pillar(pillarDir(p)); ok {
			return pillar.Name
		}
	}
	return catalog.NameFromDir(pillarDir(p))
}
