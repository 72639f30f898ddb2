package site

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

//go:embed templates/layout.html.tmpl
var layoutSource string

//go:embed assets/site.css
var baseCSS []byte

// layoutVersion is mixed into page hashes; bump it when the layout or
// rendering options change so incremental builds re-render everything.
const layoutVersion = "wadocs-layout-1"

var stylePattern = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>\s*`)

// newMarkdown returns the goldmark engine used for every page. Raw HTML is
// kept because styled pages are built from HTML blocks.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

func parseLayout() (*template.Template, error) {
	tmpl, err := template.New("layout").Parse(layoutSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return tmpl, nil
}

// extractStyles removes inline <style> blocks from body and returns their
// trimmed contents in order.
func extractStyles(body []byte) ([]string, []byte) {
	matches := stylePattern.FindAllSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, body
	}
	var styles []string
	for _, m := range matches {
		if css := strings.TrimSpace(string(m[1])); css != "" {
			styles = append(styles, css)
		}
	}
	return styles, stylePattern.ReplaceAll(body, nil)
}

// plainText returns the text content of Markdown source and its first
// level-one heading, if any.
func plainText(md goldmark.Markdown, src []byte) (string, string) {
	doc := md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && heading == "" {
				heading = strings.TrimSpace(string(nodeText(node, src)))
			}
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " "), heading
}

func nodeText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.Write(nodeText(c, src))
	}
	return buf.Bytes()
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

// navLink is a sidebar entry.
type navLink struct {
	Title    string
	URL      string
	Active   bool
	Open     bool
	Children []navLink
}

// link is a breadcrumb or table-of-contents entry.
type link struct {
	Title string
	URL   string
}

type pageData struct {
	SiteTitle   string
	PageTitle   string
	Home        string
	Stylesheet  string
	Nav         []navLink
	Breadcrumbs []link
	Children    []link
	Content     template.HTML
}

// sidebar builds the navigation list for the page being rendered. The
// branch leading to current is marked open.
func (b *Builder) sidebar(nodes []*nav.Node, current *corpus.Page, open map[*corpus.Page]bool) []navLink {
	links := make([]navLink, 0, len(nodes))
	for _, n := range nodes {
		links = append(links, navLink{
			Title:    nav.DisplayTitle(n.Page),
			URL:      b.href(n.Page.URL()),
			Active:   n.Page == current,
			Open:     open[n.Page] || n.Page == current,
			Children: b.sidebar(n.Children, current, open),
		})
	}
	return links
}

func (b *Builder) renderPage(tree *nav.Tree, p *corpus.Page, body []byte) ([]byte, error) {
	var content bytes.Buffer
	if err := b.md.Convert(body, &content); err != nil {
		return nil, fmt.Errorf("%s: markdown: %w", p.Path, err)
	}

	crumbs := tree.Breadcrumbs(p)
	open := make(map[*corpus.Page]bool, len(crumbs))
	data := pageData{
		SiteTitle:  b.cfg.Title,
		PageTitle:  nav.DisplayTitle(p),
		Home:       b.href("/"),
		Stylesheet: b.href("/" + stylesheetPath),
		Content:    template.HTML(content.String()), //nolint:gosec // G203: rendered from the docs tree
	}
	for _, c := range crumbs {
		open[c] = true
		data.Breadcrumbs = append(data.Breadcrumbs, link{Title: nav.DisplayTitle(c), URL: b.href(c.URL())})
	}
	if p.FrontMatter.HasChildren {
		for _, c := range tree.Children(p) {
			data.Children = append(data.Children, link{Title: nav.DisplayTitle(c), URL: b.href(c.URL())})
		}
	}
	data.Nav = b.sidebar(tree.Roots, p, open)

	var out bytes.Buffer
	if err := b.layout.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("%s: layout: %w", p.Path, err)
	}
	return out.Bytes(), nil
}
