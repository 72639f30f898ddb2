// Package generate creates question, best-practice and pillar index pages
// from the catalog, and keeps the question cards on pillar indexes current.
package generate

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Link is a rendered reference to a sibling page.
type Link struct {
	ID    string
	Title string
	Href  string
}

// PillarURL is the AWS documentation home of a pillar.
func PillarURL(p *catalog.Pillar) string {
	return "https://docs.aws.amazon.com/wellarchitected/latest/" + p.Dir + "-pillar/welcome.html"
}

// QuestionURL is the framework page of a question, e.g. .../framework/cost-02.html.
func QuestionURL(id string) string {
	m := catalog.QuestionIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "https://docs.aws.amazon.com/wellarchitected/latest/framework/appendix.html"
	}
	return "https://docs.aws.amazon.com/wellarchitected/latest/framework/" + strings.ToLower(m[1]) + "-" + m[2] + ".html"
}

// QuestionPage builds the page for a question. Best practices known to the
// catalog are linked in the given style.
func QuestionPage(p *catalog.Pillar, q catalog.Question, navOrder int, style core.LinkStyle) (*corpus.Page, error) {
	bps := make([]Link, len(q.BestPractices))
	for i, bp := range q.BestPractices {
		bps[i] = Link{ID: bp.ID, Title: bp.Title, Href: style.Format(bp.ID)}
	}

	body, err := render("question.md.tmpl", map[string]any{
		"Pillar":        p,
		"Question":      q,
		"BestPractices": bps,
		"PillarURL":     PillarURL(p),
		"QuestionURL":   QuestionURL(q.ID),
	})
	if err != nil {
		return nil, err
	}

	return newPage(p.Dir+"/"+q.ID+".md", corpus.FrontMatter{
		Title:       q.PageTitle(),
		Layout:      "default",
		Parent:      p.Name,
		NavOrder:    corpus.IntPtr(navOrder),
		HasChildren: len(q.BestPractices) > 0,
	}, body)
}

// BestPracticePage builds the page for a best practice. Its parent is the
// question page title and its grand_parent the pillar name.
func BestPracticePage(p *catalog.Pillar, q catalog.Question, bp catalog.BestPractice) (*corpus.Page, error) {
	body, err := render("bestpractice.md.tmpl", map[string]any{
		"Pillar":       p,
		"Question":     q,
		"BestPractice": bp,
		"ServiceSlots": []int{1, 2, 3},
		"PillarURL":    PillarURL(p),
		"QuestionURL":  QuestionURL(q.ID),
	})
	if err != nil {
		return nil, err
	}

	return newPage(p.Dir+"/"+bp.ID+".md", corpus.FrontMatter{
		Title:       bp.PageTitle(),
		Layout:      "default",
		Parent:      q.PageTitle(),
		GrandParent: p.Name,
		NavOrder:    corpus.IntPtr(bestPracticeNumber(bp.ID)),
	}, body)
}

// PillarIndex builds a pillar's index page with a static question card list.
func PillarIndex(p *catalog.Pillar, cards []Link) (*corpus.Page, error) {
	resources := p.Resources
	if len(resources) == 0 {
		resources = []catalog.Resource{{
			Title: "AWS Well-Architected Framework - " + p.Name + " Pillar",
			URL:   PillarURL(p),
		}}
	}

	body, err := render("pillar_index.md.tmpl", map[string]any{
		"Pillar":          p,
		"Resources":       resources,
		"QuestionSection": questionSection(cards),
	})
	if err != nil {
		return nil, err
	}

	return newPage(p.Dir+"/index.md", corpus.FrontMatter{
		Title:       p.Name,
		Layout:      "default",
		NavOrder:    corpus.IntPtr(p.NavOrder),
		HasChildren: true,
		Permalink:   "/" + p.Dir + "/",
	}, body)
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func newPage(rel string, fm corpus.FrontMatter, body []byte) (*corpus.Page, error) {
	p := &corpus.Page{Path: rel, FrontMatter: fm, HasFrontMatter: true, Body: append([]byte("\n"), body...)}
	raw, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return corpus.ParsePage(rel, raw)
}

func bestPracticeNumber(id string) int {
	m := catalog.BestPracticeIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[3])
	return n
}
