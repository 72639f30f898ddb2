package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Question is a question as listed upstream.
type Question struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

var reQuestionTerm = regexp.MustCompile(`^([A-Z]+\d+):\s+(.*)$`)

// FetchQuestions downloads the appendix and returns its questions keyed by
// pillar name. Only the named pillars are reported.
func (c *Client) FetchQuestions(ctx context.Context, pillars []string) (map[string][]Question, error) {
	body, err := c.get(ctx, c.appendixURL)
	if err != nil {
		return nil, err
	}
	out, err := ParseAppendix(bytes.NewReader(body), pillars)
	if err != nil {
		return nil, err
	}
	for _, p := range pillars {
		c.logger.Debug("appendix pillar", "pillar", p, "questions", len(out[p]))
	}
	return out, nil
}

// ParseAppendix extracts questions from the framework appendix. Each h2
// whose text contains a pillar name (case-insensitively) introduces that
// pillar; its questions are the <dt> entries of every div.variablelist
// before the next h2, one list per focus area.
func ParseAppendix(r io.Reader, pillars []string) (map[string][]Question, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse appendix: %w", err)
	}

	out := make(map[string][]Question, len(pillars))
	nodes := flatten(doc)
	for i, n := range nodes {
		if !isElement(n, "h2") {
			continue
		}
		pillar := matchPillar(textContent(n), pillars)
		if pillar == "" {
			continue
		}
		seen := make(map[string]bool)
		for _, q := range out[pillar] {
			seen[q.ID] = true
		}
		for _, list := range variableLists(nodes[i+1:]) {
			for _, dt := range findAll(list, "dt") {
				m := reQuestionTerm.FindStringSubmatch(collapseSpace(textContent(dt)))
				if m == nil || seen[m[1]] {
					continue
				}
				seen[m[1]] = true
				out[pillar] = append(out[pillar], Question{ID: m[1], Title: strings.TrimSpace(m[2])})
			}
		}
	}
	return out, nil
}

func matchPillar(heading string, pillars []string) string {
	heading = strings.ToLower(heading)
	for _, p := range pillars {
		if strings.Contains(heading, strings.ToLower(p)) {
			return p
		}
	}
	return ""
}

// variableLists returns the div.variablelist elements before the next h2.
// Lists nested inside an earlier match are covered by it and skipped.
func variableLists(nodes []*html.Node) []*html.Node {
	var lists []*html.Node
	for _, n := range nodes {
		if isElement(n, "h2") {
			break
		}
		if !isElement(n, "div") || !hasClass(n, "variablelist") {
			continue
		}
		if len(lists) > 0 && contains(lists[len(lists)-1], n) {
			continue
		}
		lists = append(lists, n)
	}
	return lists
}

func contains(outer, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == outer {
			return true
		}
	}
	return false
}

// flatten lists the nodes of the tree in document order.
func flatten(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		out = append(out, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for _, d := range flatten(n) {
		if isElement(d, tag) {
			out = append(out, d)
		}
	}
	return out
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
