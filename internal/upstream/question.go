package upstream

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)
	reAnchorLinks       = regexp.MustCompile(`\s*\[#\]\(#[\w-]*\)`)
)

// FetchQuestionMarkdown downloads a question page and converts its main
// content to Markdown.
func (c *Client) FetchQuestionMarkdown(ctx context.Context, id string) (string, error) {
	url, err := c.QuestionPageURL(id)
	if err != nil {
		return "", err
	}
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return PageMarkdown(body)
}

// PageMarkdown converts the main content of an AWS documentation page to
// Markdown. The content root is #main-content, then <main>, then <article>,
// then <body>.
func PageMarkdown(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	root := mainContent(doc)
	if root == nil {
		return "", fmt.Errorf("page has no body")
	}

	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
	}

	md, err := htmltomarkdown.ConvertString(sb.String())
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	md = reAnchorLinks.ReplaceAllString(md, "")
	md = reExcessiveNewlines.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md) + "\n", nil
}

func mainContent(doc *html.Node) *html.Node {
	nodes := flatten(doc)
	for _, n := range nodes {
		if n.Type == html.ElementNode && getAttr(n, "id") == "main-content" {
			return n
		}
	}
	for _, tag := range []string{"main", "article", "body"} {
		for _, n := range nodes {
			if isElement(n, tag) {
				return n
			}
		}
	}
	return nil
}
