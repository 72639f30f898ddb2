package fix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// Styling converts plain Markdown question pages into the styled block
// layout. It is not part of the default set; run it with `wadocs style`.
var Styling = Fixer{
	Name:        "stylize",
	Description: "Convert plain question pages to the styled block layout",
	Apply: func(p *corpus.Page, _ *Context) ([]byte, bool) {
		if p.IsIndex() {
			return p.Raw, false
		}
		body, ok := StylePage(p.Body)
		if !ok {
			return p.Raw, false
		}
		return withBody(p, body), true
	},
}

const defaultDescription = "*This page contains guidance for addressing this question from the AWS Well-Architected Framework.*"

var (
	questionHeading = regexp.MustCompile(`(?m)^# ([A-Z]+\d+): (.*)$`)
	boldStep        = regexp.MustCompile(`^\d+\.\s+\*\*(.*?)\*\*:\s*([\s\S]*)$`)
	numberedItem    = regexp.MustCompile(`^\d+\.\s+`)
	bulletItem      = regexp.MustCompile(`^- `)
	serviceItem     = regexp.MustCompile(`^- \*\*(.*?)\*\* - ([\s\S]*)$`)
	resourceLink    = regexp.MustCompile(`- \[(.*?)\]\((.*?)\)`)
)

// StylePage rewrites a question page body of the form
//
//	# COST05: Title
//
//	Description paragraph.
//
//	## Best Practices / ## Implementation Guidance /
//	## AWS Services to Consider / ## Related Resources
//
// into pillar-header, best-practice, implementation-step, aws-service and
// related-resources blocks. ok is false when the body has no question
// heading or is already styled.
func StylePage(body []byte) ([]byte, bool) {
	text := string(body)
	if strings.Contains(text, `<div class="pillar-header">`) {
		return body, false
	}
	loc := questionHeading.FindStringSubmatchIndex(text)
	if loc == nil {
		return body, false
	}
	id, title := text[loc[2]:loc[3]], strings.TrimSpace(text[loc[4]:loc[5]])

	before := text[:loc[0]]
	rest := strings.TrimLeft(text[loc[1]:], "\n")

	description := defaultDescription
	if para, after, ok := strings.Cut(rest, "\n\n"); ok && !strings.HasPrefix(para, "#") {
		description = strings.TrimSpace(para)
		rest = after
	}

	var b strings.Builder
	b.WriteString(before)
	fmt.Fprintf(&b, "<div class=\"pillar-header\">\n  <h1>%s: %s</h1>\n  <p>%s</p>\n</div>\n\n", id, title, description)

	preamble, sections := splitSections(rest)
	b.WriteString(preamble)
	for _, s := range sections {
		b.WriteString(styleSection(s))
	}
	return []byte(b.String()), true
}

type section struct {
	heading string // text after "## "
	content string
}

// splitSections splits text at level-two headings.
func splitSections(text string) (string, []section) {
	lines := strings.SplitAfter(text, "\n")
	var pre strings.Builder
	var out []section
	for _, line := range lines {
		if h, ok := strings.CutPrefix(line, "## "); ok {
			out = append(out, section{heading: strings.TrimSpace(h)})
			continue
		}
		if len(out) == 0 {
			pre.WriteString(line)
			continue
		}
		out[len(out)-1].content += line
	}
	return pre.String(), out
}

func styleSection(s section) string {
	content := strings.TrimSpace(s.content)
	switch s.heading {
	case "Best Practices":
		return "## Best Practices\n\n" + styleBestPractices(content)
	case "Implementation Guidance":
		return "## Implementation Guidance\n\n" + styleSteps(content)
	case "AWS Services to Consider":
		return "## AWS Services to Consider\n\n" + styleServices(content)
	case "Related Resources":
		return styleResources(content) + "\n"
	default:
		return "## " + s.heading + "\n" + s.content
	}
}

func block(class, heading, text string) string {
	return fmt.Sprintf("<div class=\"%s\">\n  <h4>%s</h4>\n  <p>%s</p>\n</div>\n\n", class, heading, strings.TrimSpace(text))
}

func styleBestPractices(content string) string {
	var b strings.Builder
	var title string
	var buf strings.Builder
	flush := func() {
		if title != "" {
			b.WriteString(block("best-practice", title, buf.String()))
		}
		buf.Reset()
	}
	for _, line := range strings.SplitAfter(content, "\n") {
		if h, ok := strings.CutPrefix(line, "### "); ok {
			flush()
			title = strings.TrimSpace(h)
			continue
		}
		buf.WriteString(line)
	}
	flush()
	if b.Len() == 0 {
		return block("best-practice", "Best Practice", content)
	}
	return b.String()
}

// listItems splits content into items that start on lines matching start.
func listItems(content string, start *regexp.Regexp) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		switch {
		case start.MatchString(line):
			items = append(items, line)
		case len(items) > 0 && strings.TrimSpace(line) != "":
			items[len(items)-1] += "\n" + line
		}
	}
	return items
}

func styleSteps(content string) string {
	items := listItems(content, numberedItem)
	if len(items) == 0 {
		return block("implementation-step", "Implementation Guidance", content)
	}

	var b strings.Builder
	for i, item := range items {
		if m := boldStep.FindStringSubmatch(item); m != nil {
			b.WriteString(block("implementation-step", fmt.Sprintf("%d. %s", i+1, m[1]), m[2]))
			continue
		}
		b.WriteString(block("implementation-step", fmt.Sprintf("Step %d", i+1), numberedItem.ReplaceAllString(item, "")))
	}
	return b.String()
}

func service(name, desc string) string {
	return fmt.Sprintf("<div class=\"aws-service\">\n  <div class=\"aws-service-content\">\n    <h4>%s</h4>\n    <p>%s</p>\n  </div>\n</div>\n\n", name, strings.TrimSpace(desc))
}

func styleServices(content string) string {
	items := listItems(content, bulletItem)
	if len(items) == 0 {
		return service("AWS Services", "Add relevant AWS services for this question.")
	}

	var b strings.Builder
	for _, item := range items {
		if m := serviceItem.FindStringSubmatch(item); m != nil {
			b.WriteString(service(m[1], m[2]))
			continue
		}
		b.WriteString(service(strings.TrimSpace(strings.TrimPrefix(item, "- ")), "AWS service for this question."))
	}
	return b.String()
}

func styleResources(content string) string {
	var b strings.Builder
	b.WriteString("<div class=\"related-resources\">\n  <h2>Related Resources</h2>\n  <ul>\n")

	links := resourceLink.FindAllStringSubmatch(content, -1)
	switch {
	case len(links) > 0:
		for _, m := range links {
			fmt.Fprintf(&b, "    <li><a href=\"%s\">%s</a></li>\n", m[2], m[1])
		}
	default:
		items := listItems(content, bulletItem)
		if len(items) == 0 {
			b.WriteString("    <li>Add related resources for this question.</li>\n")
		}
		for _, item := range items {
			fmt.Fprintf(&b, "    <li>%s</li>\n", strings.TrimSpace(strings.TrimPrefix(item, "- ")))
		}
	}
	b.WriteString("  </ul>\n</div>")
	return b.String()
}
