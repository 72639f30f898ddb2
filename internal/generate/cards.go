package generate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

// ErrNoQuestionSection is returned when a pillar index has no
// "## Questions" section with a question-cards block.
var ErrNoQuestionSection = errors.New("no question-cards section")

const questionsIntro = "The AWS Well-Architected Framework provides a set of questions that allows you to review an existing or proposed architecture. It also provides a set of AWS best practices for each pillar."

var (
	questionsHeading = regexp.MustCompile(`(?m)^## Questions[ \t]*$`)
	cardsOpen        = regexp.MustCompile(`<div class="question-cards">`)
	divTag           = regexp.MustCompile(`(?i)<div\b|</div\s*>`)
)

// Cards lists the question pages under a pillar directory, ordered by ID,
// linked in the given style. Best-practice pages are not listed.
func Cards(c *corpus.Corpus, dir string, style core.LinkStyle) []Link {
	var cards []Link
	for _, p := range c.Under(dir) {
		if p.Dir() != dir || !catalog.IsQuestionID(p.ID()) {
			continue
		}
		title := p.Title()
		if title == "" {
			title = p.ID()
		}
		cards = append(cards, Link{ID: p.ID(), Title: title, Href: style.Format(p.ID())})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

func questionSection(cards []Link) string {
	var b strings.Builder
	b.WriteString("## Questions\n\n")
	b.WriteString(questionsIntro)
	b.WriteString("\n\n<div class=\"question-cards\">\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "  <div class=\"question-card\">\n    <h3>%s</h3>\n    <a href=\"%s\">View details →</a>\n  </div>\n",
			html.EscapeString(c.Title), c.Href)
	}
	b.WriteString("</div>\n")
	return b.String()
}

// UpdateQuestionCards replaces the "## Questions" section of a pillar index,
// up to the balanced end of its question-cards block, with a static list of
// cards. Any Liquid loop inside the old block is discarded with it.
func UpdateQuestionCards(p *corpus.Page, cards []Link) ([]byte, bool, error) {
	body := string(p.Body)

	head := questionsHeading.FindStringIndex(body)
	if head == nil {
		return p.Raw, false, fmt.Errorf("%s: %w", p.Path, ErrNoQuestionSection)
	}
	open := cardsOpen.FindStringIndex(body[head[1]:])
	if open == nil {
		return p.Raw, false, fmt.Errorf("%s: %w", p.Path, ErrNoQuestionSection)
	}
	start := head[1] + open[0]

	end, ok := closingDiv(body, start)
	if !ok {
		return p.Raw, false, fmt.Errorf("%s: unbalanced question-cards block: %w", p.Path, ErrNoQuestionSection)
	}
	for end < len(body) && body[end] == '\n' {
		end++
	}

	section := questionSection(cards)
	rest := body[end:]
	if rest != "" {
		section += "\n"
	}
	next := body[:head[0]] + section + rest
	if next == body {
		return p.Raw, false, nil
	}

	out := append([]byte(nil), p.Header()...)
	return append(out, next...), true, nil
}

// closingDiv returns the offset just past the </div> that closes the <div>
// starting at start.
func closingDiv(s string, start int) (int, bool) {
	depth := 0
	for _, loc := range divTag.FindAllStringIndex(s[start:], -1) {
		tag := s[start+loc[0] : start+loc[1]]
		if strings.HasPrefix(tag, "</") {
			depth--
			if depth == 0 {
				return start + loc[1], true
			}
			continue
		}
		depth++
	}
	return 0, false
}
