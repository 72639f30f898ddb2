package corpus

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var (
	// LiquidPattern matches Liquid tags and output expressions.
	LiquidPattern = regexp.MustCompile(`\{%-?\s*[a-z]+[^%]*-?%\}|\{\{[^}]*\}\}`)
	// PlaceholderPattern matches unsubstituted template fields such as {title}.
	PlaceholderPattern = regexp.MustCompile(`\{(title|name|description|pillar|pillar_dir|question_id|question_title)\}`)
)

// Match is a pattern hit within a page body.
type Match struct {
	Line int // 1-based line within the body
	Text string
}

// ScanBody reports every match of re outside fenced code blocks.
func ScanBody(body []byte, re *regexp.Regexp) []Match {
	var out []Match
	inFence := false
	fence := ""

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case strings.HasPrefix(trimmed, fence):
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}
		for _, m := range re.FindAllString(text, -1) {
			out = append(out, Match{Line: line, Text: m})
		}
	}
	return out
}

// ContainsLine reports whether any body line outside code fences contains s.
func ContainsLine(body []byte, s string) (int, bool) {
	matches := ScanBody(body, regexp.MustCompile(regexp.QuoteMeta(s)))
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Line, true
}
