package corpus

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// LinkKind distinguishes HTML attributes from Markdown link syntax.
type LinkKind int

// Link kinds.
const (
	LinkHref LinkKind = iota
	LinkMarkdown
)

// Link is an outgoing reference found in a page body.
type Link struct {
	Target string
	Line   int // 1-based line within the body
	Kind   LinkKind
}

var (
	hrefPattern     = regexp.MustCompile(`href\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	markdownPattern = regexp.MustCompile(`!?\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	schemePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// ExtractLinks returns the links in body, ignoring fenced code blocks.
func ExtractLinks(body []byte) []Link {
	var links []Link
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

		for _, m := range hrefPattern.FindAllStringSubmatch(text, -1) {
			target := m[1]
			if target == "" {
				target = m[2]
			}
			links = append(links, Link{Target: target, Line: line, Kind: LinkHref})
		}
		for _, m := range markdownPattern.FindAllStringSubmatch(text, -1) {
			links = append(links, Link{Target: m[1], Line: line, Kind: LinkMarkdown})
		}
	}
	return links
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	default:
		return ""
	}
}

// IsInternal reports whether the link points inside the site. External URLs,
// mailto/tel links, pure fragments and Liquid expressions are not internal.
func (l Link) IsInternal() bool {
	t := strings.TrimSpace(l.Target)
	switch {
	case t == "", strings.HasPrefix(t, "#"), strings.HasPrefix(t, "//"):
		return false
	case strings.Contains(t, "{{"), strings.Contains(t, "{%"):
		return false
	case schemePattern.MatchString(t):
		return false
	}
	return true
}

// Resolution is the outcome of resolving an internal link.
type Resolution struct {
	Page  *Page  // set when the target is a page
	Asset string // slash-separated path when the target is a non-page file
}

// Resolve maps an internal link target onto a page or an existing asset
// file. Relative targets are resolved from the directory from renders into,
// which differs from its source directory when it has a permalink. Query
// strings and fragments are ignored.
func (c *Corpus) Resolve(from *Page, target string) (Resolution, bool) {
	target = strings.TrimSpace(target)
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return Resolution{Page: from}, from != nil
	}

	var rel string
	if strings.HasPrefix(target, "/") {
		if p, ok := c.byPermalink(target); ok {
			return Resolution{Page: p}, true
		}
		rel = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		base := "."
		if from != nil {
			base = path.Dir(from.OutputPath())
		}
		rel = path.Clean(path.Join(base, target))
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return Resolution{}, false
	}
	dirTarget := strings.HasSuffix(target, "/") || rel == "."

	for _, cand := range pageCandidates(rel, dirTarget) {
		if p, ok := c.byOutput[cand]; ok {
			return Resolution{Page: p}, true
		}
		if p, ok := c.byPath[cand]; ok {
			return Resolution{Page: p}, true
		}
	}

	ext := strings.ToLower(path.Ext(rel))
	if ext != "" && ext != ".html" && ext != ".md" && c.Root != "" {
		if fi, err := os.Stat(filepath.Join(c.Root, filepath.FromSlash(rel))); err == nil && !fi.IsDir() {
			return Resolution{Asset: rel}, true
		}
	}
	return Resolution{}, false
}

func (c *Corpus) byPermalink(target string) (*Page, bool) {
	want := strings.TrimSuffix(target, "/")
	for _, p := range c.Pages {
		pl := strings.TrimSpace(p.FrontMatter.Permalink)
		if pl == "" {
			continue
		}
		if strings.TrimSuffix(pl, "/") == want {
			return p, true
		}
	}
	return nil, false
}

// pageCandidates lists output and source paths a link may refer to.
func pageCandidates(rel string, dirTarget bool) []string {
	if dirTarget {
		if rel == "." {
			return []string{"index.html", "index.md"}
		}
		return []string{rel + "/index.html", rel + "/index.md"}
	}

	switch strings.ToLower(path.Ext(rel)) {
	case ".html":
		stem := strings.TrimSuffix(rel, path.Ext(rel))
		return []string{rel, stem + ".md"}
	case ".md":
		stem := strings.TrimSuffix(rel, path.Ext(rel))
		return []string{rel, stem + ".html"}
	case "":
		return []string{rel + ".html", rel + ".md", rel + "/index.html", rel + "/index.md"}
	default:
		// Dotted IDs such as "v1.2" are still tried as pages.
		return []string{rel + ".html", rel + ".md"}
	}
}

// RewriteLinks passes every link target outside fenced code blocks to fn and
// substitutes the returned target when fn reports a change.
func RewriteLinks(body []byte, fn func(target string) (string, bool)) ([]byte, bool) {
	lines := strings.SplitAfter(string(body), "\n")
	inFence := false
	fence := ""
	changed := false

	replace := func(re *regexp.Regexp, text string) string {
		return re.ReplaceAllStringFunc(text, func(m string) string {
			sub := re.FindStringSubmatchIndex(m)
			for g := 1; g*2 < len(sub); g++ {
				start, end := sub[g*2], sub[g*2+1]
				if start < 0 {
					continue
				}
				if next, ok := fn(m[start:end]); ok {
					changed = true
					return m[:start] + next + m[end:]
				}
				return m
			}
			return m
		})
	}

	for i, text := range lines {
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
		text = replace(hrefPattern, text)
		lines[i] = replace(markdownPattern, text)
	}
	if !changed {
		return body, false
	}
	return []byte(strings.Join(lines, "")), true
}
