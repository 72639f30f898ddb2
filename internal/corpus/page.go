package corpus

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Page is a single Markdown document in the corpus.
type Page struct {
	Path           string // slash-separated, relative to the docs root
	AbsPath        string
	FrontMatter    FrontMatter
	HasFrontMatter bool
	Body           []byte
	Raw            []byte
	ModTime        time.Time

	bodyLine int // 1-based line in Raw where Body starts
}

// ParsePage builds a Page from raw file content.
// Pages without a front matter block are returned with HasFrontMatter unset.
func ParsePage(relPath string, raw []byte) (*Page, error) {
	relPath = filepath.ToSlash(relPath)
	fm, body, found, err := splitFrontMatter(raw)
	if err != nil {
		return nil, &FrontMatterError{Path: relPath, Err: err}
	}

	p := &Page{
		Path:           relPath,
		FrontMatter:    fm,
		HasFrontMatter: found,
		Body:           body,
		Raw:            raw,
		bodyLine:       1,
	}
	if found && bytes.HasSuffix(raw, body) {
		p.bodyLine = bytes.Count(raw[:len(raw)-len(body)], []byte("\n")) + 1
	}
	return p, nil
}

// ID returns the file name without its extension, e.g. "COST02-BP03".
func (p *Page) ID() string {
	return strings.TrimSuffix(path.Base(p.Path), path.Ext(p.Path))
}

// Dir returns the slash-separated directory of the page ("." at the root).
func (p *Page) Dir() string {
	return path.Dir(p.Path)
}

// Title returns the front matter title.
func (p *Page) Title() string {
	return p.FrontMatter.Title
}

// IsIndex reports whether the page is a directory index (index.md).
func (p *Page) IsIndex() bool {
	return path.Base(p.Path) == "index.md"
}

// BodyLine converts a 1-based line within Body into a line within the file.
func (p *Page) BodyLine(line int) int {
	if line <= 0 {
		return 0
	}
	return p.bodyLine + line - 1
}

// FrontMatterLine returns the 1-based file line of a front matter key, or 0.
func (p *Page) FrontMatterLine(key string) int {
	if !p.HasFrontMatter {
		return 0
	}
	prefix := key + ":"
	lines := strings.Split(string(p.Raw), "\n")
	for i := 0; i < len(lines) && i+1 < p.bodyLine; i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), prefix) {
			return i + 1
		}
	}
	return 0
}

// OutputPath is the slash-separated path of the rendered HTML file, relative
// to the site root. A permalink takes precedence over the source location.
func (p *Page) OutputPath() string {
	if pl := strings.TrimSpace(p.FrontMatter.Permalink); pl != "" {
		pl = strings.TrimPrefix(pl, "/")
		switch {
		case pl == "" || strings.HasSuffix(pl, "/"):
			return pl + "index.html"
		case path.Ext(pl) == "":
			return pl + "/index.html"
		default:
			return pl
		}
	}
	return strings.TrimSuffix(p.Path, path.Ext(p.Path)) + ".html"
}

// URL is the root-relative URL of the rendered page. Index pages are
// addressed by their directory.
func (p *Page) URL() string {
	out := p.OutputPath()
	if out == "index.html" {
		return "/"
	}
	if strings.HasSuffix(out, "/index.html") {
		return "/" + strings.TrimSuffix(out, "index.html")
	}
	return "/" + out
}

// Encode renders the page back to bytes with front matter in canonical key order.
func (p *Page) Encode() ([]byte, error) {
	if !p.HasFrontMatter {
		return append([]byte(nil), p.Body...), nil
	}
	head, err := encodeFrontMatter(p.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	return append(head, p.Body...), nil
}

// Header returns the front matter block exactly as it appears in Raw,
// including delimiters. It is empty for pages without front matter.
func (p *Page) Header() []byte {
	if !p.HasFrontMatter || !bytes.HasSuffix(p.Raw, p.Body) {
		return nil
	}
	return p.Raw[:len(p.Raw)-len(p.Body)]
}

// WriteFile encodes the page and replaces the file at AbsPath atomically.
func WriteFile(p *Page) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return WriteRaw(p, data)
}

// WriteRaw replaces the file at AbsPath with data atomically and updates Raw.
func WriteRaw(p *Page, data []byte) error {
	if p.AbsPath == "" {
		return fmt.Errorf("%s: page has no file path", p.Path)
	}
	if err := os.MkdirAll(filepath.Dir(p.AbsPath), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", p.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.AbsPath), ".wadocs-*.md")
	if err != nil {
		return fmt.Errorf("writing %s: %w", p.Path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", p.Path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", p.Path, err)
	}
	if err := os.Rename(tmpName, p.AbsPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", p.Path, err)
	}

	p.Raw = data
	return nil
}
