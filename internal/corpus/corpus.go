package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Corpus is the set of pages below a docs root.
type Corpus struct {
	Root  string
	Pages []*Page

	byPath   map[string]*Page
	byOutput map[string]*Page
	byTitle  map[string][]*Page
}

// New builds a corpus from already parsed pages.
func New(root string, pages []*Page) *Corpus {
	c := &Corpus{Root: root}
	for _, p := range pages {
		c.add(p)
	}
	c.sort()
	return c
}

// Load walks root and parses every Markdown file. Hidden directories and
// directories starting with "_" (build output, includes) are skipped.
func Load(root string) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("docs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs directory %s is not a directory", root)
	}

	c := &Corpus{Root: root}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		raw, err := os.ReadFile(p) //nolint:gosec // walking a user supplied docs tree
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		page, err := ParsePage(rel, raw)
		if err != nil {
			return err
		}
		page.AbsPath = p
		if fi, err := d.Info(); err == nil {
			page.ModTime = fi.ModTime()
		}
		c.add(page)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.sort()
	return c, nil
}

func (c *Corpus) add(p *Page) {
	if c.byPath == nil {
		c.byPath = make(map[string]*Page)
		c.byOutput = make(map[string]*Page)
		c.byTitle = make(map[string][]*Page)
	}
	if old, ok := c.byPath[p.Path]; ok {
		c.remove(old)
	}
	c.Pages = append(c.Pages, p)
	c.byPath[p.Path] = p
	c.byOutput[p.OutputPath()] = p
	if t := p.Title(); t != "" {
		c.byTitle[t] = append(c.byTitle[t], p)
	}
}

func (c *Corpus) remove(p *Page) {
	for i, q := range c.Pages {
		if q == p {
			c.Pages = append(c.Pages[:i], c.Pages[i+1:]...)
			break
		}
	}
	delete(c.byPath, p.Path)
	if c.byOutput[p.OutputPath()] == p {
		delete(c.byOutput, p.OutputPath())
	}
	titled := c.byTitle[p.Title()]
	for i, q := range titled {
		if q == p {
			c.byTitle[p.Title()] = append(titled[:i], titled[i+1:]...)
			break
		}
	}
}

func (c *Corpus) sort() {
	sort.Slice(c.Pages, func(i, j int) bool {
		return c.Pages[i].Path < c.Pages[j].Path
	})
	for _, pages := range c.byTitle {
		sort.Slice(pages, func(i, j int) bool {
			return pages[i].Path < pages[j].Path
		})
	}
}

// Add inserts or replaces a page, keeping the corpus ordered by path.
func (c *Corpus) Add(p *Page) {
	c.add(p)
	c.sort()
}

// Lookup returns the page at a slash-separated relative path.
func (c *Corpus) Lookup(relPath string) (*Page, error) {
	if p, ok := c.byPath[filepath.ToSlash(relPath)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%s: %w", relPath, ErrNotFound)
}

// ByTitle returns every page with the given title, ordered by path.
func (c *Corpus) ByTitle(title string) []*Page {
	return c.byTitle[title]
}

// ByOutput returns the page rendered to the given site-relative output path.
func (c *Corpus) ByOutput(out string) (*Page, bool) {
	p, ok := c.byOutput[strings.TrimPrefix(out, "/")]
	return p, ok
}

// Titles returns the distinct page titles in sorted order.
func (c *Corpus) Titles() []string {
	titles := make([]string, 0, len(c.byTitle))
	for t, pages := range c.byTitle {
		if len(pages) > 0 {
			titles = append(titles, t)
		}
	}
	sort.Strings(titles)
	return titles
}

// Under returns the pages whose path lies inside dir (slash-separated).
func (c *Corpus) Under(dir string) []*Page {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" || dir == "." {
		return c.Pages
	}
	var out []*Page
	for _, p := range c.Pages {
		if strings.HasPrefix(p.Path, dir+"/") {
			out = append(out, p)
		}
	}
	return out
}
