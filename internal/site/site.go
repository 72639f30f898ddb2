// Package site renders the documentation corpus into a static HTML site.
//
// Every page is converted with goldmark, wrapped in the default layout with
// sidebar navigation and breadcrumbs, and written next to its siblings so
// relative links between pages keep working. Inline <style> blocks are
// lifted into a single shared stylesheet.
package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"
)

const (
	stylesheetPath = "assets/site.css"
	manifestFile   = "manifest.json"
	searchFile     = "search.json"
	sitemapFile    = "sitemap.xml"
	robotsFile     = "robots.txt"
)

// Config holds configuration for a site build.
type Config struct {
	DocsDir     string
	OutputDir   string
	Title       string
	BaseURL     string // absolute site URL used in sitemap.xml; its path prefixes links
	Workers     int    // concurrent page renders, defaults to GOMAXPROCS
	Incremental bool
	Logger      *slog.Logger
}

// Result summarises a build.
type Result struct {
	BuildID  string
	Pages    int
	Rendered int
	Skipped  int
	Styles   int // distinct inline style blocks moved into the stylesheet
	Assets   int // non-Markdown files copied from the docs tree
	Duration time.Duration
	Tree     *nav.Tree
}

// Builder renders sites. A nil store disables incremental builds.
type Builder struct {
	cfg    Config
	store  *state.Store
	md     goldmark.Markdown
	layout *template.Template
	base   string // URL path prefix derived from BaseURL, without trailing slash
}

// New creates a builder.
func New(cfg Config, store *state.Store) (*Builder, error) {
	if cfg.DocsDir == "" {
		return nil, fmt.Errorf("docs directory is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Title == "" {
		cfg.Title = "Documentation"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var base string
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base_url %q: %w", cfg.BaseURL, err)
		}
		base = strings.TrimSuffix(u.Path, "/")
	}

	layout, err := parseLayout()
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:    cfg,
		store:  store,
		md:     newMarkdown(),
		layout: layout,
		base:   base,
	}, nil
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// href prefixes a root-relative URL with the site base path.
func (b *Builder) href(u string) string {
	return b.base + u
}

// pageOutput is what a worker produces for one page.
type pageOutput struct {
	hash     string
	styles   []string
	text     string
	heading  string
	rendered bool
}

// Build renders the whole site into the output directory.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{BuildID: uuid.NewString()}
	log := b.cfg.Logger.With("build_id", res.BuildID)

	c, err := corpus.Load(b.cfg.DocsDir)
	if err != nil {
		return nil, err
	}
	tree := nav.Build(c)
	res.Tree = tree
	res.Pages = len(c.Pages)

	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil { //nolint:gosec // G301: served by a web server
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fingerprint, err := navFingerprint(tree, b.cfg.Title)
	if err != nil {
		return nil, err
	}

	incremental := b.cfg.Incremental && b.store != nil
	if b.store != nil && !b.cfg.Incremental {
		if err := b.store.ClearPageHashes(ctx); err != nil {
			return nil, err
		}
	}

	outputs := make([]pageOutput, len(c.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, p := range c.Pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := b.buildPage(gctx, tree, p, fingerprint, incremental)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var styles []string
	seen := make(map[string]bool)
	for i, out := range outputs {
		for _, s := range out.styles {
			if !seen[s] {
				seen[s] = true
				styles = append(styles, s)
			}
		}
		if out.rendered {
			res.Rendered++
			if b.store != nil {
				if err := b.store.SetPageHash(ctx, c.Pages[i].Path, out.hash); err != nil {
					return nil, err
				}
			}
		} else {
			res.Skipped++
		}
	}
	res.Styles = len(styles)

	assets, err := b.copyAssets()
	if err != nil {
		return nil, err
	}
	res.Assets = assets

	if err := b.writeStylesheet(styles); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := b.writeManifest(tree, res.BuildID, now); err != nil {
		return nil, err
	}
	if err := b.writeSearchIndex(tree, outputs, c); err != nil {
		return nil, err
	}
	if err := b.writeSitemap(tree, now); err != nil {
		return nil, err
	}
	if err := b.writeRobots(); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	if b.store != nil {
		err := b.store.RecordBuild(ctx, &state.Build{
			ID:         res.BuildID,
			StartedAt:  start.UTC(),
			FinishedAt: start.Add(res.Duration).UTC(),
			Pages:      res.Pages,
			Rendered:   res.Rendered,
			Skipped:    res.Skipped,
		})
		if err != nil {
			return nil, err
		}
	}

	log.Info("site built",
		"pages", res.Pages,
		"rendered", res.Rendered,
		"skipped", res.Skipped,
		"styles", res.Styles,
		"duration", res.Duration)
	return res, nil
}

func (b *Builder) buildPage(ctx context.Context, tree *nav.Tree, p *corpus.Page, fingerprint string, incremental bool) (pageOutput, error) {
	styles, body := extractStyles(p.Body)
	text, heading := plainText(b.md, body)
	out := pageOutput{
		hash:    pageHash(p, fingerprint),
		styles:  styles,
		text:    text,
		heading: heading,
	}
	dest := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(p.OutputPath()))

	if incremental {
		prev, err := b.store.PageHash(ctx, p.Path)
		if err != nil {
			return out, err
		}
		if prev == out.hash {
			if _, err := os.Stat(dest); err == nil {
				b.cfg.Logger.Debug("page unchanged", "path", p.Path)
				return out, nil
			}
		}
	}

	html, err := b.renderPage(tree, p, body)
	if err != nil {
		return out, err
	}
	if err := writeFile(dest, html); err != nil {
		return out, err
	}
	b.cfg.Logger.Debug("page rendered", "path", p.Path, "output", p.OutputPath())
	out.rendered = true
	return out, nil
}

// pageHash identifies the rendered form of a page: its source, the
// navigation it is embedded in, and the layout.
func pageHash(p *corpus.Page, fingerprint string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, layoutVersion)
	_, _ = io.WriteString(h, fingerprint)
	_, _ = io.WriteString(h, p.Path)
	_, _ = h.Write(p.Raw)
	return hex.EncodeToString(h.Sum(nil))
}

// navFingerprint changes whenever any page's position or label in the
// sidebar changes, since every page embeds the full sidebar.
func navFingerprint(tree *nav.Tree, title string) (string, error) {
	m := nav.GenerateManifest(tree, title, "", time.Time{})
	data, err := json.Marshal(m.NavTree)
	if err != nil {
		return "", fmt.Errorf("failed to hash navigation: %w", err)
	}
	sum := sha256.Sum256(append([]byte(title+"\n"), data...))
	return hex.EncodeToString(sum[:]), nil
}

func (b *Builder) writeStylesheet(styles []string) error {
	var css strings.Builder
	css.Write(baseCSS)
	if len(styles) > 0 {
		css.WriteString("\n/* Styles collected from pages */\n")
		for _, s := range styles {
			css.WriteString(s)
			css.WriteString("\n\n")
		}
	}
	return writeFile(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(stylesheetPath)), []byte(css.String()))
}

func (b *Builder) writeManifest(tree *nav.Tree, buildID string, now time.Time) error {
	m := nav.GenerateManifest(tree, b.cfg.Title, buildID, now)
	return writeJSON(filepath.Join(b.cfg.OutputDir, manifestFile), m)
}

// SearchEntry is one record in search.json.
type SearchEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Path    string `json:"path"`
	Parent  string `json:"parent,omitempty"`
	Heading string `json:"heading,omitempty"`
	Excerpt string `json:"excerpt"`
}

func (b *Builder) writeSearchIndex(tree *nav.Tree, outputs []pageOutput, c *corpus.Corpus) error {
	index := make(map[*corpus.Page]int, len(c.Pages))
	for i, p := range c.Pages {
		index[p] = i
	}
	entries := make([]SearchEntry, 0, len(c.Pages))
	tree.Walk(func(n *nav.Node) bool {
		out := outputs[index[n.Page]]
		e := SearchEntry{
			Title:   nav.DisplayTitle(n.Page),
			URL:     b.href(n.Page.URL()),
			Path:    n.Page.Path,
			Heading: out.heading,
			Excerpt: excerpt(out.text, 200),
		}
		if n.Parent != nil {
			e.Parent = nav.DisplayTitle(n.Parent.Page)
		}
		entries = append(entries, e)
		return true
	})
	return writeJSON(filepath.Join(b.cfg.OutputDir, searchFile), entries)
}

func (b *Builder) absURL(u string) string {
	if b.cfg.BaseURL == "" {
		return u
	}
	base, err := url.Parse(b.cfg.BaseURL)
	if err != nil || base.Host == "" {
		return b.href(u)
	}
	base.Path = path.Join(base.Path, u)
	if strings.HasSuffix(u, "/") && !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.String()
}

func (b *Builder) writeSitemap(tree *nav.Tree, now time.Time) error {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	lastmod := now.Format("2006-01-02")
	tree.Walk(func(n *nav.Node) bool {
		loc := template.HTMLEscapeString(b.absURL(n.Page.URL()))
		fmt.Fprintf(&sb, "  <url><loc>%s</loc><lastmod>%s</lastmod></url>\n", loc, lastmod)
		return true
	})
	sb.WriteString("</urlset>\n")
	return writeFile(filepath.Join(b.cfg.OutputDir, sitemapFile), []byte(sb.String()))
}

func (b *Builder) writeRobots() error {
	robots := "User-agent: *\nAllow: /\n"
	if b.cfg.BaseURL != "" {
		robots += "Sitemap: " + b.absURL("/"+sitemapFile) + "\n"
	}
	return writeFile(filepath.Join(b.cfg.OutputDir, robotsFile), []byte(robots))
}

func writeJSON(dest string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(dest), err)
	}
	return writeFile(dest, append(data, '\n'))
}

// copyAssets copies images and other non-Markdown files into the output
// directory at the same relative path, so links that resolve against the
// docs tree also resolve in the built site. Hidden and "_" prefixed
// directories are skipped like they are for pages.
func (b *Builder) copyAssets() (int, error) {
	out, err := filepath.Abs(b.cfg.OutputDir)
	if err != nil {
		return 0, err
	}
	copied := 0
	err = filepath.WalkDir(b.cfg.DocsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p == b.cfg.DocsDir {
				return nil
			}
			if abs, err := filepath.Abs(p); err == nil && abs == out {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(b.cfg.DocsDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p) //nolint:gosec // walking the docs tree
		if err != nil {
			return fmt.Errorf("failed to read asset %s: %w", rel, err)
		}
		if err := writeFile(filepath.Join(b.cfg.OutputDir, rel), data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy assets: %w", err)
	}
	return copied, nil
}

func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil { //nolint:gosec // G301: served by a web server
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:gosec // G306: served by a web server
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
