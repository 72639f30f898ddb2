package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/leapstack-labs/wadocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pillarStyle = `<style>
.pillar-header { background: #2d6a4f; }
</style>`

func siteFixture() map[string]string {
	return map[string]string{
		"index.md": testutil.Page("title: Home\nlayout: default\nnav_order: 1", "# Welcome\n\nStart here.\n"),
		"cost-optimization/index.md": testutil.Page(
			"title: Cost Optimization\nlayout: default\nnav_order: 4\nhas_children: true\npermalink: /docs/cost-optimization",
			"# Cost Optimization\n\nThe ability to run systems at the lowest price point.\n"),
		"cost-optimization/COST01.md": testutil.Page(
			"title: \"COST01 - How do you implement cloud financial management?\"\nlayout: default\nparent: Cost Optimization\nnav_order: 1\nhas_children: true",
			pillarStyle+"\n\n<div class=\"pillar-header\">\n  <h1>COST01</h1>\n</div>\n\n## Best Practices\n\n- [Establish ownership](./COST01-BP01.html)\n"),
		"cost-optimization/COST01-BP01.md": testutil.Page(
			"title: \"COST01-BP01 - Establish ownership of cost optimization\"\nlayout: default\nparent: \"COST01 - How do you implement cloud financial management?\"\ngrand_parent: Cost Optimization\nnav_order: 1",
			pillarStyle+"\n\n# Establish ownership\n\nCreate a team that owns cost awareness.\n"),
	}
}

func newTestBuilder(t *testing.T, docs string, store *state.Store, incremental bool) *Builder {
	t.Helper()
	b, err := New(Config{
		DocsDir:     docs,
		OutputDir:   filepath.Join(t.TempDir(), "_site"),
		Title:       "Well-Architected",
		BaseURL:     "https://example.com",
		Workers:     2,
		Incremental: incremental,
		Logger:      testutil.NewTestLogger(t),
	}, store)
	require.NoError(t, err)
	return b
}

func readOutput(t *testing.T, b *Builder, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuilder_Build(t *testing.T) {
	docs := testutil.WriteTree(t, siteFixture())
	b := newTestBuilder(t, docs, nil, false)

	res, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, 4, res.Rendered)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 1, res.Styles, "identical style blocks are collected once")

	t.Run("pages", func(t *testing.T) {
		page := readOutput(t, b, "cost-optimization/COST01.html")
		assert.Contains(t, page, `<div class="pillar-header">`)
		assert.NotContains(t, page, "<style>")
		assert.Contains(t, page, `<link rel="stylesheet" href="/assets/site.css">`)
		assert.Contains(t, page, `href="./COST01-BP01.html"`)

		// Breadcrumbs lead back to the pillar index via its permalink.
		assert.Contains(t, page, `<li><a href="/docs/cost-optimization/">Cost Optimization</a></li>`)
		// has_children pages list their children.
		assert.Contains(t, page, "Table of contents")
		assert.Contains(t, page, `<li><a href="/cost-optimization/COST01-BP01.html">COST01-BP01 - Establish ownership of cost optimization</a></li>`)
		// The active page is highlighted in the sidebar.
		assert.Contains(t, page, `class="active" aria-current="page">COST01 - How do you implement cloud financial management?</a>`)
	})

	t.Run("permalink output", func(t *testing.T) {
		page := readOutput(t, b, "docs/cost-optimization/index.html")
		assert.Contains(t, page, "<h1 id=\"cost-optimization\">Cost Optimization</h1>")
	})

	t.Run("stylesheet", func(t *testing.T) {
		css := readOutput(t, b, "assets/site.css")
		assert.Contains(t, css, "--wa-green-700")
		assert.Equal(t, 1, strings.Count(css, ".pillar-header { background: #2d6a4f; }"))
	})

	t.Run("manifest", func(t *testing.T) {
		var m nav.Manifest
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, b, "manifest.json")), &m))
		assert.Equal(t, res.BuildID, m.BuildID)
		assert.Equal(t, "Well-Architected", m.SiteTitle)
		require.Len(t, m.NavTree, 2)
		assert.Equal(t, "Home", m.NavTree[0].Title)
		assert.Equal(t, "Cost Optimization", m.NavTree[1].Title)
	})

	t.Run("search index", func(t *testing.T) {
		var entries []SearchEntry
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, b, "search.json")), &entries))
		require.Len(t, entries, 4)
		bp := entries[3]
		assert.Equal(t, "cost-optimization/COST01-BP01.md", bp.Path)
		assert.Equal(t, "COST01 - How do you implement cloud financial management?", bp.Parent)
		assert.Equal(t, "Establish ownership", bp.Heading)
		assert.Equal(t, "Establish ownership Create a team that owns cost awareness.", bp.Excerpt)
	})

	t.Run("output is world readable", func(t *testing.T) {
		for _, rel := range []string{"index.html", "cost-optimization/COST01.html", "assets/site.css"} {
			fi, err := os.Stat(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel)))
			require.NoError(t, err)
			assert.NotZero(t, fi.Mode().Perm()&0o004, "%s mode %v", rel, fi.Mode().Perm())
		}
		fi, err := os.Stat(filepath.Join(b.cfg.OutputDir, "cost-optimization"))
		require.NoError(t, err)
		assert.NotZero(t, fi.Mode().Perm()&0o005, "directory mode %v", fi.Mode().Perm())
	})

	t.Run("sitemap and robots", func(t *testing.T) {
		sitemap := readOutput(t, b, "sitemap.xml")
		assert.Contains(t, sitemap, "<loc>https://example.com/</loc>")
		assert.Contains(t, sitemap, "<loc>https://example.com/docs/cost-optimization/</loc>")
		assert.Equal(t, 4, strings.Count(sitemap, "<url>"))

		robots := readOutput(t, b, "robots.txt")
		assert.Contains(t, robots, "Sitemap: https://example.com/sitemap.xml")
	})
}

func TestBuilder_Incremental(t *testing.T) {
	ctx := context.Background()
	store, err := state.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	docs := testutil.WriteTree(t, siteFixture())
	b := newTestBuilder(t, docs, store, true)

	first, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Rendered)

	second, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Rendered)
	assert.Equal(t, 4, second.Skipped)
	assert.Equal(t, 1, second.Styles, "skipped pages still contribute their styles")

	// Editing a body re-renders only that page.
	bp := filepath.Join(docs, "cost-optimization", "COST01-BP01.md")
	raw, err := os.ReadFile(bp)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bp, append(raw, []byte("\nMore detail.\n")...), 0o600))

	third, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Rendered)
	assert.Equal(t, 3, third.Skipped)

	// Retitling a page changes every sidebar, so everything re-renders.
	home := filepath.Join(docs, "index.md")
	require.NoError(t, os.WriteFile(home, []byte(testutil.Page("title: Start\nnav_order: 1", "Hi\n")), 0o600))
	fourth, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fourth.Rendered)

	// A removed output file is rendered again.
	require.NoError(t, os.Remove(filepath.Join(b.cfg.OutputDir, "index.html")))
	fifth, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fifth.Rendered)

	last, err := store.LastBuild(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, fifth.BuildID, last.ID)
	assert.Equal(t, 1, last.Rendered)
}

func TestBuilder_FullBuildIgnoresStoredHashes(t *testing.T) {
	ctx := context.Background()
	store, err := state.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	docs := testutil.WriteTree(t, siteFixture())
	b := newTestBuilder(t, docs, store, false)

	_, err = b.Build(ctx)
	require.NoError(t, err)
	res, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rendered)
}

func TestBuilder_BasePath(t *testing.T) {
	docs := testutil.WriteTree(t, siteFixture())
	b, err := New(Config{
		DocsDir:   docs,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		BaseURL:   "https://example.com/wa/",
	}, nil)
	require.NoError(t, err)

	_, err = b.Build(context.Background())
	require.NoError(t, err)

	page := readOutput(t, b, "index.html")
	assert.Contains(t, page, `href="/wa/assets/site.css"`)
	assert.Contains(t, page, `href="/wa/docs/cost-optimization/"`)
	assert.Contains(t, readOutput(t, b, "sitemap.xml"), "<loc>https://example.com/wa/cost-optimization/COST01.html</loc>")
}

func TestBuilder_CopiesAssets(t *testing.T) {
	files := siteFixture()
	files["cost-optimization/img/flow.png"] = "png"
	files["downloads/checklist.pdf"] = "pdf"
	files["_drafts/wip.png"] = "draft"
	files[".cache/x.png"] = "cache"
	docs := testutil.WriteTree(t, files)

	// An output directory inside the docs tree is not copied into itself.
	b, err := New(Config{DocsDir: docs, OutputDir: filepath.Join(docs, "out")}, nil)
	require.NoError(t, err)
	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assets)

	assert.Equal(t, "png", readOutput(t, b, "cost-optimization/img/flow.png"))
	assert.Equal(t, "pdf", readOutput(t, b, "downloads/checklist.pdf"))
	assert.NoFileExists(t, filepath.Join(docs, "out", "_drafts", "wip.png"))
	assert.NoFileExists(t, filepath.Join(docs, "out", ".cache", "x.png"))
	assert.NoDirExists(t, filepath.Join(docs, "out", "out"))

	res, err = b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assets)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "missing docs", cfg: Config{OutputDir: "out"}, want: "docs directory is required"},
		{name: "missing output", cfg: Config{DocsDir: "docs"}, want: "output directory is required"},
		{name: "bad base url", cfg: Config{DocsDir: "docs", OutputDir: "out", BaseURL: "http://[::1"}, want: "invalid base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractStyles(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStyles []string
		wantBody   string
	}{
		{
			name:     "no styles",
			body:     "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:       "single block",
			body:       "<style>\n.a { color: red; }\n</style>\n\n# Title\n",
			wantStyles: []string{".a { color: red; }"},
			wantBody:   "# Title\n",
		},
		{
			name:       "several blocks with attributes",
			body:       "<STYLE type=\"text/css\">.a{}</STYLE>\ntext\n<style>.b{}</style>",
			wantStyles: []string{".a{}", ".b{}"},
			wantBody:   "text\n",
		},
		{
			name:     "empty block is dropped",
			body:     "<style>  </style>\nx",
			wantBody: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			styles, body := extractStyles([]byte(tt.body))
			assert.Equal(t, tt.wantStyles, styles)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "one two…", excerpt("one two three four", 10))
}
