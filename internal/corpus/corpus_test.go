package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

const costIndex = `---
title: Cost Optimization
layout: default
nav_order: 4
has_children: true
permalink: /docs/cost-optimization/
---

# Cost Optimization
`

const cost02 = `---
title: COST02 - How do you govern usage?
layout: default
parent: Cost Optimization
nav_order: 2
has_children: true
---

# COST02

<a href="./COST02-BP01.html">Develop policies</a>
See [the pillar](../cost-optimization/) and [AWS](https://aws.amazon.com).
`

func TestParsePage(t *testing.T) {
	t.Run("with front matter", func(t *testing.T) {
		p, err := ParsePage("cost-optimization/COST02.md", []byte(cost02))
		require.NoError(t, err)

		assert.True(t, p.HasFrontMatter)
		assert.Equal(t, "COST02 - How do you govern usage?", p.Title())
		assert.Equal(t, "default", p.FrontMatter.Layout)
		assert.Equal(t, "Cost Optimization", p.FrontMatter.Parent)
		order, ok := p.FrontMatter.Order()
		assert.True(t, ok)
		assert.Equal(t, 2, order)
		assert.True(t, p.FrontMatter.HasChildren)
		assert.Equal(t, "COST02", p.ID())
		assert.Equal(t, "cost-optimization", p.Dir())
		assert.Contains(t, string(p.Body), "# COST02")
		assert.NotContains(t, string(p.Body), "nav_order")
	})

	t.Run("without front matter", func(t *testing.T) {
		p, err := ParsePage("notes.md", []byte("# Just text\n"))
		require.NoError(t, err)
		assert.False(t, p.HasFrontMatter)
		assert.Empty(t, p.Title())
		_, ok := p.FrontMatter.Order()
		assert.False(t, ok)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParsePage("bad.md", []byte("---\ntitle: [unclosed\n---\nbody\n"))
		require.Error(t, err)
		var fmErr *FrontMatterError
		require.True(t, errors.As(err, &fmErr))
		assert.Equal(t, "bad.md", fmErr.Path)
	})

	t.Run("extra keys are preserved", func(t *testing.T) {
		p, err := ParsePage("x.md", []byte("---\ntitle: X\ndescription: hello\n---\nbody\n"))
		require.NoError(t, err)
		assert.Equal(t, "hello", p.FrontMatter.Extra["description"])
	})
}

func TestPage_OutputPathAndURL(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		permalink string
		wantOut   string
		wantURL   string
	}{
		{"plain page", "cost-optimization/COST02.md", "", "cost-optimization/COST02.html", "/cost-optimization/COST02.html"},
		{"root index", "index.md", "", "index.html", "/"},
		{"section index", "cost-optimization/index.md", "", "cost-optimization/index.html", "/cost-optimization/"},
		{"permalink dir", "cost-optimization/index.md", "/docs/cost-optimization/", "docs/cost-optimization/index.html", "/docs/cost-optimization/"},
		{"permalink no slash", "a.md", "/about", "about/index.html", "/about/"},
		{"permalink file", "a.md", "/about.html", "about.html", "/about.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Page{Path: tt.path, FrontMatter: FrontMatter{Permalink: tt.permalink}}
			assert.Equal(t, tt.wantOut, p.OutputPath())
			assert.Equal(t, tt.wantURL, p.URL())
		})
	}
}

func TestPage_EncodeCanonicalOrder(t *testing.T) {
	raw := "---\nnav_order: 3\nparent: Cost Optimization\ntitle: COST03\nlayout: default\n---\n\nBody\n"
	p, err := ParsePage("COST03.md", []byte(raw))
	require.NoError(t, err)

	out, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: COST03\nlayout: default\nparent: Cost Optimization\nnav_order: 3\n---\n", string(out[:len(out)-len(p.Body)]))
	assert.Equal(t, p.Body, out[len(out)-len(p.Body):])

	again, err := ParsePage("COST03.md", out)
	require.NoError(t, err)
	assert.Equal(t, p.FrontMatter, again.FrontMatter)
}

func TestLoad(t *testing.T) {
	root := writeTree(t, map[string]string{
		"cost-optimization/index.md":  costIndex,
		"cost-optimization/COST02.md": cost02,
		"_site/ignored.md":            "---\ntitle: Ignored\n---\n",
		".git/ignored.md":             "---\ntitle: Hidden\n---\n",
		"assets/logo.png":             "png",
	})

	c, err := Load(root)
	require.NoError(t, err)
	require.Len(t, c.Pages, 2)
	assert.Equal(t, "cost-optimization/COST02.md", c.Pages[0].Path)
	assert.Equal(t, "cost-optimization/index.md", c.Pages[1].Path)

	p, err := c.Lookup("cost-optimization/COST02.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cost-optimization", "COST02.md"), p.AbsPath)

	_, err = c.Lookup("missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, c.ByTitle("Cost Optimization"), 1)
	assert.Equal(t, []string{"COST02 - How do you govern usage?", "Cost Optimization"}, c.Titles())
	assert.Len(t, c.Under("cost-optimization"), 2)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	root := writeTree(t, map[string]string{"COST01.md": "---\ntitle: COST01\n---\nbody\n"})
	c, err := Load(root)
	require.NoError(t, err)

	p := c.Pages[0]
	p.FrontMatter.SetOrder(1)
	require.NoError(t, WriteFile(p))

	data, err := os.ReadFile(p.AbsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nav_order: 1")
	assert.Equal(t, data, p.Raw)
}

func TestPage_FrontMatterLine(t *testing.T) {
	p, err := ParsePage("cost-optimization/COST02.md", []byte(cost02))
	require.NoError(t, err)

	assert.Equal(t, 2, p.FrontMatterLine("title"))
	assert.Equal(t, 5, p.FrontMatterLine("nav_order"))
	assert.Equal(t, 0, p.FrontMatterLine("permalink"))

	fileLines := strings.Split(string(p.Raw), "\n")
	bodyLines := strings.Split(string(p.Body), "\n")
	for _, n := range []int{1, 2, 3, 4} {
		assert.Equal(t, bodyLines[n-1], fileLines[p.BodyLine(n)-1], "body line %d", n)
	}
	assert.Equal(t, 0, p.BodyLine(0))
}

func TestPage_Header(t *testing.T) {
	raw := "---\ntitle: A\nnav_order: 2\n---\n\nBody\n"
	p, err := ParsePage("a.md", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, raw, string(p.Header())+string(p.Body))
	assert.True(t, strings.HasPrefix(string(p.Header()), "---\ntitle: A\n"))

	plain, err := ParsePage("b.md", []byte("Body\n"))
	require.NoError(t, err)
	assert.Empty(t, plain.Header())
}
