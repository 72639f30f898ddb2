package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bareLinkPage = `---
title: "COST01-BP01 - Establish ownership of cost optimization"
layout: default
parent: "COST01 - How do you implement cloud financial management?"
grand_parent: Cost Optimization
nav_order: 1
---

# COST01-BP01: Establish ownership of cost optimization

Back to [COST01](./COST01).
`

const misorderedIndex = `---
title: Cost Optimization
layout: default
nav_order: 9
has_children: true
---

# Cost Optimization Pillar
`

func readDoc(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "docs", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestFixCommand_CleanProject(t *testing.T) {
	root := newProject(t, nil)

	out, _, err := runInProject(t, root, NewFixCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to fix")
}

func TestFixCommand_PillarLinks(t *testing.T) {
	const page = "cost-optimization/COST01-BP01.md"

	t.Run("dry run leaves files alone", func(t *testing.T) {
		root := newProject(t, map[string]string{"docs/" + page: bareLinkPage})

		out, _, err := runInProject(t, root, NewFixCommand(), "--dry-run", "--diff")
		require.NoError(t, err)
		assert.Contains(t, out, "- "+page+"  pillar-links")
		assert.Contains(t, out, "```diff")
		assert.Contains(t, out, "-Back to [COST01](./COST01).")
		assert.Contains(t, out, "+Back to [COST01](./COST01.html).")
		assert.Contains(t, out, "Would fix 1 pages")
		assert.Equal(t, bareLinkPage, readDoc(t, root, page))
	})

	t.Run("writes the rewritten page", func(t *testing.T) {
		root := newProject(t, map[string]string{"docs/" + page: bareLinkPage})

		out, _, err := runInProject(t, root, NewFixCommand(), "pillar-links")
		require.NoError(t, err)
		assert.Contains(t, out, "Fixed 1 pages")
		assert.NotContains(t, out, "```diff")
		assert.Contains(t, readDoc(t, root, page), "Back to [COST01](./COST01.html).")

		out, _, err = runInProject(t, root, NewFixCommand(), "pillar-links")
		require.NoError(t, err)
		assert.Contains(t, out, "Nothing to fix")
	})

	t.Run("json", func(t *testing.T) {
		root := newProject(t, map[string]string{
			"wadocs.yaml":   jsonConfig,
			"docs/" + page: bareLinkPage,
		})

		out, _, err := runInProject(t, root, NewFixCommand(), "-n")
		require.NoError(t, err)

		var result FixOutput
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.True(t, result.DryRun)
		assert.Equal(t, 1, result.Changed)
		assert.Equal(t, []FixChange{{Path: page, Fixers: []string{"pillar-links"}}}, result.Changes)
	})
}

func TestFixCommand_UnknownFixer(t *testing.T) {
	root := newProject(t, nil)

	_, _, err := runInProject(t, root, NewFixCommand(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown fixer "nope"`)
}

func TestFixCommand_List(t *testing.T) {
	root := newProject(t, nil)

	out, _, err := runInProject(t, root, NewFixCommand(), "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "# Fixers")
	for _, name := range []string{"pillar-links", "template-leftovers", "title-placeholders", "nav-order", "stylize"} {
		assert.Contains(t, out, name)
	}
}

func TestOrderCommand(t *testing.T) {
	root := newProject(t, map[string]string{"docs/cost-optimization/index.md": misorderedIndex})

	out, _, err := runInProject(t, root, NewOrderCommand(), "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "-nav_order: 9")
	assert.Contains(t, out, "+nav_order: 4")

	page := readDoc(t, root, "cost-optimization/index.md")
	assert.Contains(t, page, "nav_order: 4\n")
	assert.True(t, strings.HasPrefix(page, "---\ntitle: Cost Optimization\nlayout: default\nnav_order: 4\n"), "other keys keep their place")
}

func TestStyleCommand(t *testing.T) {
	root := newProject(t, nil)
	before := readDoc(t, root, "cost-optimization/COST01.md")

	out, _, err := runInProject(t, root, NewStyleCommand(), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "- cost-optimization/COST01.md  stylize")
	assert.NotContains(t, out, "COST01-BP01.md", "best-practice headings are not question headings")
	assert.Contains(t, out, "Would fix 1 pages")
	assert.Equal(t, before, readDoc(t, root, "cost-optimization/COST01.md"))

	_, _, err = runInProject(t, root, NewStyleCommand())
	require.NoError(t, err)
	styled := readDoc(t, root, "cost-optimization/COST01.md")
	assert.Contains(t, styled, `<div class="pillar-header">`)
	assert.NotContains(t, styled, "<style", "styled pages rely on the site stylesheet")
	assert.Contains(t, NewStyleCommand().Long, "site stylesheet")

	out, _, err = runInProject(t, root, NewStyleCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to fix")
}
