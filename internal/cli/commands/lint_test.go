package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/cli/config"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenLinkPage = `---
title: "COST01-BP01 - Establish ownership of cost optimization"
layout: default
parent: "COST01 - How do you implement cloud financial management?"
grand_parent: Cost Optimization
nav_order: 1
---

# COST01-BP01: Establish ownership of cost optimization

See [the missing page](./COST09.html).
`

func TestLintCommand_Clean(t *testing.T) {
	root := newProject(t, nil)

	out, _, err := runInProject(t, root, NewLintCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No lint issues found in 4 pages")
}

func TestLintCommand_Issues(t *testing.T) {
	root := newProject(t, map[string]string{"docs/cost-optimization/COST01-BP01.md": brokenLinkPage})

	t.Run("markdown", func(t *testing.T) {
		out, _, err := runInProject(t, root, NewLintCommand())
		require.Error(t, err)
		assert.Equal(t, "lint issues found", err.Error())
		assert.Contains(t, out, "cost-optimization/COST01-BP01.md")
		assert.Contains(t, out, "LK01")
		assert.Contains(t, out, "Summary:")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runInProject(t, root, NewLintCommand(), "--format", "json")
		require.Error(t, err)

		var result LintOutput
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 4, result.Summary.PagesAnalyzed)
		assert.Equal(t, 1, result.Summary.FilesWithIssues)
		require.Len(t, result.Files, 1)
		var ids []string
		for _, d := range result.Files[0].Diagnostics {
			ids = append(ids, d.RuleID)
		}
		assert.Contains(t, ids, "LK01")
	})

	t.Run("disabled rule", func(t *testing.T) {
		_, _, err := runInProject(t, root, NewLintCommand(), "--disable", "LK01")
		assert.NoError(t, err)
	})

	t.Run("path filter excludes the page", func(t *testing.T) {
		_, _, err := runInProject(t, root, NewLintCommand(), "index.md")
		assert.NoError(t, err)
	})

	t.Run("path filter relative to cwd", func(t *testing.T) {
		_, _, err := runInProject(t, root, NewLintCommand(), filepath.Join(root, "docs", "cost-optimization"))
		assert.Error(t, err)
	})
}

func TestLintCommand_InvalidSeverity(t *testing.T) {
	root := newProject(t, nil)
	_, _, err := runInProject(t, root, NewLintCommand(), "--severity", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid severity")
}

func TestBuildLintConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *config.Config
		opts  *LintOptions
		check func(t *testing.T, c *lint.Config)
	}{
		{
			name: "nil config enables everything",
			opts: &LintOptions{},
			check: func(t *testing.T, c *lint.Config) {
				assert.False(t, c.IsDisabled("NS01"))
				assert.Empty(t, c.GetRuleOptions("NS02"))
			},
		},
		{
			name: "site settings seed rule options",
			cfg: func() *config.Config {
				c := config.Default()
				c.Site.AllowedLayouts = []string{"default", "home"}
				c.Site.LinkStyle = core.LinkStyleHTML
				return c
			}(),
			opts: &LintOptions{},
			check: func(t *testing.T, c *lint.Config) {
				assert.Equal(t, []any{"default", "home"}, c.GetRuleOptions("NS02")["allowed_layouts"])
				assert.Equal(t, "html", c.GetRuleOptions("LK02")["style"])
			},
		},
		{
			name: "explicit rule options win over site settings",
			cfg: func() *config.Config {
				c := config.Default()
				c.Lint = &config.LintConfig{Rules: map[string]config.RuleOptions{
					"NS02": {"allowed_layouts": []any{"custom"}},
				}}
				return c
			}(),
			opts: &LintOptions{},
			check: func(t *testing.T, c *lint.Config) {
				assert.Equal(t, []any{"custom"}, c.GetRuleOptions("NS02")["allowed_layouts"])
			},
		},
		{
			name: "disable flag and config",
			cfg: func() *config.Config {
				c := config.Default()
				c.Lint = &config.LintConfig{Disabled: []string{"CT03"}}
				return c
			}(),
			opts: &LintOptions{Disable: []string{" NS08 "}},
			check: func(t *testing.T, c *lint.Config) {
				assert.True(t, c.IsDisabled("CT03"))
				assert.True(t, c.IsDisabled("NS08"))
				assert.False(t, c.IsDisabled("NS01"))
			},
		},
		{
			name: "rule flag disables all others",
			cfg:  config.Default(),
			opts: &LintOptions{Rules: []string{"LK01"}},
			check: func(t *testing.T, c *lint.Config) {
				assert.False(t, c.IsDisabled("LK01"))
				assert.True(t, c.IsDisabled("NS01"))
				assert.True(t, c.IsDisabled("CA02"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, buildLintConfig(tt.cfg, tt.opts))
		})
	}
}

func TestPathFilter(t *testing.T) {
	docs := t.TempDir()
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "empty", arg: "", want: ""},
		{name: "docs root", arg: docs, want: ""},
		{name: "absolute inside docs", arg: filepath.Join(docs, "security"), want: "security"},
		{name: "docs relative", arg: "cost-optimization/COST01.md", want: "cost-optimization/COST01.md"},
		{name: "cleaned", arg: "./security/", want: "security"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pathFilter(docs, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
