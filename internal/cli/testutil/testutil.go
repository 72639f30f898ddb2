// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
)

// ProjectFiles is a small, lint-clean Cost Optimization docs tree keyed by
// path relative to the project root.
func ProjectFiles() map[string]string {
	return map[string]string{
		"wadocs.yaml": "site:\n  title: Well-Architected\n  base_url: https://docs.example.com\n",
		"docs/index.md": `---
title: Home
layout: default
nav_order: 1
---

# AWS Well-Architected Framework

Start with a pillar.
`,
		"docs/cost-optimization/index.md": `---
title: Cost Optimization
layout: default
nav_order: 4
has_children: true
---

# Cost Optimization Pillar

The ability to run systems to deliver business value at the lowest price point.

## Questions

<div class="question-cards">
  <div class="question-card">
    <h3>COST01 - How do you implement cloud financial management?</h3>
    <a href="./COST01.html">View details →</a>
  </div>
</div>
`,
		"docs/cost-optimization/COST01.md": `---
title: "COST01 - How do you implement cloud financial management?"
layout: default
parent: Cost Optimization
nav_order: 1
has_children: true
---

# COST01: How do you implement cloud financial management?

## Best Practices

- [COST01-BP01 Establish ownership of cost optimization](./COST01-BP01.html)
`,
		"docs/cost-optimization/COST01-BP01.md": `---
title: "COST01-BP01 - Establish ownership of cost optimization"
layout: default
parent: "COST01 - How do you implement cloud financial management?"
grand_parent: Cost Optimization
nav_order: 1
---

# COST01-BP01: Establish ownership of cost optimization

Create a team that is responsible for cost awareness across the organization.

Back to [COST01](./COST01.html).
`,
	}
}

// SetupTestProject writes ProjectFiles, with overrides applied, into a
// temporary directory and returns its path. An empty override removes a file.
func SetupTestProject(t *testing.T, overrides map[string]string) string {
	t.Helper()

	files := ProjectFiles()
	for k, v := range overrides {
		if v == "" {
			delete(files, k)
			continue
		}
		files[k] = v
	}

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
