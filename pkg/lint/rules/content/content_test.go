package content_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/wadocs/internal/testutil"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/content" // register rules
)

func diagsFor(t *testing.T, ruleID string, files map[string]string, opts map[string]core.RuleOptions) []lint.Diagnostic {
	t.Helper()
	cfg := lint.NewConfig()
	for id, o := range opts {
		cfg.SetRuleOptions(id, o)
	}
	ctx := lint.NewContext(testutil.LoadCorpus(t, files), nil)
	var out []lint.Diagnostic
	for _, d := range lint.NewAnalyzer(cfg, nil).Analyze(ctx) {
		if d.RuleID == ruleID {
			out = append(out, d)
		}
	}
	return out
}

func lineOf(content, substr string) int {
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, substr) {
			return i + 1
		}
	}
	return 0
}

func TestTemplateLeftovers(t *testing.T) {
	page := testutil.Page("title: Cost Optimization", `## Questions

<div class="question-cards">
  {% for child in site.pages %}
      <h3>{{ child.title }}</h3>
  {% endfor %}
</div>

## AWS Services for {title}
`)
	files := map[string]string{"cost-optimization/index.md": page}

	diags := diagsFor(t, "CT01", files, nil)
	require.Len(t, diags, 4, "diagnostics: %+v", diags)
	assert.Equal(t, lineOf(page, "{% for"), diags[0].Line)
	assert.Equal(t, lineOf(page, "{{ child.title }}"), diags[1].Line)
	assert.Contains(t, diags[3].Message, "{title}")
	assert.True(t, diags[0].AutoFixable)
}

func TestStubContent(t *testing.T) {
	stub := testutil.Page("title: COST05 - Q", "## Implementation Guidance\n\n1. **Step 1**: Description of first implementation step.\n")
	done := testutil.Page("title: COST06 - Q", "## Implementation Guidance\n\n1. **Review pricing**: Compare models.\n")
	files := map[string]string{"COST05.md": stub, "COST06.md": done}

	diags := diagsFor(t, "CT02", files, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "COST05.md", diags[0].Path)
	assert.Equal(t, lineOf(stub, "Step 1"), diags[0].Line)

	diags = diagsFor(t, "CT02", files, map[string]core.RuleOptions{"CT02": {"markers": []any{"Compare models"}}})
	require.Len(t, diags, 1)
	assert.Equal(t, "COST06.md", diags[0].Path)
}

func TestInlineStyle(t *testing.T) {
	files := map[string]string{
		"a.md": testutil.Page("title: A", "<style>\n.x { color: red }\n</style>\n"),
		"b.md": testutil.Page("title: B", "```html\n<style></style>\n```\n"),
	}

	diags := diagsFor(t, "CT03", files, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "a.md", diags[0].Path)
	assert.Equal(t, lint.SeverityHint, diags[0].Severity)
}

func TestTitleID(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		title string
		want  bool
	}{
		{"question with id", "COST02.md", "COST02 - How do you govern usage?", false},
		{"question without id", "COST02.md", "How do you govern usage?", true},
		{"best practice colon form", "COST02-BP01.md", "COST02-BP01: Develop policies", true},
		{"best practice with id", "COST02-BP01.md", "COST02-BP01 - Develop policies", false},
		{"not an id page", "index.md", "Cost Optimization", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{tt.path: testutil.Page("title: "+strconv.Quote(tt.title), "x")}
			diags := diagsFor(t, "CT04", files, nil)
			if tt.want {
				require.Len(t, diags, 1)
				assert.Equal(t, 2, diags[0].Line)
			} else {
				assert.Empty(t, diags)
			}
		})
	}
}
