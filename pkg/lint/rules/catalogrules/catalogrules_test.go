package catalogrules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/testutil"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/catalogrules" // register rules
)

const miniCatalog = `
pillars:
  - name: Cost Optimization
    abbr: COST
    nav_order: 4
    questions:
      - id: COST01
        title: How do you implement cloud financial management?
        best_practices:
          - id: COST01-BP01
            title: Establish ownership of cost optimization
      - id: COST02
        title: How do you govern usage?
  - name: Security
    abbr: SEC
    nav_order: 2
    questions:
      - id: SEC01
        title: How do you securely operate your workload?
`

func diagsFor(t *testing.T, ruleID string, files map[string]string, cat *catalog.Catalog) []lint.Diagnostic {
	t.Helper()
	ctx := lint.NewContext(testutil.LoadCorpus(t, files), cat)
	var out []lint.Diagnostic
	for _, d := range lint.NewAnalyzer(nil, nil).Analyze(ctx) {
		if d.RuleID == ruleID {
			out = append(out, d)
		}
	}
	return out
}

func TestCatalogRules(t *testing.T) {
	cat, err := catalog.Parse([]byte(miniCatalog))
	require.NoError(t, err)

	files := map[string]string{
		"index.md":                         testutil.Page("title: Home", "x"),
		"cost-optimization/index.md":       testutil.Page("title: Cost Optimization", "x"),
		"cost-optimization/COST01.md":      testutil.Page("title: COST01 - Q", "x"),
		"cost-optimization/COST09.md":      testutil.Page("title: COST09 - Q", "x"),
		"cost-optimization/SEC01.md":       testutil.Page("title: SEC01 - Q", "x"),
		"cost-optimization/OPS01.md":       testutil.Page("title: OPS01 - Q", "x"),
		"cost-optimization/COST01-BP01.md": testutil.Page("title: COST01-BP01 - BP", "x"),
	}

	t.Run("CA01 missing pages", func(t *testing.T) {
		diags := diagsFor(t, "CA01", files, cat)
		require.Len(t, diags, 1, "diagnostics: %+v", diags)
		assert.Equal(t, "cost-optimization/index.md", diags[0].Path)
		assert.Contains(t, diags[0].Message, "COST02 has no page cost-optimization/COST02.md")
	})

	t.Run("CA02 unknown or misplaced ids", func(t *testing.T) {
		diags := diagsFor(t, "CA02", files, cat)
		require.Len(t, diags, 3, "diagnostics: %+v", diags)

		byPath := make(map[string]string)
		for _, d := range diags {
			byPath[d.Path] = d.Message
		}
		assert.Contains(t, byPath["cost-optimization/COST09.md"], "not a Cost Optimization question")
		assert.Contains(t, byPath["cost-optimization/SEC01.md"], "belongs in security/")
		assert.Contains(t, byPath["cost-optimization/OPS01.md"], "no pillar")
	})

	t.Run("no catalog", func(t *testing.T) {
		assert.Empty(t, diagsFor(t, "CA01", files, nil))
		assert.Empty(t, diagsFor(t, "CA02", files, nil))
	})
}
