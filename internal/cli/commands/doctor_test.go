package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/cli/testutil"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		pages  int
		want   int
	}{
		{name: "no issues", checks: []HealthCheck{{Status: "pass"}}, pages: 5, want: 100},
		{name: "info is free", checks: []HealthCheck{{Status: "info", IssueCount: 10}}, pages: 5, want: 100},
		{name: "small tree warning", checks: []HealthCheck{{Status: "warn", IssueCount: 2}}, pages: 5, want: 90},
		{name: "errors count double", checks: []HealthCheck{{Status: "error", IssueCount: 2}}, pages: 5, want: 80},
		{name: "medium tree", checks: []HealthCheck{{Status: "warn", IssueCount: 4}}, pages: 40, want: 88},
		{name: "large tree", checks: []HealthCheck{{Status: "error", IssueCount: 10}}, pages: 400, want: 90},
		{name: "clamped at zero", checks: []HealthCheck{{Status: "error", IssueCount: 50}}, pages: 5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks, tt.pages))
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	for _, rule := range lint.GetAll() {
		assert.NotEmpty(t, getRecommendation(rule.ID), "rule %s has no recommendation", rule.ID)
	}
	assert.Empty(t, getRecommendation("XX99"))
}

func TestGenerateRecommendations(t *testing.T) {
	var checks []HealthCheck
	for _, rule := range lint.GetAll() {
		checks = append(checks, HealthCheck{RuleID: rule.ID, Status: "warn", IssueCount: 1})
	}
	checks = append(checks, HealthCheck{RuleID: "LK01", Status: "error", IssueCount: 3})

	recs := generateRecommendations(checks)
	require.Len(t, recs, 5)
	assert.Equal(t, getRecommendation("LK01"), recs[0], "errors come first")

	assert.Empty(t, generateRecommendations([]HealthCheck{{RuleID: "NS01", Status: "pass"}}))
}

func TestBuildDoctorOutput(t *testing.T) {
	diags := []lint.Diagnostic{
		{RuleID: "LK01", Severity: lint.SeverityError, Message: "broken link", Path: "a.md"},
		{RuleID: "LK01", Severity: lint.SeverityWarning, Message: "other", Path: "b.md"},
		{RuleID: "CT02", Severity: lint.SeverityInfo, Message: "stub", Path: "c.md"},
	}
	out := buildDoctorOutput(DocsSummary{Pages: 3}, diags)

	assert.Equal(t, 3, out.IssueCount)
	assert.Len(t, out.HealthChecks, len(lint.GetAll()))
	assert.Equal(t, "structure", out.HealthChecks[0].Group)

	byID := make(map[string]HealthCheck)
	for _, c := range out.HealthChecks {
		byID[c.RuleID] = c
	}
	assert.Equal(t, "error", byID["LK01"].Status)
	assert.Equal(t, []string{"a.md: broken link", "b.md: other"}, byID["LK01"].Details)
	assert.Equal(t, "info", byID["CT02"].Status)
	assert.Equal(t, "pass", byID["NS01"].Status)
	assert.Equal(t, 80, out.Score)
}

func TestDoctorCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		root := newProject(t, nil)

		out, _, err := runInProject(t, root, NewDoctorCommand(), "--format", "json")
		require.NoError(t, err)

		var result DoctorOutput
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 4, result.Summary.Pages)
		assert.Equal(t, 2, result.Summary.TopLevel)
		assert.Equal(t, 1, result.Summary.Pillars)
		assert.Equal(t, 6, result.Summary.PillarsTotal)
		assert.Empty(t, result.Summary.LastBuild)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
	})

	t.Run("markdown after a build", func(t *testing.T) {
		root := newProject(t, map[string]string{"docs/cost-optimization/COST01-BP01.md": brokenLinkPage})
		_, _, err := runInProject(t, root, NewBuildCommand())
		require.NoError(t, err)

		out, _, err := runInProject(t, root, NewDoctorCommand())
		require.NoError(t, err)
		assert.Contains(t, out, "LK01")
		assert.Contains(t, out, getRecommendation("LK01"))
		assert.Contains(t, out, "- **Pillars:** 1/6")
		assert.Contains(t, out, "- **Last build:** ")
		assert.Contains(t, out, "- **[ERROR]** LK01: broken-link (1 issues)")
	})
}

func TestRenderDoctor(t *testing.T) {
	out := buildDoctorOutput(DocsSummary{Pages: 3, Pillars: 1, PillarsTotal: 6}, []lint.Diagnostic{
		{RuleID: "NS03", Severity: lint.SeverityError, Message: `parent "Nope" not found`, Path: "a.md"},
	})

	t.Run("markdown", func(t *testing.T) {
		r := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderDoctorMarkdown(r.Renderer, out))
		md := r.Output()
		testutil.AssertNoANSI(t, md)
		testutil.AssertValidMarkdown(t, md)
		assert.Contains(t, md, "### Structure")
		assert.Contains(t, md, `  - a.md: parent "Nope" not found`)
		assert.Contains(t, md, "**90/100**")
		assert.Contains(t, md, "1. "+getRecommendation("NS03"))
	})

	t.Run("text without a terminal", func(t *testing.T) {
		r := testutil.NewTestRenderer("text", false)
		require.NoError(t, renderDoctorText(r.Renderer, out))
		testutil.AssertNoANSI(t, r.Output())
		assert.Contains(t, r.Output(), "Docs Health Report")
		assert.Contains(t, r.Output(), "NS03")
	})
}
