package lint

import (
	"testing"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/testutil"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRegistry(t *testing.T, rules ...RuleDef) {
	t.Helper()
	saved := GetAll()
	Clear()
	for _, r := range rules {
		Register(r)
	}
	t.Cleanup(func() {
		Clear()
		for _, r := range saved {
			Register(r)
		}
	})
}

func everyPage(id string, sev Severity) RuleDef {
	rule := RuleDef{ID: id, Name: "every-page", Group: "test", Severity: sev}
	rule.Check = func(ctx *Context) []Diagnostic {
		var out []Diagnostic
		for _, p := range ctx.Corpus.Pages {
			out = append(out, ctx.Diag(rule, p, 1, "%s saw %s", id, p.Path))
		}
		return out
	}
	return rule
}

func testContext(t *testing.T) *Context {
	t.Helper()
	pages := make([]*corpus.Page, 0, 2)
	for _, rel := range []string{"b.md", "a.md"} {
		p, err := corpus.ParsePage(rel, []byte(testutil.Page("title: "+rel, "body")))
		require.NoError(t, err)
		pages = append(pages, p)
	}
	return NewContext(corpus.New("", pages), catalog.Default())
}

func TestRegistry(t *testing.T) {
	withRegistry(t, everyPage("ZZ02", SeverityInfo), everyPage("ZZ01", SeverityError))

	assert.Equal(t, 2, Count())
	all := GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "ZZ01", all[0].ID)

	r, ok := GetByID("ZZ02")
	assert.True(t, ok)
	assert.Equal(t, SeverityInfo, r.Severity)

	_, ok = GetByID("NOPE")
	assert.False(t, ok)

	assert.Len(t, GetByGroup("test"), 2)
	assert.Empty(t, GetByGroup("links"))

	infos := AllRules()
	require.Len(t, infos, 2)
	assert.Equal(t, "every-page", infos[0].Name)
	assert.Equal(t, SeverityError, infos[0].DefaultSeverity)
}

func TestAnalyzer_Analyze(t *testing.T) {
	withRegistry(t,
		everyPage("ZZ01", SeverityError),
		everyPage("ZZ02", SeverityWarning),
		everyPage("ZZ03", SeverityInfo),
	)

	cfg := NewConfig().Disable("ZZ03").SetSeverity("ZZ02", SeverityHint)
	diags := NewAnalyzer(cfg, testutil.NewTestLogger(t)).Analyze(testContext(t))

	require.Len(t, diags, 4)
	assert.Equal(t, "a.md", diags[0].Path)
	assert.Equal(t, "ZZ01", diags[0].RuleID)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "ZZ02", diags[1].RuleID)
	assert.Equal(t, SeverityHint, diags[1].Severity)
	assert.Equal(t, BuildDocURL("ZZ01"), diags[0].DocumentationURL)
	for _, d := range diags {
		assert.NotEqual(t, "ZZ03", d.RuleID)
	}
}

func TestFilterBySeverity(t *testing.T) {
	diags := []Diagnostic{
		{RuleID: "A", Severity: SeverityError},
		{RuleID: "B", Severity: SeverityWarning},
		{RuleID: "C", Severity: SeverityInfo},
		{RuleID: "D", Severity: SeverityHint},
	}

	assert.Len(t, FilterBySeverity(diags, SeverityError), 1)
	assert.Len(t, FilterBySeverity(diags, SeverityWarning), 2)
	assert.Len(t, FilterBySeverity(diags, SeverityHint), 4)
}

func TestFromCore(t *testing.T) {
	cfg := FromCore(&core.LintConfig{
		Disabled: []string{"NS08"},
		Severity: map[string]string{"NS05": "error", "CT03": "off"},
		Rules:    map[string]core.RuleOptions{"LK02": {"style": "html"}},
	})

	assert.True(t, cfg.IsDisabled("NS08"))
	assert.True(t, cfg.IsDisabled("CT03"))
	assert.False(t, cfg.IsDisabled("NS05"))
	assert.Equal(t, SeverityError, cfg.GetSeverity("NS05", SeverityWarning))
	assert.Equal(t, SeverityWarning, cfg.GetSeverity("NS07", SeverityWarning))
	assert.Equal(t, "html", cfg.GetRuleOptions("LK02")["style"])

	assert.NotNil(t, FromCore(nil))
}

func TestContext_DecodeOptions(t *testing.T) {
	type opts struct {
		Markers []string `option:"markers"`
		Limit   int      `option:"limit"`
	}

	ctx := testContext(t).WithOptions(map[string]core.RuleOptions{
		"ZZ01": {"markers": []any{"TODO"}, "limit": "3"},
		"ZZ02": {"unknown": true},
	})

	o := opts{Limit: 1}
	require.NoError(t, ctx.DecodeOptions("ZZ01", &o))
	assert.Equal(t, []string{"TODO"}, o.Markers)
	assert.Equal(t, 3, o.Limit)

	o = opts{Limit: 1}
	require.NoError(t, ctx.DecodeOptions("ZZ09", &o))
	assert.Equal(t, 1, o.Limit)

	err := ctx.DecodeOptions("ZZ02", &o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZZ02")
}
