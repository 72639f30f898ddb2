package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/cli/config"
	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Path      string   // File or directory path
	Format    string   // Output format: text, markdown, json
	Disable   []string // Rule IDs to disable
	Severity  string   // Minimum severity: error, warning, info, hint
	Rules     []string // Run only specific rules
	NoCatalog bool     // Skip catalog rules
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Check the docs tree for navigation, link and content problems",
		Long: `Analyze the documentation pages for integrity problems.

Checks that every parent names an existing page, that grand parents match,
that siblings do not share a nav_order, that internal links resolve and
that template leftovers are gone. Rules can be configured in wadocs.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Lint all pages
  wadocs lint

  # Lint one pillar
  wadocs lint docs/cost-optimization

  # Output as JSON
  wadocs lint --format json

  # Disable specific rules
  wadocs lint --disable CT03,NS08

  # Include informational findings
  wadocs lint --severity info`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVar(&opts.NoCatalog, "no-catalog", false, "Skip checks against the framework catalog")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q", opts.Severity)
	}

	docs, err := cmdCtx.LoadCorpus()
	if err != nil {
		return err
	}
	lintCtx := lint.NewContext(docs, nil)
	if !opts.NoCatalog {
		cat, err := cmdCtx.LoadCatalog()
		if err != nil {
			return err
		}
		lintCtx.Catalog = cat
	}

	analyzer := lint.NewAnalyzer(buildLintConfig(cfg, opts), cmdCtx.Logger)
	diags := analyzer.Analyze(lintCtx)

	prefix, err := pathFilter(cfg.DocsDir, opts.Path)
	if err != nil {
		return err
	}
	diags = filterByPath(diags, prefix)
	diags = lint.FilterBySeverity(diags, threshold)

	if renderLintResults(r, diags, len(docs.Pages)) {
		return fmt.Errorf("lint issues found")
	}
	return nil
}

func buildLintConfig(cfg *config.Config, opts *LintOptions) *lint.Config {
	lintCfg := lint.FromCore(nil)
	if cfg != nil {
		lintCfg = lint.FromCore(cfg.Lint)

		// Site settings seed the matching rule options unless set explicitly.
		if len(cfg.Site.AllowedLayouts) > 0 && len(lintCfg.GetRuleOptions("NS02")) == 0 {
			layouts := make([]any, len(cfg.Site.AllowedLayouts))
			for i, l := range cfg.Site.AllowedLayouts {
				layouts[i] = l
			}
			lintCfg.SetRuleOptions("NS02", core.RuleOptions{"allowed_layouts": layouts})
		}
		if cfg.Site.LinkStyle != "" && len(lintCfg.GetRuleOptions("LK02")) == 0 {
			lintCfg.SetRuleOptions("LK02", core.RuleOptions{"style": string(cfg.Site.LinkStyle)})
		}
	}

	// CLI overrides
	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	// If --rule specified, disable all others
	if len(opts.Rules) > 0 {
		enabled := make(map[string]bool)
		for _, id := range opts.Rules {
			enabled[strings.TrimSpace(id)] = true
		}
		for _, rule := range lint.GetAll() {
			if !enabled[rule.ID] {
				lintCfg.Disable(rule.ID)
			}
		}
	}

	return lintCfg
}

// pathFilter turns a lint path argument into a docs-relative prefix. Paths
// may be given relative to the CWD or to the docs directory.
func pathFilter(docsDir, arg string) (string, error) {
	if arg == "" {
		return "", nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	if rel, err := filepath.Rel(docsDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
		if rel == "." {
			return "", nil
		}
		return filepath.ToSlash(rel), nil
	}
	return filepath.ToSlash(filepath.Clean(arg)), nil
}

func filterByPath(diags []lint.Diagnostic, prefix string) []lint.Diagnostic {
	if prefix == "" {
		return diags
	}
	var out []lint.Diagnostic
	for _, d := range diags {
		if d.Path == prefix || strings.HasPrefix(d.Path, prefix+"/") {
			out = append(out, d)
		}
	}
	return out
}

// LintSummary counts findings by severity.
type LintSummary struct {
	PagesAnalyzed   int `json:"pages_analyzed"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
	Hints           int `json:"hints"`
}

// LintFileResult holds the findings for one page.
type LintFileResult struct {
	Path        string            `json:"path"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
}

// LintOutput is the JSON output of the lint command.
type LintOutput struct {
	Summary LintSummary      `json:"summary"`
	Files   []LintFileResult `json:"files"`
}

func groupByFile(diags []lint.Diagnostic) []LintFileResult {
	var results []LintFileResult
	for _, d := range diags {
		if n := len(results); n > 0 && results[n-1].Path == d.Path {
			results[n-1].Diagnostics = append(results[n-1].Diagnostics, d)
			continue
		}
		results = append(results, LintFileResult{Path: d.Path, Diagnostics: []lint.Diagnostic{d}})
	}
	return results
}

func summarize(diags []lint.Diagnostic, files []LintFileResult, pages int) LintSummary {
	s := LintSummary{PagesAnalyzed: pages, FilesWithIssues: len(files), TotalIssues: len(diags)}
	for _, d := range diags {
		switch d.Severity {
		case lint.SeverityError:
			s.Errors++
		case lint.SeverityWarning:
			s.Warnings++
		case lint.SeverityInfo:
			s.Info++
		case lint.SeverityHint:
			s.Hints++
		}
	}
	return s
}

// renderLintResults prints diags and reports whether there were any.
// Diagnostics must be sorted by path.
func renderLintResults(r *output.Renderer, diags []lint.Diagnostic, pages int) bool {
	files := groupByFile(diags)
	summary := summarize(diags, files, pages)

	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(LintOutput{Summary: summary, Files: files})
		return len(diags) > 0
	}

	if len(diags) == 0 {
		r.Success(fmt.Sprintf("No lint issues found in %d pages", pages))
		return false
	}

	for _, res := range files {
		r.Println(r.Styles().Path.Render(res.Path))
		for _, d := range res.Diagnostics {
			loc := "-"
			if d.Line > 0 {
				loc = fmt.Sprintf("%d", d.Line)
			}
			r.Printf("  %s  %s  %s  %s\n",
				r.Styles().Muted.Render(fmt.Sprintf("%-4s", loc)),
				severityLabel(r, d.Severity),
				r.Styles().Bold.Render(d.RuleID),
				d.Message,
			)
		}
		r.Println("")
	}

	parts := []string{fmt.Sprintf("%d issues", summary.TotalIssues)}
	if summary.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", summary.Errors))
	}
	if summary.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", summary.Warnings))
	}
	if summary.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", summary.Info))
	}
	if summary.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", summary.Hints))
	}
	r.Printf("Summary: %s in %d files\n", strings.Join(parts, ", "), summary.FilesWithIssues)
	return true
}

func severityLabel(r *output.Renderer, sev lint.Severity) string {
	switch sev {
	case lint.SeverityError:
		return r.Styles().Error.Render("error  ")
	case lint.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	case lint.SeverityInfo:
		return r.Styles().Info.Render("info   ")
	case lint.SeverityHint:
		return r.Styles().Muted.Render("hint   ")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}
