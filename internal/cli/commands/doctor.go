package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/leapstack-labs/wadocs/pkg/lint"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a comprehensive docs health check",
		Long: `Analyze the docs tree and report on its overall health.

The doctor command runs every lint rule and provides a report including:
- Docs summary (pages, sections, navigation depth, pillars, last build)
- Health checks grouped by category (Structure, Links, Content, Catalog)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  wadocs doctor

  # Output as JSON
  wadocs doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         DocsSummary   `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// DocsSummary contains docs-level statistics.
type DocsSummary struct {
	Pages         int        `json:"pages"`
	Sections      int        `json:"sections"`
	TopLevel      int        `json:"top_level"`
	Orphans       int        `json:"orphans"`
	MaxDepth      int        `json:"max_depth"`
	Pillars       int        `json:"pillars"`
	PillarsTotal  int        `json:"pillars_total"`
	LastBuild     string     `json:"last_build,omitempty"`
	LastBuildTime *time.Time `json:"last_build_time,omitempty"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "info", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	docs, err := cmdCtx.LoadCorpus()
	if err != nil {
		return err
	}
	if len(docs.Pages) == 0 {
		r.Warning("No pages found in " + cmdCtx.Cfg.DocsDir)
		return nil
	}
	cat, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	lintCtx := lint.NewContext(docs, cat)
	diags := lint.NewAnalyzer(buildLintConfig(cmdCtx.Cfg, &LintOptions{}), cmdCtx.Logger).Analyze(lintCtx)

	stats := nav.GenerateManifest(lintCtx.Tree, "", "", time.Now()).Stats
	summary := DocsSummary{
		Pages:        stats.Pages,
		Sections:     stats.Sections,
		TopLevel:     stats.TopLevel,
		Orphans:      stats.Orphans,
		MaxDepth:     stats.MaxDepth,
		PillarsTotal: len(cat.Pillars),
	}
	for _, p := range cat.Pillars {
		if len(docs.Under(p.Dir)) > 0 {
			summary.Pillars++
		}
	}

	if last := lastBuild(cmd.Context(), cmdCtx); last != nil {
		summary.LastBuild = last.ID
		finished := last.FinishedAt
		summary.LastBuildTime = &finished
	}

	doctorOutput := buildDoctorOutput(summary, diags)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

// lastBuild reads the most recent build from an existing state file.
func lastBuild(ctx context.Context, cmdCtx *CommandContext) *state.Build {
	if _, err := os.Stat(cmdCtx.Cfg.StatePath); err != nil {
		return nil
	}
	store, closeStore, err := cmdCtx.OpenState(ctx)
	if err != nil {
		cmdCtx.Logger.Debug("state unavailable", "error", err)
		return nil
	}
	defer closeStore()
	last, err := store.LastBuild(ctx)
	if err != nil {
		cmdCtx.Logger.Debug("state unavailable", "error", err)
		return nil
	}
	return last
}

func buildDoctorOutput(summary DocsSummary, diags []lint.Diagnostic) *DoctorOutput {
	diagsByRule := make(map[string][]lint.Diagnostic)
	for _, d := range diags {
		diagsByRule[d.RuleID] = append(diagsByRule[d.RuleID], d)
	}

	rules := lint.GetAll()
	healthChecks := make([]HealthCheck, 0, len(rules))
	for _, rule := range rules {
		ruleDiags := diagsByRule[rule.ID]
		status := "pass"
		for _, d := range ruleDiags {
			status = worseStatus(status, d.Severity)
		}

		details := make([]string, 0, len(ruleDiags))
		for _, d := range ruleDiags {
			details = append(details, d.Path+": "+d.Message)
		}

		healthChecks = append(healthChecks, HealthCheck{
			RuleID:     rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     status,
			IssueCount: len(ruleDiags),
			Details:    details,
		})
	}

	sort.Slice(healthChecks, func(i, j int) bool {
		gi, gj := groupRank(healthChecks[i].Group), groupRank(healthChecks[j].Group)
		if gi != gj {
			return gi < gj
		}
		return healthChecks[i].RuleID < healthChecks[j].RuleID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, summary.Pages),
		Recommendations: generateRecommendations(healthChecks),
		IssueCount:      len(diags),
	}
}

var statusRank = map[string]int{"pass": 0, "info": 1, "warn": 2, "error": 3}

func worseStatus(cur string, sev lint.Severity) string {
	next := "info"
	switch sev {
	case lint.SeverityError:
		next = "error"
	case lint.SeverityWarning:
		next = "warn"
	}
	if statusRank[next] > statusRank[cur] {
		return next
	}
	return cur
}

// calculateHealthScore computes a health score from 0-100. Warnings cost a
// penalty per issue and errors twice that; the penalty shrinks as the docs
// tree grows. Info and hint findings are free.
func calculateHealthScore(checks []HealthCheck, pageCount int) int {
	basePenalty := 5.0
	switch {
	case pageCount > 300:
		basePenalty = 0.5
	case pageCount > 100:
		basePenalty = 1.0
	case pageCount > 50:
		basePenalty = 2.0
	case pageCount > 10:
		basePenalty = 3.0
	}

	score := 100.0
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}
	return int(max(0, min(100, score)))
}

// generateRecommendations returns up to five fixes, most severe first.
func generateRecommendations(checks []HealthCheck) []string {
	ordered := make([]HealthCheck, 0, len(checks))
	for _, c := range checks {
		if c.IssueCount > 0 {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return statusRank[ordered[i].Status] > statusRank[ordered[j].Status]
	})

	var recommendations []string
	seen := make(map[string]bool)
	for _, check := range ordered {
		rec := getRecommendation(check.RuleID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

func getRecommendation(ruleID string) string {
	switch ruleID {
	case "NS01":
		return "Add a title to every page's front matter"
	case "NS02":
		return "Use one of the allowed layouts or add the layout to site.allowed_layouts"
	case "NS03", "NS04":
		return "Fix parent and grand_parent so every page attaches to the navigation (see 'wadocs tree')"
	case "NS05":
		return "Give siblings distinct nav_order values; 'wadocs order' fixes pillar indexes"
	case "NS06":
		return "Rename pages that share a title with another possible parent"
	case "NS07":
		return "Set has_children only on pages that have child pages"
	case "NS08":
		return "Add nav_order to pages so the sidebar order is stable"
	case "LK01":
		return "Repair broken internal links"
	case "LK02":
		return "Run 'wadocs fix pillar-links' to normalise question and best-practice links"
	case "LK03":
		return "Rename or re-permalink pages that render to the same output file"
	case "CT01":
		return "Run 'wadocs fix template-leftovers' to remove dangling template code"
	case "CT02":
		return "Replace stub content with the real guidance"
	case "CT03":
		return "Move inline style rules into the site stylesheet; 'wadocs build' already collects them into one file"
	case "CT04":
		return "Make page titles start with the page's question or best-practice ID"
	case "CA01":
		return "Run 'wadocs generate <pillar>' to add missing catalog pages"
	case "CA02":
		return "Add unknown question IDs to the catalog or run 'wadocs verify'"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("Docs Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	s := out.Summary
	r.Println(styles.Header2.Render("Docs Summary"))
	r.Printf("   Pages: %d | Sections: %d | Top level: %d\n", s.Pages, s.Sections, s.TopLevel)
	r.Printf("   Max depth: %d | Orphans: %d | Pillars: %d/%d\n", s.MaxDepth, s.Orphans, s.Pillars, s.PillarsTotal)
	if s.LastBuildTime != nil {
		r.Printf("   Last build: %s (%s)\n", s.LastBuild, humanize.Time(*s.LastBuildTime))
	}
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case "info":
			icon = styles.Info.Render("i")
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.Error.Render("✗")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Docs Health Report")
	r.Println("")

	s := out.Summary
	r.Println("## Docs Summary")
	r.Println("")
	r.Println(output.FormatKeyValue("Pages", fmt.Sprintf("%d", s.Pages)))
	r.Println(output.FormatKeyValue("Sections", fmt.Sprintf("%d", s.Sections)))
	r.Println(output.FormatKeyValue("Top level", fmt.Sprintf("%d", s.TopLevel)))
	r.Println(output.FormatKeyValue("Max depth", fmt.Sprintf("%d", s.MaxDepth)))
	r.Println(output.FormatKeyValue("Orphans", fmt.Sprintf("%d", s.Orphans)))
	r.Println(output.FormatKeyValue("Pillars", fmt.Sprintf("%d/%d", s.Pillars, s.PillarsTotal)))
	if s.LastBuild != "" {
		r.Println(output.FormatKeyValue("Last build", s.LastBuild))
	}
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
