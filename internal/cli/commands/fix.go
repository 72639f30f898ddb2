package commands

import (
	"strings"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/fix"
	"github.com/spf13/cobra"
)

// FixOptions holds options for the fix command and its single-fixer
// shortcuts.
type FixOptions struct {
	DryRun bool
	Diff   bool
	List   bool
}

// NewFixCommand creates the fix command.
func NewFixCommand() *cobra.Command {
	opts := &FixOptions{}

	cmd := &cobra.Command{
		Use:   "fix [fixer...]",
		Short: "Rewrite pages to repair common problems",
		Long: `Apply fixers to every page and write the results back in place.

Without arguments the default fixers run in order. Name fixers to run only
those. Use --list to see what is available.`,
		Example: `  # Run the default fixers
  wadocs fix

  # Preview link rewrites as a diff
  wadocs fix pillar-links --dry-run --diff

  # List available fixers
  wadocs fix --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.List {
				return listFixers(cmd)
			}
			fixers := fix.Defaults()
			if len(args) > 0 {
				var err error
				if fixers, err = fix.ByName(args...); err != nil {
					return err
				}
			}
			return runFix(cmd, fixers, opts)
		},
	}

	addFixFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.List, "list", false, "List available fixers")

	return cmd
}

// NewStyleCommand creates the style command.
func NewStyleCommand() *cobra.Command {
	opts := &FixOptions{}
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Convert plain question pages to the styled block layout",
		Long: `Wrap the sections of plain question pages (best practices, implementation
steps, AWS services, resources) in the styled block markup. The classes are
styled by the site stylesheet, so no per-page style block is added. Pages
already styled are left alone.`,
		Example: `  wadocs style --dry-run`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFix(cmd, []fix.Fixer{fix.Styling}, opts)
		},
	}
	addFixFlags(cmd, opts)
	return cmd
}

// NewOrderCommand creates the order command.
func NewOrderCommand() *cobra.Command {
	opts := &FixOptions{}
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Set pillar nav_order from the catalog",
		Example: `  wadocs order
  wadocs order --dry-run --diff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFix(cmd, []fix.Fixer{fix.NavOrder}, opts)
		},
	}
	addFixFlags(cmd, opts)
	return cmd
}

func addFixFlags(cmd *cobra.Command, opts *FixOptions) {
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Report changes without writing files")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Show a unified diff for each change")
}

// FixChange is a changed page in JSON output.
type FixChange struct {
	Path   string   `json:"path"`
	Fixers []string `json:"fixers"`
	Diff   string   `json:"diff,omitempty"`
}

// FixOutput is the JSON output of fix, style and order.
type FixOutput struct {
	DryRun  bool        `json:"dry_run"`
	Changed int         `json:"changed"`
	Changes []FixChange `json:"changes"`
}

func runFix(cmd *cobra.Command, fixers []fix.Fixer, opts *FixOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	docs, err := cmdCtx.LoadCorpus()
	if err != nil {
		return err
	}
	cat, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	changes, err := fix.Run(cmd.Context(), docs, fixers, &fix.Context{
		Catalog:   cat,
		LinkStyle: cmdCtx.Cfg.LinkStyle(),
	}, fix.Options{DryRun: opts.DryRun, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}

	out := FixOutput{DryRun: opts.DryRun, Changed: len(changes), Changes: make([]FixChange, len(changes))}
	for i, c := range changes {
		out.Changes[i] = FixChange{Path: c.Path, Fixers: c.Fixers}
		if opts.Diff {
			out.Changes[i].Diff = c.Diff()
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	if len(changes) == 0 {
		r.Success("Nothing to fix")
		return nil
	}

	verb := "Fixed"
	if opts.DryRun {
		verb = "Would fix"
	}
	for _, c := range out.Changes {
		r.StatusLine(c.Path, "success", strings.Join(c.Fixers, ", "))
		if c.Diff != "" {
			if r.EffectiveMode() == output.ModeMarkdown {
				r.Println("```diff")
				r.Printf("%s", c.Diff)
				r.Println("```")
			} else {
				r.Printf("%s", c.Diff)
			}
		}
	}
	r.Println("")
	r.Printf("%s %d pages\n", verb, len(changes))
	return nil
}

func listFixers(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	type fixerInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Default     bool   `json:"default"`
	}
	all := fix.All()
	infos := make([]fixerInfo, len(all))
	rows := make([][]string, len(all))
	for i, f := range all {
		infos[i] = fixerInfo{Name: f.Name, Description: f.Description, Default: f.Default}
		def := ""
		if f.Default {
			def = "yes"
		}
		rows[i] = []string{f.Name, def, f.Description}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}
	r.Header(1, "Fixers")
	r.Println("")
	r.Table([]string{"Name", "Default", "Description"}, rows)
	return nil
}
