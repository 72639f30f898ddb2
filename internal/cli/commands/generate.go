package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/generate"
	"github.com/spf13/cobra"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	BestPractices bool
	Index         bool
	Force         bool
	DryRun        bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <pillar> [question-id]",
		Short: "Generate question pages for a pillar from the catalog",
		Long: `Write question pages (and optionally best-practice pages and the pillar
index) for one pillar. The pillar can be given by name, directory or
abbreviation. Existing files are kept unless --force is set.`,
		Example: `  # All question pages for a pillar
  wadocs generate cost-optimization

  # One question with its best practices
  wadocs generate COST COST02 --best-practices

  # Regenerate the pillar index too
  wadocs generate "Cost Optimization" --index --force`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := ""
			if len(args) == 2 {
				question = strings.ToUpper(args[1])
			}
			return runGenerate(cmd, args[0], question, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.BestPractices, "best-practices", false, "Also generate best-practice pages")
	cmd.Flags().BoolVar(&opts.Index, "index", false, "Also generate the pillar index page")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing pages")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Report pages without writing them")

	return cmd
}

// GenerateOutput is the JSON output of the generate command.
type GenerateOutput struct {
	DryRun  bool     `json:"dry_run"`
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

func runGenerate(cmd *cobra.Command, pillar, question string, opts *GenerateOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return err
	}
	cat, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	g := &generate.Generator{
		DocsDir:   cmdCtx.Cfg.DocsDir,
		Catalog:   cat,
		LinkStyle: cmdCtx.Cfg.LinkStyle(),
		Logger:    cmdCtx.Logger,
	}
	res, err := g.Run(cmd.Context(), generate.Options{
		Pillar:        pillar,
		Question:      question,
		BestPractices: opts.BestPractices,
		Index:         opts.Index,
		Force:         opts.Force,
		DryRun:        opts.DryRun,
	})
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(GenerateOutput{DryRun: opts.DryRun, Created: nonNil(res.Created), Skipped: nonNil(res.Skipped)})
	}

	for _, p := range res.Created {
		r.StatusLine(p, "success", "created")
	}
	for _, p := range res.Skipped {
		r.StatusLine(p, "skipped", "exists (use --force to overwrite)")
	}
	verb := "Generated"
	if opts.DryRun {
		verb = "Would generate"
	}
	r.Println("")
	r.Printf("%s %d pages, skipped %d\n", verb, len(res.Created), len(res.Skipped))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// pillarArg resolves an optional pillar argument to its directory.
func pillarArg(cmdCtx *CommandContext, arg string) (string, error) {
	cat, err := cmdCtx.LoadCatalog()
	if err != nil {
		return "", err
	}
	p, ok := cat.Pillar(arg)
	if !ok {
		return "", fmt.Errorf("unknown pillar %q", arg)
	}
	return p.Dir, nil
}
