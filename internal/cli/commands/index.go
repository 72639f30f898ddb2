package commands

import (
	"errors"
	"fmt"
	"path"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/generate"
	"github.com/spf13/cobra"
)

// IndexOptions holds options for the index command.
type IndexOptions struct {
	DryRun bool
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	opts := &IndexOptions{}

	cmd := &cobra.Command{
		Use:   "index [pillar]",
		Short: "Refresh the question cards on pillar index pages",
		Long: `Replace the "## Questions" section of each pillar index with a static
card per question page found in the pillar directory.`,
		Example: `  # All pillars
  wadocs index

  # One pillar, preview only
  wadocs index security --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pillar := ""
			if len(args) == 1 {
				pillar = args[0]
			}
			return runIndex(cmd, pillar, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Report changes without writing files")

	return cmd
}

// IndexResult is one pillar index in index output.
type IndexResult struct {
	Path    string `json:"path"`
	Cards   int    `json:"cards"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

func runIndex(cmd *cobra.Command, pillar string, opts *IndexOptions) error {
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

	dirs := make([]string, 0, len(cat.Pillars))
	if pillar != "" {
		dir, err := pillarArg(cmdCtx, pillar)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	} else {
		for _, p := range cat.Pillars {
			dirs = append(dirs, p.Dir)
		}
	}

	var results []IndexResult
	for _, dir := range dirs {
		page, err := docs.Lookup(path.Join(dir, "index.md"))
		if err != nil {
			cmdCtx.Logger.Debug("no pillar index", "dir", dir)
			continue
		}
		cards := generate.Cards(docs, dir, cmdCtx.Cfg.LinkStyle())
		res := IndexResult{Path: page.Path, Cards: len(cards)}

		raw, changed, err := generate.UpdateQuestionCards(page, cards)
		switch {
		case errors.Is(err, generate.ErrNoQuestionSection):
			res.Error = "no \"## Questions\" section"
		case err != nil:
			return err
		case changed && !opts.DryRun:
			if err := corpus.WriteRaw(page, raw); err != nil {
				return err
			}
		}
		res.Changed = changed
		results = append(results, res)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if results == nil {
			results = []IndexResult{}
		}
		return r.JSON(results)
	}

	if len(results) == 0 {
		r.Warning("No pillar index pages found")
		return nil
	}
	for _, res := range results {
		switch {
		case res.Error != "":
			r.StatusLine(res.Path, "warning", res.Error)
		case res.Changed:
			r.StatusLine(res.Path, "success", fmt.Sprintf("%d questions", res.Cards))
		default:
			r.StatusLine(res.Path, "skipped", "up to date")
		}
	}
	return nil
}
