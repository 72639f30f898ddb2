package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/site"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/spf13/cobra"
)

// BuildOptions holds options for the build command.
type BuildOptions struct {
	Incremental bool
	Workers     int
	Clean       bool
	NoState     bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the docs tree to a static site",
		Long: `Render every page to HTML with sidebar navigation, breadcrumbs and a
shared stylesheet. Also writes manifest.json, search.json, sitemap.xml and
robots.txt.

With --incremental, pages whose content and navigation have not changed
since the last build are skipped.`,
		Example: `  # Full build into the configured output dir
  wadocs build

  # Only re-render what changed
  wadocs build --incremental

  # Start from an empty output dir
  wadocs build --clean`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Incremental, "incremental", false, "Skip pages unchanged since the last build")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent page renders (0 = configured or GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Remove the output directory before building")
	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Do not read or record build state")

	return cmd
}

// BuildOutput is the JSON output of the build command.
type BuildOutput struct {
	BuildID  string `json:"build_id"`
	Output   string `json:"output"`
	Pages    int    `json:"pages"`
	Rendered int    `json:"rendered"`
	Skipped  int    `json:"skipped"`
	Styles   int    `json:"styles"`
	Assets   int    `json:"assets"`
	Orphans  int    `json:"orphans"`
	Duration string `json:"duration"`
}

func runBuild(cmd *cobra.Command, opts *BuildOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}
	if opts.Clean {
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
	}

	var store *state.Store
	if !opts.NoState {
		s, closeStore, err := cmdCtx.OpenState(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		store = s
	}

	res, err := buildSite(ctx, cmdCtx, store, opts)
	if err != nil {
		return err
	}

	out := BuildOutput{
		BuildID:  res.BuildID,
		Output:   cfg.OutputDir,
		Pages:    res.Pages,
		Rendered: res.Rendered,
		Skipped:  res.Skipped,
		Styles:   res.Styles,
		Assets:   res.Assets,
		Orphans:  len(res.Tree.Unresolved),
		Duration: res.Duration.Round(time.Millisecond).String(),
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Success(fmt.Sprintf("Built %d pages into %s", out.Pages, out.Output))
	r.Println(output.FormatKeyValue("Rendered", fmt.Sprintf("%d", out.Rendered)))
	r.Println(output.FormatKeyValue("Skipped", fmt.Sprintf("%d", out.Skipped)))
	r.Println(output.FormatKeyValue("Style blocks", fmt.Sprintf("%d", out.Styles)))
	r.Println(output.FormatKeyValue("Assets", fmt.Sprintf("%d", out.Assets)))
	r.Println(output.FormatKeyValue("Duration", out.Duration))
	if out.Orphans > 0 {
		r.Warning(fmt.Sprintf("%d pages have unresolved parents (see 'wadocs tree')", out.Orphans))
	}
	return nil
}

// buildSite renders the configured docs tree. A nil store disables
// incremental builds.
func buildSite(ctx context.Context, cmdCtx *CommandContext, store *state.Store, opts *BuildOptions) (*site.Result, error) {
	cfg := cmdCtx.Cfg
	workers := cfg.Site.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	b, err := site.New(site.Config{
		DocsDir:     cfg.DocsDir,
		OutputDir:   cfg.OutputDir,
		Title:       cfg.Site.Title,
		BaseURL:     cfg.Site.BaseURL,
		Workers:     workers,
		Incremental: (cfg.Site.Incremental || opts.Incremental) && !opts.Clean,
		Logger:      cmdCtx.Logger,
	}, store)
	if err != nil {
		return nil, err
	}

	res, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	return res, nil
}
