package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/cli/config"
	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/generate"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new docs project",
		Long: `Initialize a docs project with a configuration file and a docs/ tree.

This creates:
  - wadocs.yaml configuration file
  - docs/index.md home page
  - .gitignore for build output and state

Use --example to also generate the pages of one pillar from the built-in
catalog.`,
		Example: `  # Initialize in current directory
  wadocs init

  # Initialize a new directory with the Cost Optimization pillar
  wadocs init my-docs --example cost-optimization

  # Force overwrite existing files
  wadocs init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cmdCtx, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			return runInit(cmd, cmdCtx.Renderer, dir, example, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().StringVar(&example, "example", "", "Also generate the pages of this pillar")

	return cmd
}

func runInit(cmd *cobra.Command, r *output.Renderer, dir, example string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	written, skipped, err := copyTemplate("init", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	for _, f := range written {
		r.StatusLine(f, "success", "")
	}
	for _, f := range skipped {
		r.StatusLine(f, "skipped", "exists")
	}

	if example != "" {
		g := &generate.Generator{
			DocsDir:   filepath.Join(dir, config.DefaultDocsDir),
			Catalog:   catalog.Default(),
			LinkStyle: config.Default().LinkStyle(),
			Logger:    config.GetLogger(cmd.Context()),
		}
		res, err := g.Run(cmd.Context(), generate.Options{
			Pillar:        example,
			BestPractices: true,
			Index:         true,
			Force:         force,
		})
		if err != nil {
			return fmt.Errorf("failed to generate example pillar: %w", err)
		}
		for _, p := range res.Created {
			r.StatusLine(filepath.ToSlash(filepath.Join(config.DefaultDocsDir, p)), "success", "")
		}
	}

	r.Println("")
	r.Success("wadocs project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  wadocs generate <pillar>   Add question pages from the catalog")
	r.Println("  wadocs lint                Check links and navigation")
	r.Println("  wadocs serve               Preview the site with live reload")
	r.Println("  wadocs build               Render the site to _site/")

	return nil
}
