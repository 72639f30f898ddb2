package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/spf13/cobra"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the navigation hierarchy",
		Long: `Show the navigation tree derived from parent, grand_parent and nav_order.

Pages whose parent cannot be resolved are listed at the top level and
marked as orphans.`,
		Example: `  # Show the whole tree
  wadocs tree

  # Pillars and questions only
  wadocs tree --depth 2

  # As JSON
  wadocs tree --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTree(cmd, depth)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum depth to show (0 = unlimited)")

	return cmd
}

// TreeOutput is the JSON output of the tree command.
type TreeOutput struct {
	Tree       []nav.NavItem    `json:"tree"`
	Stats      nav.Stats        `json:"stats"`
	Unresolved []UnresolvedPage `json:"unresolved,omitempty"`
}

// UnresolvedPage is a page whose parent could not be attached.
type UnresolvedPage struct {
	Path   string `json:"path"`
	Parent string `json:"parent"`
	Reason string `json:"reason"`
}

func runTree(cmd *cobra.Command, depth int) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	docs, err := cmdCtx.LoadCorpus()
	if err != nil {
		return err
	}
	tree := nav.Build(docs)

	unresolved := make([]UnresolvedPage, len(tree.Unresolved))
	for i, u := range tree.Unresolved {
		unresolved[i] = UnresolvedPage{Path: u.Page.Path, Parent: u.Page.FrontMatter.Parent, Reason: u.Reason.String()}
	}

	if r.EffectiveMode() == output.ModeJSON {
		m := nav.GenerateManifest(tree, cmdCtx.Cfg.Site.Title, "", time.Now())
		return r.JSON(TreeOutput{Tree: m.NavTree, Stats: m.Stats, Unresolved: unresolved})
	}

	markdown := r.EffectiveMode() == output.ModeMarkdown
	r.Header(1, fmt.Sprintf("Navigation (%d pages)", tree.Len()))
	r.Println("")
	tree.Walk(func(n *nav.Node) bool {
		r.Println(treeLine(r, n, markdown))
		return depth == 0 || n.Depth+1 < depth
	})

	if len(unresolved) > 0 {
		r.Println("")
		r.Header(2, "Unresolved parents")
		for _, u := range unresolved {
			r.StatusLine(u.Path, "warning", fmt.Sprintf("parent %q: %s", u.Parent, u.Reason))
		}
	}
	return nil
}

func treeLine(r *output.Renderer, n *nav.Node, markdown bool) string {
	title := nav.DisplayTitle(n.Page)
	order := ""
	if o, ok := n.Page.FrontMatter.Order(); ok {
		order = fmt.Sprintf("%d", o)
	}

	if markdown {
		line := strings.Repeat("  ", n.Depth) + "- " + title + " (`" + n.Page.Path + "`)"
		if n.Orphan {
			line += " **orphan**"
		}
		return line
	}

	styles := r.Styles()
	line := strings.Repeat("  ", n.Depth)
	if order != "" {
		line += styles.Muted.Render(order+".") + " "
	}
	line += title + "  " + styles.Muted.Render(n.Page.Path)
	if n.Orphan {
		line += " " + styles.Warning.Render("(orphan)")
	}
	return line
}
