package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages with their front matter",
		Long: `List every page with its title, resolved parent and nav_order.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all pages
  wadocs list

  # One pillar as JSON
  wadocs list --dir cost-optimization --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Only list pages under this docs-relative directory")

	return cmd
}

// PageInfo describes a page in list output.
type PageInfo struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Layout      string `json:"layout,omitempty"`
	Parent      string `json:"parent,omitempty"`
	GrandParent string `json:"grand_parent,omitempty"`
	NavOrder    *int   `json:"nav_order,omitempty"`
	HasChildren bool   `json:"has_children,omitempty"`
	URL         string `json:"url"`
	Orphan      bool   `json:"orphan,omitempty"`
}

// ListOutput is the JSON output of the list command.
type ListOutput struct {
	Pages []PageInfo `json:"pages"`
	Count int        `json:"count"`
}

func runList(cmd *cobra.Command, dir string) error {
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

	pages := docs.Pages
	if dir != "" {
		pages = docs.Under(dir)
	}
	infos := make([]PageInfo, len(pages))
	for i, p := range pages {
		infos[i] = pageInfo(tree, p)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ListOutput{Pages: infos, Count: len(infos)})
	}

	r.Header(1, fmt.Sprintf("Pages (%d total)", len(infos)))
	r.Println("")
	rows := make([][]string, len(infos))
	for i, p := range infos {
		order := ""
		if p.NavOrder != nil {
			order = strconv.Itoa(*p.NavOrder)
		}
		parent := p.Parent
		if p.Orphan {
			parent += " (unresolved)"
		}
		rows[i] = []string{p.Path, p.Title, parent, order}
	}
	r.Table([]string{"Path", "Title", "Parent", "Order"}, rows)
	return nil
}

func pageInfo(tree *nav.Tree, p *corpus.Page) PageInfo {
	fm := p.FrontMatter
	info := PageInfo{
		Path:        p.Path,
		Title:       p.Title(),
		Layout:      fm.Layout,
		Parent:      fm.Parent,
		GrandParent: fm.GrandParent,
		NavOrder:    fm.NavOrder,
		HasChildren: fm.HasChildren,
		URL:         p.URL(),
	}
	if n, ok := tree.Find(p); ok && n.Orphan && fm.Parent != "" {
		info.Orphan = true
	}
	return info
}
