package nav

import (
	"time"

	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// Manifest is the serialisable navigation tree written next to the site.
type Manifest struct {
	SiteTitle   string    `json:"site_title"`
	BuildID     string    `json:"build_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	NavTree     []NavItem `json:"nav_tree"`
	Stats       Stats     `json:"stats"`
}

// NavItem is a page entry in the manifest.
type NavItem struct {
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Path     string    `json:"path"`
	NavOrder *int      `json:"nav_order,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// Stats contains page counts for the manifest.
type Stats struct {
	Pages    int `json:"pages"`
	Sections int `json:"sections"`
	TopLevel int `json:"top_level"`
	Orphans  int `json:"orphans"`
	MaxDepth int `json:"max_depth"`
}

// GenerateManifest creates a Manifest from a tree.
func GenerateManifest(t *Tree, siteTitle, buildID string, now time.Time) *Manifest {
	m := &Manifest{
		SiteTitle:   siteTitle,
		BuildID:     buildID,
		GeneratedAt: now,
		NavTree:     navItems(t.Roots),
	}

	m.Stats.Pages = t.Len()
	for _, n := range t.Roots {
		if n.Orphan {
			m.Stats.Orphans++
		} else {
			m.Stats.TopLevel++
		}
	}
	t.Walk(func(n *Node) bool {
		if len(n.Children) > 0 {
			m.Stats.Sections++
		}
		if n.Depth > m.Stats.MaxDepth {
			m.Stats.MaxDepth = n.Depth
		}
		return true
	})
	return m
}

func navItems(nodes []*Node) []NavItem {
	items := make([]NavItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, NavItem{
			Title:    displayTitle(n.Page),
			URL:      n.Page.URL(),
			Path:     n.Page.Path,
			NavOrder: n.Page.FrontMatter.NavOrder,
			Children: navItems(n.Children),
		})
	}
	return items
}

// displayTitle falls back to the page ID for untitled pages.
func displayTitle(p *corpus.Page) string {
	if t := p.Title(); t != "" {
		return t
	}
	return p.ID()
}

// DisplayTitle is the label shown for a page in navigation.
func DisplayTitle(p *corpus.Page) string {
	return displayTitle(p)
}
