// Package nav derives the site navigation hierarchy from page front matter.
//
// A page without a parent is top level. A parent names another page by its
// title; when several pages share that title, grand_parent selects the one
// whose own parent matches. Siblings are ordered by nav_order, then title.
package nav

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/corpus"
)

// Reason explains why a page could not be attached to its parent.
type Reason int

// Unresolved reasons.
const (
	ReasonMissingParent Reason = iota
	ReasonGrandParentMismatch
	ReasonCycle
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingParent:
		return "parent not found"
	case ReasonGrandParentMismatch:
		return "no parent with matching grand_parent"
	case ReasonCycle:
		return "parent cycle"
	default:
		return "unknown"
	}
}

// Unresolved is a page whose parent reference could not be satisfied.
// The page is still placed in the tree as a top-level orphan.
type Unresolved struct {
	Page   *corpus.Page
	Reason Reason
}

// Node is a page's position in the hierarchy.
type Node struct {
	Page     *corpus.Page
	Parent   *Node
	Children []*Node
	Depth    int
	Orphan   bool
}

// Tree is the navigation hierarchy of a corpus.
type Tree struct {
	Roots      []*Node
	Unresolved []Unresolved
	Ambiguous  []*corpus.Page // pages whose parent title matched more than one page

	nodes map[*corpus.Page]*Node
}

// Build derives the hierarchy for every page in c.
func Build(c *corpus.Corpus) *Tree {
	t := &Tree{nodes: make(map[*corpus.Page]*Node, len(c.Pages))}
	for _, p := range c.Pages {
		t.nodes[p] = &Node{Page: p}
	}

	parentOf := make(map[*corpus.Page]*corpus.Page, len(c.Pages))
	for _, p := range c.Pages {
		parent, reason, ambiguous, ok := resolveParent(c, p)
		if ambiguous {
			t.Ambiguous = append(t.Ambiguous, p)
		}
		switch {
		case ok:
			parentOf[p] = parent
		case p.FrontMatter.Parent != "":
			t.Unresolved = append(t.Unresolved, Unresolved{Page: p, Reason: reason})
		}
	}

	// Break cycles so every page stays reachable from a root.
	for _, p := range c.Pages {
		if inCycle(p, parentOf) {
			delete(parentOf, p)
			t.Unresolved = append(t.Unresolved, Unresolved{Page: p, Reason: ReasonCycle})
		}
	}

	for _, p := range c.Pages {
		n := t.nodes[p]
		if parent, ok := parentOf[p]; ok {
			pn := t.nodes[parent]
			n.Parent = pn
			pn.Children = append(pn.Children, n)
			continue
		}
		n.Orphan = p.FrontMatter.Parent != ""
		t.Roots = append(t.Roots, n)
	}

	sortNodes(t.Roots)
	for _, n := range t.Roots {
		setDepth(n, 0)
	}
	sort.SliceStable(t.Unresolved, func(i, j int) bool {
		return t.Unresolved[i].Page.Path < t.Unresolved[j].Page.Path
	})
	return t
}

func resolveParent(c *corpus.Corpus, p *corpus.Page) (parent *corpus.Page, reason Reason, ambiguous, ok bool) {
	fm := p.FrontMatter
	if fm.Parent == "" {
		return nil, 0, false, false
	}

	var candidates []*corpus.Page
	for _, q := range c.ByTitle(fm.Parent) {
		if q != p {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, ReasonMissingParent, false, false
	}

	if fm.GrandParent != "" {
		var matched []*corpus.Page
		for _, q := range candidates {
			if q.FrontMatter.Parent == fm.GrandParent {
				matched = append(matched, q)
			}
		}
		if len(matched) == 0 {
			return nil, ReasonGrandParentMismatch, false, false
		}
		return matched[0], 0, len(matched) > 1, true
	}

	return candidates[0], 0, len(candidates) > 1, true
}

func inCycle(p *corpus.Page, parentOf map[*corpus.Page]*corpus.Page) bool {
	seen := map[*corpus.Page]bool{p: true}
	for cur, ok := parentOf[p]; ok; cur, ok = parentOf[cur] {
		if seen[cur] {
			return cur == p
		}
		seen[cur] = true
	}
	return false
}

func setDepth(n *Node, depth int) {
	n.Depth = depth
	sortNodes(n.Children)
	for _, c := range n.Children {
		setDepth(c, depth+1)
	}
}

// Less orders sibling pages: pages with nav_order first (ascending), then
// title case-insensitively, then path.
func Less(a, b *corpus.Page) bool {
	ao, aok := a.FrontMatter.Order()
	bo, bok := b.FrontMatter.Order()
	if aok != bok {
		return aok
	}
	if aok && ao != bo {
		return ao < bo
	}
	at, bt := strings.ToLower(a.Title()), strings.ToLower(b.Title())
	if at != bt {
		return at < bt
	}
	return a.Path < b.Path
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return Less(nodes[i].Page, nodes[j].Page)
	})
}

// Find returns the node for a page.
func (t *Tree) Find(p *corpus.Page) (*Node, bool) {
	n, ok := t.nodes[p]
	return n, ok
}

// ParentOf returns the resolved parent page, if any.
func (t *Tree) ParentOf(p *corpus.Page) (*corpus.Page, bool) {
	n, ok := t.nodes[p]
	if !ok || n.Parent == nil {
		return nil, false
	}
	return n.Parent.Page, true
}

// Children returns the ordered child pages of p.
func (t *Tree) Children(p *corpus.Page) []*corpus.Page {
	n, ok := t.nodes[p]
	if !ok {
		return nil
	}
	out := make([]*corpus.Page, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Page
	}
	return out
}

// Breadcrumbs returns the ancestors of p from the top level down to its parent.
func (t *Tree) Breadcrumbs(p *corpus.Page) []*corpus.Page {
	n, ok := t.nodes[p]
	if !ok {
		return nil
	}
	var crumbs []*corpus.Page
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		crumbs = append(crumbs, cur.Page)
	}
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs
}

// Walk visits every node depth-first in navigation order.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				visit(n.Children)
			}
		}
	}
	visit(t.Roots)
}

// SiblingGroups returns every list of siblings, starting with the top level.
func (t *Tree) SiblingGroups() [][]*Node {
	groups := [][]*Node{t.Roots}
	t.Walk(func(n *Node) bool {
		if len(n.Children) > 0 {
			groups = append(groups, n.Children)
		}
		return true
	})
	return groups
}

// Len returns the number of pages in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}
