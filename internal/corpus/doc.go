// Package corpus loads the Markdown documentation tree.
//
// A corpus is every *.md file below a docs root. Each file becomes a Page
// carrying its parsed front matter (title, layout, parent, grand_parent,
// nav_order, has_children, permalink) and its Markdown body. Pages are
// addressed by their slash-separated path relative to the root, e.g.
// "cost-optimization/COST02-BP03.md".
package corpus
