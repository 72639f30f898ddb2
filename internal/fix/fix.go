// Package fix rewrites pages in place: link spelling, template leftovers,
// placeholder substitution, pillar nav_order and the styled block layout.
package fix

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

// Context carries what fixers need beyond the page itself.
type Context struct {
	Catalog   *catalog.Catalog
	LinkStyle core.LinkStyle
}

// Fixer rewrites a single page. Apply returns the complete new file content
// and whether it differs from p.Raw.
type Fixer struct {
	Name        string
	Description string
	Default     bool // part of a plain `wadocs fix`
	Apply       func(p *corpus.Page, fc *Context) ([]byte, bool)
}

var registry = []Fixer{
	PillarLinks,
	TemplateLeftovers,
	TitlePlaceholders,
	NavOrder,
	Styling,
}

// All returns every fixer in application order.
func All() []Fixer {
	return append([]Fixer(nil), registry...)
}

// Defaults returns the fixers run when none are named.
func Defaults() []Fixer {
	var out []Fixer
	for _, f := range registry {
		if f.Default {
			out = append(out, f)
		}
	}
	return out
}

// ByName selects fixers by name, keeping application order.
func ByName(names ...string) ([]Fixer, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var out []Fixer
	for _, f := range registry {
		if want[f.Name] {
			out = append(out, f)
			delete(want, f.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown fixer %q", n)
	}
	return out, nil
}

// Change is the outcome of fixing one page.
type Change struct {
	Path   string
	Fixers []string
	Before []byte
	After  []byte
}

// Diff renders the change as a unified diff.
func (c Change) Diff() string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(c.Before)),
		B:        difflib.SplitLines(string(c.After)),
		FromFile: "a/" + c.Path,
		ToFile:   "b/" + c.Path,
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Options controls Run.
type Options struct {
	DryRun bool
	Logger *slog.Logger
}

// Run applies fixers to every page in c, in order, and writes changed pages
// unless DryRun is set. Each fixer sees the output of the previous one.
func Run(ctx context.Context, c *corpus.Corpus, fixers []Fixer, fc *Context, opts Options) ([]Change, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if fc == nil {
		fc = &Context{}
	}

	var changes []Change
	for _, p := range c.Pages {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		work := p
		var applied []string
		for _, f := range fixers {
			out, changed := f.Apply(work, fc)
			if !changed {
				continue
			}
			next, err := corpus.ParsePage(p.Path, out)
			if err != nil {
				return changes, fmt.Errorf("fixer %s produced invalid page: %w", f.Name, err)
			}
			next.AbsPath, next.ModTime = p.AbsPath, p.ModTime
			work = next
			applied = append(applied, f.Name)
		}
		if len(applied) == 0 {
			continue
		}

		change := Change{Path: p.Path, Fixers: applied, Before: p.Raw, After: work.Raw}
		changes = append(changes, change)
		logger.Debug("page fixed", "path", p.Path, "fixers", applied, "dry_run", opts.DryRun)

		if opts.DryRun {
			continue
		}
		if err := corpus.WriteRaw(p, work.Raw); err != nil {
			return changes, err
		}
	}
	return changes, nil
}

// withBody reassembles a page from its original header and a new body.
func withBody(p *corpus.Page, body []byte) []byte {
	head := p.Header()
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	return append(out, body...)
}
