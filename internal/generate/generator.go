package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

// Generator writes catalog pages into a docs directory.
type Generator struct {
	DocsDir   string
	Catalog   *catalog.Catalog
	LinkStyle core.LinkStyle
	Logger    *slog.Logger
}

// Options selects what Run generates.
type Options struct {
	Pillar        string // name, dir or abbreviation
	Question      string // optional question ID within the pillar
	BestPractices bool   // also generate best-practice pages
	Index         bool   // also generate the pillar index page
	Force         bool   // overwrite existing files
	DryRun        bool
}

// Result lists generated and skipped pages by docs-relative path.
type Result struct {
	Created []string
	Skipped []string
}

// Run generates pages for one pillar. Existing files are left alone unless
// Force is set.
func (g *Generator) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pillar, ok := g.Catalog.Pillar(opts.Pillar)
	if !ok {
		return nil, fmt.Errorf("unknown pillar %q", opts.Pillar)
	}

	questions := pillar.Questions
	if opts.Question != "" {
		q, ok := pillar.Question(opts.Question)
		if !ok {
			return nil, fmt.Errorf("question %s is not part of %s", opts.Question, pillar.Name)
		}
		questions = []catalog.Question{*q}
	}

	var pages []*corpus.Page
	for _, q := range questions {
		page, err := QuestionPage(pillar, q, questionOrder(pillar, q.ID), g.LinkStyle)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)

		if !opts.BestPractices {
			continue
		}
		for _, bp := range q.BestPractices {
			page, err := BestPracticePage(pillar, q, bp)
			if err != nil {
				return nil, err
			}
			pages = append(pages, page)
		}
	}

	if opts.Index {
		cards := make([]Link, len(pillar.Questions))
		for i, q := range pillar.Questions {
			cards[i] = Link{ID: q.ID, Title: q.PageTitle(), Href: g.LinkStyle.Format(q.ID)}
		}
		page, err := PillarIndex(pillar, cards)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	res := &Result{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page.AbsPath = filepath.Join(g.DocsDir, filepath.FromSlash(page.Path))

		if _, err := os.Stat(page.AbsPath); err == nil && !opts.Force {
			res.Skipped = append(res.Skipped, page.Path)
			logger.Debug("page exists, skipping", "path", page.Path)
			continue
		}
		res.Created = append(res.Created, page.Path)
		if opts.DryRun {
			continue
		}
		if err := corpus.WriteRaw(page, page.Raw); err != nil {
			return res, err
		}
		logger.Debug("page generated", "path", page.Path)
	}
	return res, nil
}

// questionOrder is the 1-based position of a question within its pillar.
func questionOrder(p *catalog.Pillar, id string) int {
	for i, q := range p.Questions {
		if q.ID == id {
			return i + 1
		}
	}
	return len(p.Questions) + 1
}
