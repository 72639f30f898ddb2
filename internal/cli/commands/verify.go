package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/upstream"
	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	var pillar string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare local pages and the catalog against the published framework",
		Long: `Download the Well-Architected Framework appendix and report, per pillar,
questions that are missing locally or from the catalog, local pages that no
longer exist upstream, and catalog titles that drifted.

Exits with an error when any pillar differs.`,
		Example: `  wadocs verify
  wadocs verify --pillar security --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, pillar)
		},
	}

	cmd.Flags().StringVar(&pillar, "pillar", "", "Only verify this pillar")

	return cmd
}

// newUpstreamClient builds a client from the upstream config section.
func newUpstreamClient(cmdCtx *CommandContext) *upstream.Client {
	u := cmdCtx.Cfg.Upstream
	return upstream.New(upstream.Config{
		AppendixURL: u.AppendixURL,
		QuestionURL: u.QuestionURL,
		Timeout:     u.Timeout,
		Logger:      cmdCtx.Logger,
	})
}

func runVerify(cmd *cobra.Command, pillar string) error {
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

	names := make([]string, 0, len(cat.Pillars))
	for _, p := range cat.Pillars {
		names = append(names, p.Name)
	}
	up, err := newUpstreamClient(cmdCtx).FetchQuestions(cmd.Context(), names)
	if err != nil {
		return fmt.Errorf("failed to fetch framework appendix: %w", err)
	}

	reports := upstream.Compare(up, cat, docs)
	if pillar != "" {
		p, ok := cat.Pillar(pillar)
		if !ok {
			return fmt.Errorf("unknown pillar %q", pillar)
		}
		for _, rep := range reports {
			if rep.Dir == p.Dir {
				reports = []upstream.PillarReport{rep}
				break
			}
		}
	}

	dirty := 0
	for _, rep := range reports {
		if !rep.Clean() {
			dirty++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(reports); err != nil {
			return err
		}
	} else {
		renderVerify(r, reports)
	}

	if dirty > 0 {
		return errors.New("framework differences found")
	}
	return nil
}

func renderVerify(r *output.Renderer, reports []upstream.PillarReport) {
	r.Header(1, "Framework verification")
	r.Println("")

	for _, rep := range reports {
		detail := fmt.Sprintf("%d upstream, %d local", rep.Upstream, rep.Local)
		switch {
		case !rep.Found:
			r.StatusLine(rep.Pillar, "error", "not found in the appendix")
			continue
		case rep.Clean():
			r.StatusLine(rep.Pillar, "success", detail)
			continue
		default:
			r.StatusLine(rep.Pillar, "warning", detail)
		}

		for _, q := range rep.MissingLocal {
			r.Printf("    missing page:       %s  %s\n", q.ID, q.Title)
		}
		for _, id := range rep.ExtraLocal {
			r.Printf("    not upstream:       %s\n", id)
		}
		for _, q := range rep.MissingCatalog {
			r.Printf("    missing in catalog: %s  %s\n", q.ID, q.Title)
		}
		for _, id := range rep.ExtraCatalog {
			r.Printf("    stale in catalog:   %s\n", id)
		}
		for _, m := range rep.TitleMismatch {
			r.Printf("    title drift:        %s\n      catalog:  %s\n      upstream: %s\n", m.ID, m.Catalog, m.Upstream)
		}
		if !rep.HasDir {
			r.Printf("    no pages under %s/\n", rep.Dir)
		}
	}
}
