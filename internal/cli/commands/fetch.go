package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/spf13/cobra"
)

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fetch <question-id>",
		Short: "Download a framework question page as Markdown",
		Long: `Fetch the published page for a question (e.g. COST02) and convert its
main content to Markdown. The result is printed, or written with --out.`,
		Example: `  wadocs fetch COST02
  wadocs fetch SEC03 --out /tmp/SEC03.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, strings.ToUpper(args[0]), out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the Markdown to this file")

	return cmd
}

func runFetch(cmd *cobra.Command, id, out string) error {
	if !catalog.IsQuestionID(id) {
		return fmt.Errorf("%q is not a question ID (expected e.g. COST02)", id)
	}
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}

	md, err := newUpstreamClient(cmdCtx).FetchQuestionMarkdown(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", id, err)
	}

	if out == "" {
		cmdCtx.Renderer.Printf("%s", md)
		return nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(md), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %s", out))
	return nil
}
