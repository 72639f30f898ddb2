package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/cli/config"
	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd. A non-empty format
// overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) (*CommandContext, error) {
	cfg := getConfig()
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	if format != "" {
		if mode, err = output.ParseMode(format); err != nil {
			return nil, err
		}
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// LoadCorpus reads the docs tree.
func (c *CommandContext) LoadCorpus() (*corpus.Corpus, error) {
	if err := c.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	docs, err := corpus.Load(c.Cfg.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load docs: %w", err)
	}
	c.Logger.Debug("docs loaded", "dir", c.Cfg.DocsDir, "pages", len(docs.Pages))
	return docs, nil
}

// LoadCatalog returns the configured catalog, or the embedded one.
func (c *CommandContext) LoadCatalog() (*catalog.Catalog, error) {
	if c.Cfg.Catalog == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(c.Cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// OpenState opens the build state store. The returned cleanup closes it.
func (c *CommandContext) OpenState(ctx context.Context) (*state.Store, func(), error) {
	if dir := filepath.Dir(c.Cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store, err := state.Open(ctx, c.Cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
